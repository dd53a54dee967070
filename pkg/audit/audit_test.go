package audit_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duograph/duograph/pkg/audit"
)

func parquetFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var files []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".parquet") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files
}

func TestRecorderFlushWritesParquet(t *testing.T) {
	dir := t.TempDir()
	recorder, err := audit.NewRecorder(dir)
	require.NoError(t, err)

	require.NoError(t, recorder.Record(audit.Record{
		Operation:  "add",
		DocumentID: "doc1",
		Subject:    "hr",
		Stage:      "done",
		Outcome:    audit.OutcomeSuccess,
		DurationMs: 42,
	}))

	// Nothing written until an explicit flush or a full buffer.
	assert.Empty(t, parquetFiles(t, dir))

	require.NoError(t, recorder.Flush())
	assert.Len(t, parquetFiles(t, dir), 1)
}

func TestRecorderFillsIDAndTimestamp(t *testing.T) {
	dir := t.TempDir()
	recorder, err := audit.NewRecorder(dir)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, recorder.Record(audit.Record{
			Operation:  "delete",
			DocumentID: "doc1",
			Outcome:    audit.OutcomeNotFound,
		}))
	}
	require.NoError(t, recorder.Close())

	files := parquetFiles(t, dir)
	require.Len(t, files, 1)
	info, err := os.Stat(files[0])
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRecorderFlushOnEmptyBuffer(t *testing.T) {
	dir := t.TempDir()
	recorder, err := audit.NewRecorder(dir)
	require.NoError(t, err)

	require.NoError(t, recorder.Flush())
	assert.Empty(t, parquetFiles(t, dir))
}
