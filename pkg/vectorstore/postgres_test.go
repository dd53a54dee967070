package vectorstore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSearchQuery(t *testing.T) {
	embedding := []float32{0.1, 0.2, 0.3}

	t.Run("without subject filter", func(t *testing.T) {
		query, args := buildSearchQuery(embedding, 5, "")

		assert.Contains(t, query, "1 - (embedding <=> $1) AS similarity_score")
		assert.Contains(t, query, "ORDER BY similarity_score DESC")
		assert.Contains(t, query, "LIMIT $2")
		assert.NotContains(t, query, "WHERE")
		require.Len(t, args, 2)
		assert.Equal(t, 5, args[1])
	})

	t.Run("with subject filter", func(t *testing.T) {
		query, args := buildSearchQuery(embedding, 3, "hr")

		assert.Contains(t, query, "WHERE subject = $2")
		assert.Contains(t, query, "LIMIT $3")
		require.Len(t, args, 3)
		assert.Equal(t, "hr", args[1])
		assert.Equal(t, 3, args[2])
	})

	t.Run("filter precedes ordering", func(t *testing.T) {
		query, _ := buildSearchQuery(embedding, 1, "eng")
		assert.Less(t, strings.Index(query, "WHERE"), strings.Index(query, "ORDER BY"))
	})
}

func TestRoundScore(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"rounds down", 0.12344, 0.1234},
		{"rounds up", 0.12346, 0.1235},
		{"exact", 0.5, 0.5},
		{"one", 1.0, 1.0},
		{"negative", -0.98765, -0.9877},
		{"zero", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, roundScore(tt.in), 1e-9)
		})
	}
}

func TestStoreInterface(t *testing.T) {
	var _ Store = (*PostgresStore)(nil)
}
