package duograph_test

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/duograph/duograph/pkg/notify"
	"github.com/duograph/duograph/pkg/types"
)

// fakeEmbedder produces deterministic vectors from text: byte values
// bucketed into a fixed-length histogram, normalized to unit length.
// Identical texts get identical vectors.
type fakeEmbedder struct {
	failWith error
	calls    int
}

const fakeDimensions = 8

func (f *fakeEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.failWith != nil {
		return nil, f.failWith
	}
	if text == "" {
		return nil, fmt.Errorf("cannot embed empty text")
	}

	vec := make([]float32, fakeDimensions)
	for i := 0; i < len(text); i++ {
		vec[int(text[i])%fakeDimensions]++
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec, nil
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vec, err := f.EmbedSingle(ctx, text)
		if err != nil {
			return nil, err
		}
		out = append(out, vec)
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int { return fakeDimensions }
func (f *fakeEmbedder) Close() error    { return nil }

// fakeVectorStore keeps documents in a map and ranks searches by cosine
// similarity against stored embeddings.
type fakeVectorStore struct {
	mu   sync.Mutex
	docs map[string]types.Document

	failUpsert error
	failSearch error
	failDelete error

	upsertCalls int
	deleteCalls int
}

func newFakeVectorStore() *fakeVectorStore {
	return &fakeVectorStore{docs: make(map[string]types.Document)}
}

func (f *fakeVectorStore) Init(ctx context.Context) error { return nil }

func (f *fakeVectorStore) Upsert(ctx context.Context, doc types.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upsertCalls++
	if f.failUpsert != nil {
		return f.failUpsert
	}
	f.docs[doc.ID] = doc
	return nil
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func (f *fakeVectorStore) Search(ctx context.Context, queryEmbedding []float32, k int, subject string) ([]types.VectorHit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSearch != nil {
		return nil, f.failSearch
	}

	hits := make([]types.VectorHit, 0, len(f.docs))
	for _, doc := range f.docs {
		if subject != "" && doc.Subject != subject {
			continue
		}
		hits = append(hits, types.VectorHit{
			ID:      doc.ID,
			Subject: doc.Subject,
			Content: doc.Content,
			Score:   cosine(queryEmbedding, doc.Embedding),
		})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (f *fakeVectorStore) Delete(ctx context.Context, id string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	if f.failDelete != nil {
		return 0, f.failDelete
	}
	if _, ok := f.docs[id]; !ok {
		return 0, nil
	}
	delete(f.docs, id)
	return 1, nil
}

func (f *fakeVectorStore) Close() {}

func (f *fakeVectorStore) has(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.docs[id]
	return ok
}

// fakeGraphStore keeps node property maps in memory and substring-matches
// searches against the string form of every property.
type fakeGraphStore struct {
	mu    sync.Mutex
	nodes map[string]map[string]any

	failMerge  error
	failSearch error
	failDelete error

	mergeCalls  int
	deleteCalls int
}

func newFakeGraphStore() *fakeGraphStore {
	return &fakeGraphStore{nodes: make(map[string]map[string]any)}
}

func (f *fakeGraphStore) Init(ctx context.Context) error { return nil }

func (f *fakeGraphStore) MergeDocumentNode(ctx context.Context, id, subject string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mergeCalls++
	if f.failMerge != nil {
		return f.failMerge
	}
	f.nodes[id] = map[string]any{"id": id, "name": id, "subject": subject}
	return nil
}

func (f *fakeGraphStore) MergeNode(ctx context.Context, node types.GraphNode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	props := map[string]any{"id": node.ID}
	for k, v := range node.Properties {
		props[k] = v
	}
	f.nodes[node.ID] = props
	return nil
}

func (f *fakeGraphStore) MergeEdge(ctx context.Context, edge types.GraphEdge) error { return nil }

func (f *fakeGraphStore) SearchByProperty(ctx context.Context, term string, limit int) ([]types.GraphHit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSearch != nil {
		return nil, f.failSearch
	}

	var hits []types.GraphHit
	for _, props := range f.nodes {
		for _, v := range props {
			if strings.Contains(fmt.Sprint(v), term) {
				hits = append(hits, types.GraphHit(props))
				break
			}
		}
		if len(hits) == limit {
			break
		}
	}
	return hits, nil
}

func (f *fakeGraphStore) DeleteNode(ctx context.Context, id string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	if f.failDelete != nil {
		return 0, f.failDelete
	}
	if _, ok := f.nodes[id]; !ok {
		return 0, nil
	}
	delete(f.nodes, id)
	return 1, nil
}

func (f *fakeGraphStore) Close(ctx context.Context) error { return nil }

func (f *fakeGraphStore) has(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.nodes[id]
	return ok
}

// captureNotifier records published events.
type captureNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (c *captureNotifier) Publish(ctx context.Context, event notify.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *captureNotifier) Close() error { return nil }

func (c *captureNotifier) byType(eventType string) []notify.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []notify.Event
	for _, e := range c.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// captureAlerter records alert subjects.
type captureAlerter struct {
	mu       sync.Mutex
	subjects []string
}

func (c *captureAlerter) Alert(subject, message string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subjects = append(c.subjects, subject)
	return nil
}
