package vectorindex

import (
	"context"
	"math"
	"sort"
	"sync"
)

// MemoryIndex is a brute-force cosine index kept in process memory.
// It backs tests and single-node development setups.
type MemoryIndex struct {
	mu         sync.RWMutex
	dimensions int
	namespaces map[string]map[string]Record
}

func NewMemoryIndex(dimensions int) *MemoryIndex {
	return &MemoryIndex{
		dimensions: dimensions,
		namespaces: make(map[string]map[string]Record),
	}
}

func (m *MemoryIndex) Replace(ctx context.Context, namespace string, records []Record) error {
	for _, r := range records {
		if err := CheckDimensions(m.dimensions, r.Values); err != nil {
			return err
		}
	}

	ns := make(map[string]Record, len(records))
	for _, r := range records {
		values := make([]float32, len(r.Values))
		copy(values, r.Values)
		r.Values = values
		ns[r.ID] = r
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.namespaces[namespace] = ns
	return nil
}

func (m *MemoryIndex) Upsert(ctx context.Context, namespace string, records []Record) error {
	for _, r := range records {
		if err := CheckDimensions(m.dimensions, r.Values); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ns, ok := m.namespaces[namespace]
	if !ok {
		ns = make(map[string]Record)
		m.namespaces[namespace] = ns
	}
	for _, r := range records {
		values := make([]float32, len(r.Values))
		copy(values, r.Values)
		r.Values = values
		ns[r.ID] = r
	}
	return nil
}

func (m *MemoryIndex) Query(ctx context.Context, namespace string, vector []float32, topK int) ([]Match, error) {
	if err := CheckDimensions(m.dimensions, vector); err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	ns := m.namespaces[namespace]
	matches := make([]Match, 0, len(ns))
	for _, r := range ns {
		matches = append(matches, Match{
			ID:       r.ID,
			Score:    cosine(vector, r.Values),
			Metadata: r.Metadata,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score == matches[j].Score {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (m *MemoryIndex) DeleteNamespace(ctx context.Context, namespace string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.namespaces, namespace)
	return nil
}

// Count reports how many records a namespace holds.
func (m *MemoryIndex) Count(namespace string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.namespaces[namespace])
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
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
