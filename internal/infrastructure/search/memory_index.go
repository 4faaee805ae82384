// Package searchindex holds the in-process product search backend and the glue that keeps it
// in step with the catalog.
package searchindex

import (
	"context"
	"math"
	"sync"

	"github.com/storefront/backend/internal/domain/search"
)

// Title matches count double against description matches
const titleWeight = 2

type termFreq struct {
	title       int
	description int
}

type indexedDoc struct {
	reviewCount int
	terms       []string
}

// MemoryIndex is an inverted index over product titles and descriptions.
// Multi-term queries match any term; a product's score sums idf(t) * (1 + ln(weighted tf)) over matched terms.
type MemoryIndex struct {
	mu       sync.RWMutex
	docs     map[int64]indexedDoc
	postings map[string]map[int64]termFreq
	// changes applied since BeginRebuild; a nil document marks a removal
	journal map[int64]*search.Document
}

// NewMemoryIndex creates an empty index
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		docs:     make(map[int64]indexedDoc),
		postings: make(map[string]map[int64]termFreq),
	}
}

// Search ranks every product matching at least one query term
func (m *MemoryIndex) Search(ctx context.Context, q search.Query) (search.Result, error) {
	if err := q.Validate(); err != nil {
		return search.Result{}, err
	}
	terms := search.UniqueTerms(q.Text)

	m.mu.RLock()
	n := float64(len(m.docs))
	scores := make(map[int64]float64)
	for _, term := range terms {
		posting := m.postings[term]
		if len(posting) == 0 {
			continue
		}
		idf := math.Log(1 + n/float64(len(posting)))
		for id, tf := range posting {
			weighted := float64(titleWeight*tf.title + tf.description)
			scores[id] += idf * (1 + math.Log(weighted))
		}
	}
	hits := make([]search.Hit, 0, len(scores))
	for id, score := range scores {
		hits = append(hits, search.Hit{
			ProductID:   id,
			Score:       score,
			ReviewCount: m.docs[id].reviewCount,
		})
	}
	m.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return search.Result{}, err
	}
	search.Rank(hits)
	return search.Result{
		Hits:  search.Page(hits, q.Offset, q.Limit),
		Total: len(hits),
	}, nil
}

// Upsert indexes doc, replacing any earlier version of the same product
func (m *MemoryIndex) Upsert(_ context.Context, doc search.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.remove(doc.ProductID)
	m.add(doc)
	if m.journal != nil {
		m.journal[doc.ProductID] = &doc
	}
	return nil
}

// Remove drops a product; removing an unknown product is a no-op
func (m *MemoryIndex) Remove(_ context.Context, productID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.remove(productID)
	if m.journal != nil {
		m.journal[productID] = nil
	}
	return nil
}

// BeginRebuild starts recording Upsert and Remove calls so the next Rebuild
// can apply them on top of a snapshot read before they happened.
func (m *MemoryIndex) BeginRebuild() {
	m.mu.Lock()
	m.journal = make(map[int64]*search.Document)
	m.mu.Unlock()
}

// EndRebuild stops recording; Rebuild also ends it
func (m *MemoryIndex) EndRebuild() {
	m.mu.Lock()
	m.journal = nil
	m.mu.Unlock()
}

// Rebuild swaps in a fresh index built from docs.
// Changes recorded since BeginRebuild win over the snapshot in docs.
func (m *MemoryIndex) Rebuild(_ context.Context, docs []search.Document) error {
	fresh := NewMemoryIndex()
	for _, doc := range docs {
		fresh.remove(doc.ProductID)
		fresh.add(doc)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, doc := range m.journal {
		fresh.remove(id)
		if doc != nil {
			fresh.add(*doc)
		}
	}
	m.docs, m.postings = fresh.docs, fresh.postings
	m.journal = nil
	return nil
}

// Len returns the number of indexed products
func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}

func (m *MemoryIndex) add(doc search.Document) {
	freqs := make(map[string]termFreq)
	for _, t := range search.Terms(doc.Title) {
		f := freqs[t]
		f.title++
		freqs[t] = f
	}
	for _, t := range search.Terms(doc.Description) {
		f := freqs[t]
		f.description++
		freqs[t] = f
	}

	terms := make([]string, 0, len(freqs))
	for term, f := range freqs {
		posting, ok := m.postings[term]
		if !ok {
			posting = make(map[int64]termFreq)
			m.postings[term] = posting
		}
		posting[doc.ProductID] = f
		terms = append(terms, term)
	}
	m.docs[doc.ProductID] = indexedDoc{reviewCount: doc.ReviewCount, terms: terms}
}

func (m *MemoryIndex) remove(productID int64) {
	doc, ok := m.docs[productID]
	if !ok {
		return
	}
	for _, term := range doc.terms {
		posting := m.postings[term]
		delete(posting, productID)
		if len(posting) == 0 {
			delete(m.postings, term)
		}
	}
	delete(m.docs, productID)
}

var _ search.Index = (*MemoryIndex)(nil)
