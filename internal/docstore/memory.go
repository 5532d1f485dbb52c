package docstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bytedance/sonic"
)

type memDoc struct {
	body      []byte
	createdAt time.Time
	updatedAt time.Time
}

type memCollection struct {
	current int64
	gens    map[int64]map[string]memDoc
}

// Memory is an in-process Store. Documents are kept as encoded JSON so
// callers never share mutable state with the store.
type Memory struct {
	mu      sync.RWMutex
	colls   map[string]*memCollection
	nextGen int64
	now     func() time.Time
}

// NewMemory returns an empty in-process store.
func NewMemory() *Memory {
	return &Memory{
		colls: make(map[string]*memCollection),
		now:   time.Now,
	}
}

func (m *Memory) collection(name string) *memCollection {
	c, ok := m.colls[name]
	if !ok {
		c = &memCollection{gens: map[int64]map[string]memDoc{0: {}}}
		m.colls[name] = c
	}
	return c
}

// generation returns the document map of one generation, creating it when a
// prune removed it while empty.
func (c *memCollection) generation(id int64) map[string]memDoc {
	docs, ok := c.gens[id]
	if !ok {
		docs = map[string]memDoc{}
		c.gens[id] = docs
	}
	return docs
}

func (m *Memory) Upsert(_ context.Context, collection, key string, doc any) (bool, error) {
	body, err := encode(doc)
	if err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.collection(collection)
	docs := c.generation(c.current)
	now := m.now()
	prev, exists := docs[key]
	created := now
	if exists {
		created = prev.createdAt
	}
	docs[key] = memDoc{body: body, createdAt: created, updatedAt: now}
	return !exists, nil
}

func (m *Memory) Get(_ context.Context, collection, key string, out any) (bool, error) {
	m.mu.RLock()
	var body []byte
	if c, ok := m.colls[collection]; ok {
		if d, ok := c.gens[c.current][key]; ok {
			body = d.body
		}
	}
	m.mu.RUnlock()

	if body == nil {
		return false, nil
	}
	return true, Document{Key: key, Body: body}.Decode(out)
}

func (m *Memory) Find(_ context.Context, collection string, q Query) ([]Document, error) {
	m.mu.RLock()
	c, ok := m.colls[collection]
	if !ok {
		m.mu.RUnlock()
		return []Document{}, nil
	}
	docs := c.gens[c.current]
	keys := make([]string, 0, len(docs))
	for k := range docs {
		keys = append(keys, k)
	}
	snapshot := make(map[string][]byte, len(docs))
	for k, d := range docs {
		snapshot[k] = d.body
	}
	m.mu.RUnlock()

	sort.Strings(keys)
	out := []Document{}
	for _, k := range keys {
		body := snapshot[k]
		if len(q.Where) > 0 {
			var decoded any
			if err := sonic.Unmarshal(body, &decoded); err != nil {
				return nil, err
			}
			if !matchesAll(q.Where, decoded) {
				continue
			}
		}
		out = append(out, Document{Key: k, Body: body})
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
	}
	return out, nil
}

func matchesAll(conds []Cond, doc any) bool {
	for _, c := range conds {
		if !c.matches(doc) {
			return false
		}
	}
	return true
}

func (m *Memory) Count(_ context.Context, collection string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.colls[collection]
	if !ok {
		return 0, nil
	}
	return len(c.gens[c.current]), nil
}

func (m *Memory) Clear(_ context.Context, collection string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.colls[collection]
	if !ok {
		return 0, nil
	}
	n := len(c.gens[c.current])
	c.gens[c.current] = map[string]memDoc{}
	return n, nil
}

func (m *Memory) BeginGeneration(_ context.Context, collection string) (Generation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.collection(collection)
	m.nextGen++
	id := m.nextGen
	c.gens[id] = map[string]memDoc{}
	return &memGeneration{store: m, collection: collection, id: id}, nil
}

func (m *Memory) PruneGenerations(_ context.Context, olderThan time.Duration) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-olderThan)
	removed := 0
	for _, c := range m.colls {
		for id, docs := range c.gens {
			if id == c.current {
				continue
			}
			for k, d := range docs {
				if d.updatedAt.Before(cutoff) {
					delete(docs, k)
					removed++
				}
			}
			if len(docs) == 0 {
				delete(c.gens, id)
			}
		}
	}
	return removed, nil
}

func (m *Memory) Ping(context.Context) error { return nil }

// --------------------------------------------------------------------------
// Generations
// --------------------------------------------------------------------------

type memGeneration struct {
	store      *Memory
	collection string
	id         int64
	closed     bool
}

func (g *memGeneration) ID() int64 { return g.id }

func (g *memGeneration) Put(_ context.Context, key string, doc any) error {
	body, err := encode(doc)
	if err != nil {
		return err
	}

	g.store.mu.Lock()
	defer g.store.mu.Unlock()
	if g.closed {
		return ErrGenerationClosed
	}
	c := g.store.collection(g.collection)
	now := g.store.now()
	created := now
	if prev, ok := c.gens[c.current][key]; ok {
		created = prev.createdAt
	}
	c.generation(g.id)[key] = memDoc{body: body, createdAt: created, updatedAt: now}
	return nil
}

func (g *memGeneration) Written(context.Context) (int, error) {
	g.store.mu.RLock()
	defer g.store.mu.RUnlock()
	c, ok := g.store.colls[g.collection]
	if !ok {
		return 0, nil
	}
	return len(c.gens[g.id]), nil
}

func (g *memGeneration) Commit(_ context.Context, keep func(key string) bool) (int, error) {
	g.store.mu.Lock()
	defer g.store.mu.Unlock()
	if g.closed {
		return 0, ErrGenerationClosed
	}

	c := g.store.collection(g.collection)
	next := c.generation(g.id)
	carried := 0
	for k, d := range c.gens[c.current] {
		if _, written := next[k]; written {
			continue
		}
		if keep != nil && !keep(k) {
			continue
		}
		next[k] = d
		carried++
	}
	c.current = g.id
	g.closed = true
	return carried, nil
}

func (g *memGeneration) Abort(context.Context) error {
	g.store.mu.Lock()
	defer g.store.mu.Unlock()
	if g.closed {
		return nil
	}
	if c, ok := g.store.colls[g.collection]; ok {
		delete(c.gens, g.id)
	}
	g.closed = true
	return nil
}
