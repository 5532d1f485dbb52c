// Package docstore is a keyed JSON document store with one collection per
// entity type. Each collection has a current generation; plain upserts write
// into it, and bulk refreshes can build a new generation and swap it in so
// readers never observe a half-written collection.
//
// Two backends implement Store: Postgres (JSONB, see postgres.go) and an
// in-process map used by tests and by the API when no database is configured.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

// ErrGenerationClosed is returned when a generation is used after Commit or
// Abort.
var ErrGenerationClosed = errors.New("docstore: generation already closed")

// Store is the persistence contract the loader and query layers depend on.
type Store interface {
	// Upsert replaces the whole document stored under key in the current
	// generation, or inserts it. created reports which one happened.
	Upsert(ctx context.Context, collection, key string, doc any) (created bool, err error)

	// Get decodes the document under key into out. found is false when the
	// key does not exist.
	Get(ctx context.Context, collection, key string, out any) (found bool, err error)

	// Find returns the documents matching q, ordered by key.
	Find(ctx context.Context, collection string, q Query) ([]Document, error)

	Count(ctx context.Context, collection string) (int, error)

	// Clear removes every document of the current generation and returns how
	// many were removed.
	Clear(ctx context.Context, collection string) (int, error)

	// BeginGeneration opens a new, invisible generation of a collection.
	BeginGeneration(ctx context.Context, collection string) (Generation, error)

	// PruneGenerations deletes documents of non-current generations last
	// written more than olderThan ago.
	PruneGenerations(ctx context.Context, olderThan time.Duration) (int, error)

	Ping(ctx context.Context) error
}

// Generation is a collection snapshot under construction.
type Generation interface {
	ID() int64
	Put(ctx context.Context, key string, doc any) error
	// Written is the number of distinct keys put so far.
	Written(ctx context.Context) (int, error)
	// Commit copies forward every current document whose key was not
	// written and for which keep returns true (nil keeps all), then makes
	// this generation current. It returns the number of carried documents.
	Commit(ctx context.Context, keep func(key string) bool) (carried int, err error)
	Abort(ctx context.Context) error
}

// Document is one stored JSON document.
type Document struct {
	Key  string
	Body []byte
}

// Decode unmarshals the document body into out.
func (d Document) Decode(out any) error {
	if err := sonic.Unmarshal(d.Body, out); err != nil {
		return fmt.Errorf("decode document %q: %w", d.Key, err)
	}
	return nil
}

// FindInto runs Find and decodes every match into T.
func FindInto[T any](ctx context.Context, s Store, collection string, q Query) ([]T, error) {
	docs, err := s.Find(ctx, collection, q)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		var v T
		if err := d.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// --------------------------------------------------------------------------
// Queries
// --------------------------------------------------------------------------

// Query is an AND of conditions. A zero Query matches every document.
type Query struct {
	Where []Cond
	Limit int
}

// Cond matches when the text form of any of Paths equals Value. Numbers
// compare by their JSON text, so week 10 matches "10" whether it was stored
// as a number or as a string. Fold makes the comparison case-insensitive.
// OrMissing also matches documents where none of Paths holds a value.
type Cond struct {
	Paths     [][]string
	Value     string
	Fold      bool
	OrMissing bool
}

// Eq builds an exact match on one dotted path.
func Eq(path, value string) Cond {
	return Cond{Paths: [][]string{strings.Split(path, ".")}, Value: value}
}

// EqFold builds a case-insensitive match on any of several dotted paths.
func EqFold(value string, paths ...string) Cond {
	c := Cond{Value: value, Fold: true}
	for _, p := range paths {
		c.Paths = append(c.Paths, strings.Split(p, "."))
	}
	return c
}

// EqOrMissing builds an exact match on one dotted path that also accepts
// documents written before the path existed.
func EqOrMissing(path, value string) Cond {
	c := Eq(path, value)
	c.OrMissing = true
	return c
}

// Where is shorthand for a Query built from conditions.
func Where(conds ...Cond) Query { return Query{Where: conds} }

// encode marshals a document for storage.
func encode(doc any) ([]byte, error) {
	switch v := doc.(type) {
	case []byte:
		if !sonic.Valid(v) {
			return nil, fmt.Errorf("document is not valid JSON")
		}
		return v, nil
	default:
		b, err := sonic.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("encode document: %w", err)
		}
		return b, nil
	}
}

// textAt returns the text form of the value at path in a decoded document,
// mirroring Postgres' #>> operator.
func textAt(doc any, path []string) (string, bool) {
	cur := doc
	for _, step := range path {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[step]
			if !ok {
				return "", false
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(step)
			if err != nil || i < 0 || i >= len(node) {
				return "", false
			}
			cur = node[i]
		default:
			return "", false
		}
	}
	switch v := cur.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		b, err := sonic.Marshal(v)
		if err != nil {
			return "", false
		}
		return string(b), true
	}
}

func (c Cond) matches(doc any) bool {
	present := false
	for _, p := range c.Paths {
		got, ok := textAt(doc, p)
		if !ok {
			continue
		}
		present = true
		if c.Fold && strings.EqualFold(got, c.Value) {
			return true
		}
		if !c.Fold && got == c.Value {
			return true
		}
	}
	return c.OrMissing && !present
}
