// Package store persists league, team, match and standing documents.
//
// Every collection is keyed by a natural key taken from the provider (for
// example team_id), never by a generated ID. Writes are upserts with merge
// semantics: fields present in the new document overwrite stored ones and
// everything else is left alone. There are no transactions; each upsert is
// atomic on its own and nothing more.
//
// Backends: MongoDB (the default), Postgres JSONB documents, and an
// in-memory map used by tests and local development.
package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/albapepper/soccerscore/internal/document"
)

// Collection names a document collection.
type Collection string

const (
	Leagues   Collection = "Leagues"
	Teams     Collection = "Teams"
	Matches   Collection = "Matches"
	Standings Collection = "Standings"
)

// Collections lists every collection in sync order.
var Collections = []Collection{Leagues, Teams, Matches, Standings}

// KeyField returns the natural key field of the collection.
func (c Collection) KeyField() string {
	switch c {
	case Leagues:
		return "league_id"
	case Teams:
		return "team_id"
	case Matches:
		return "match_id"
	case Standings:
		return "season_id"
	default:
		return ""
	}
}

// Key identifies a single document by its natural key.
type Key struct {
	Field string
	Value any
}

// KeyOf builds the natural key of doc for collection c.
func KeyOf(c Collection, doc document.Document) (Key, error) {
	field := c.KeyField()
	if field == "" {
		return Key{}, fmt.Errorf("unknown collection %q", c)
	}
	v, ok := doc[field]
	if !ok || v == nil {
		return Key{}, fmt.Errorf("%s document has no %s", c, field)
	}
	return Key{Field: field, Value: v}, nil
}

// String renders the key value in a backend-independent form. Integers of
// any Go type render identically.
func (k Key) String() string {
	if _, isString := k.Value.(string); !isString {
		if n, ok := document.ToInt(k.Value); ok {
			return strconv.FormatInt(n, 10)
		}
	}
	return fmt.Sprintf("%v", k.Value)
}

// Store is the persistence contract shared by all backends.
type Store interface {
	// Upsert merges doc into the document matching key, inserting it when
	// no such document exists. The key field is always written.
	Upsert(ctx context.Context, c Collection, key Key, doc document.Document) error
	// Find returns every document matching filter in the backend's natural
	// order. Returned documents are owned by the caller.
	Find(ctx context.Context, c Collection, filter Filter) ([]document.Document, error)
	// EnsureSchema creates indexes or tables the backend needs.
	EnsureSchema(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Error wraps a backend failure with the operation and collection involved.
type Error struct {
	Op         string
	Collection Collection
	Err        error
}

func (e *Error) Error() string {
	if e.Collection == "" {
		return fmt.Sprintf("store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// withKey returns a copy of doc that carries the key field.
func withKey(key Key, doc document.Document) document.Document {
	out := doc.Clone()
	if out == nil {
		out = document.Document{}
	}
	out[key.Field] = key.Value
	return out
}
