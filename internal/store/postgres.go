package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/albapepper/soccerscore/internal/db"
	"github.com/albapepper/soccerscore/internal/document"
)

// Postgres keeps documents as JSONB rows in a single table. Upserts merge
// top-level fields with the jsonb || operator, matching Mongo's $set.
type Postgres struct {
	pool *db.Pool
}

// NewPostgres wraps an open pool. The pool's connections already carry the
// schema and prepared statements.
func NewPostgres(pool *db.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) Upsert(ctx context.Context, c Collection, key Key, doc document.Document) error {
	body, err := json.Marshal(withKey(key, doc))
	if err != nil {
		return &Error{Op: "upsert", Collection: c, Err: fmt.Errorf("encode document: %w", err)}
	}
	docKey := key.Field + "=" + key.String()
	if _, err := p.pool.Exec(ctx, "document_upsert", string(c), docKey, body); err != nil {
		return &Error{Op: "upsert", Collection: c, Err: err}
	}
	return nil
}

func (p *Postgres) Find(ctx context.Context, c Collection, filter Filter) ([]document.Document, error) {
	query, args, err := postgresQuery(c, filter)
	if err != nil {
		return nil, &Error{Op: "find", Collection: c, Err: err}
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, &Error{Op: "find", Collection: c, Err: err}
	}
	defer rows.Close()

	docs := []document.Document{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, &Error{Op: "find", Collection: c, Err: fmt.Errorf("scan document: %w", err)}
		}
		doc, err := document.Decode(raw)
		if err != nil {
			return nil, &Error{Op: "find", Collection: c, Err: err}
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, &Error{Op: "find", Collection: c, Err: err}
	}
	return docs, nil
}

// postgresQuery renders a Filter as a parameterized SELECT. Field names are
// bound as parameters too. Range bounds compare with the C collation so
// ordering is byte-wise like Mongo's.
func postgresQuery(c Collection, filter Filter) (string, []any, error) {
	var b strings.Builder
	b.WriteString("SELECT doc FROM " + db.DocumentsTable + " WHERE collection = $1")
	args := []any{string(c)}

	for _, cond := range filter {
		switch cond.Op {
		case OpEq:
			val, err := json.Marshal(cond.Value)
			if err != nil {
				return "", nil, fmt.Errorf("encode %s value: %w", cond.Field, err)
			}
			args = append(args, cond.Field, val)
			fmt.Fprintf(&b, " AND doc -> $%d::text = $%d::jsonb", len(args)-1, len(args))
		case OpGt, OpLt:
			bound, ok := cond.Value.(string)
			if !ok {
				return "", nil, fmt.Errorf("range bound on %s must be a string", cond.Field)
			}
			op := ">"
			if cond.Op == OpLt {
				op = "<"
			}
			args = append(args, cond.Field, bound)
			fmt.Fprintf(&b, ` AND jsonb_typeof(doc -> $%d::text) = 'string' AND (doc ->> $%d::text) COLLATE "C" %s $%d::text`,
				len(args)-1, len(args)-1, op, len(args))
		default:
			return "", nil, fmt.Errorf("unsupported operator %q", cond.Op)
		}
	}

	b.WriteString(" ORDER BY id")
	return b.String(), args, nil
}

func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if err := p.pool.EnsureSchema(ctx); err != nil {
		return &Error{Op: "ensure schema", Err: err}
	}
	return nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	if err := p.pool.HealthCheck(ctx); err != nil {
		return &Error{Op: "ping", Err: err}
	}
	return nil
}

func (p *Postgres) Close(context.Context) error {
	p.pool.Close()
	return nil
}
