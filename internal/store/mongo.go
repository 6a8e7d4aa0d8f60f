package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/albapepper/soccerscore/internal/document"
)

// Mongo stores each collection as a MongoDB collection of the same name.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
	logger *slog.Logger
}

// NewMongo connects to uri and verifies the connection.
func NewMongo(ctx context.Context, uri, database string, logger *slog.Logger) (*Mongo, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10*time.Second))
	if err != nil {
		return nil, &Error{Op: "connect", Err: err}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, &Error{Op: "ping", Err: err}
	}

	return &Mongo{client: client, db: client.Database(database), logger: logger}, nil
}

func (m *Mongo) Upsert(ctx context.Context, c Collection, key Key, doc document.Document) error {
	set := bson.M(withKey(key, doc))
	_, err := m.db.Collection(string(c)).UpdateOne(ctx,
		bson.M{key.Field: key.Value},
		bson.M{"$set": set},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return &Error{Op: "upsert", Collection: c, Err: err}
	}
	return nil
}

func (m *Mongo) Find(ctx context.Context, c Collection, filter Filter) ([]document.Document, error) {
	cur, err := m.db.Collection(string(c)).Find(ctx,
		mongoFilter(filter),
		options.Find().SetProjection(bson.M{"_id": 0}),
	)
	if err != nil {
		return nil, &Error{Op: "find", Collection: c, Err: err}
	}
	defer cur.Close(ctx)

	docs := []document.Document{}
	for cur.Next(ctx) {
		// Relaxed extended JSON keeps ints as plain numbers, so documents
		// decode to the same shapes the other backends produce.
		raw, err := bson.MarshalExtJSON(cur.Current, false, false)
		if err != nil {
			return nil, &Error{Op: "find", Collection: c, Err: fmt.Errorf("encode document: %w", err)}
		}
		doc, err := document.Decode(raw)
		if err != nil {
			return nil, &Error{Op: "find", Collection: c, Err: err}
		}
		docs = append(docs, doc)
	}
	if err := cur.Err(); err != nil {
		return nil, &Error{Op: "find", Collection: c, Err: err}
	}
	return docs, nil
}

// mongoFilter translates a Filter to a query document. Conditions on the
// same field are merged into one operator document.
func mongoFilter(f Filter) bson.M {
	q := bson.M{}
	for _, cond := range f {
		ops, ok := q[cond.Field].(bson.M)
		if !ok {
			ops = bson.M{}
			q[cond.Field] = ops
		}
		ops[string(cond.Op)] = cond.Value
	}
	return q
}

// EnsureSchema creates a unique index on every natural key plus the
// season/kick-off index used by the matches endpoint.
func (m *Mongo) EnsureSchema(ctx context.Context) error {
	for _, c := range Collections {
		_, err := m.db.Collection(string(c)).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: c.KeyField(), Value: 1}},
			Options: options.Index().SetUnique(true),
		})
		if err != nil {
			return &Error{Op: "create index", Collection: c, Err: err}
		}
	}

	_, err := m.db.Collection(string(Matches)).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "season_id", Value: 1}, {Key: "match_start_th", Value: 1}},
	})
	if err != nil {
		return &Error{Op: "create index", Collection: Matches, Err: err}
	}

	m.logger.Info("Mongo indexes ensured", "database", m.db.Name())
	return nil
}

func (m *Mongo) Ping(ctx context.Context) error {
	if err := m.client.Ping(ctx, nil); err != nil {
		return &Error{Op: "ping", Err: err}
	}
	return nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
