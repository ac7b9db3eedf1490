// internal/docstore/mongostore/mongostore.go
package mongostore

import (
	"context"
	"errors"
	"fmt"

	"github.com/astoriahq/studioops/internal/docstore"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store adapts a Mongo database to the docstore interface. Transactions run
// on a session without the driver's built-in transient retry, so the retry
// policy stays with the caller; a TransientTransactionError label or a
// write-conflict code surfaces as docstore.ErrContention.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

func New(client *mongo.Client, db *mongo.Database) *Store {
	return &Store{client: client, db: db}
}

type mongoDoc struct {
	id  string
	raw bson.Raw
}

func (d mongoDoc) ID() string { return d.id }

func (d mongoDoc) DataTo(v any) error { return bson.Unmarshal(d.raw, v) }

// idValue maps docstore string ids onto Mongo _id values. Collections owned
// by the allocation core key documents by plain strings; records created by
// the CRUD stores use ObjectIDs, which arrive here in hex form.
func idValue(id string) any {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}

// queryFilter builds the equality filter for one field. The stored
// representation of a document reference differs by collection — the
// allocation core's collections persist org ids as plain strings while the
// CRUD stores persist ObjectIDs — and callers always supply the hex form,
// so a hex-shaped value must match either representation.
func queryFilter(field string, value any) bson.M {
	if s, ok := value.(string); ok {
		if oid, err := primitive.ObjectIDFromHex(s); err == nil {
			return bson.M{field: bson.M{"$in": bson.A{s, oid}}}
		}
	}
	return bson.M{field: value}
}

func docID(raw bson.Raw) string {
	v, err := raw.LookupErr("_id")
	if err != nil {
		return ""
	}
	if s, ok := v.StringValueOK(); ok {
		return s
	}
	if oid, ok := v.ObjectIDOK(); ok {
		return oid.Hex()
	}
	return v.String()
}

func get(ctx context.Context, db *mongo.Database, collection, id string) (docstore.Doc, error) {
	raw, err := db.Collection(collection).FindOne(ctx, bson.M{"_id": idValue(id)}).Raw()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, docstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongostore: get %s/%s: %w", collection, id, translate(err))
	}
	return mongoDoc{id: id, raw: raw}, nil
}

func query(ctx context.Context, db *mongo.Database, collection, field string, value any, limit int) ([]docstore.Doc, error) {
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := db.Collection(collection).Find(ctx, queryFilter(field, value), opts)
	if err != nil {
		return nil, fmt.Errorf("mongostore: query %s.%s: %w", collection, field, translate(err))
	}
	defer cur.Close(ctx)

	var out []docstore.Doc
	for cur.Next(ctx) {
		raw := make(bson.Raw, len(cur.Current))
		copy(raw, cur.Current)
		out = append(out, mongoDoc{id: docID(raw), raw: raw})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("mongostore: query %s.%s: %w", collection, field, translate(err))
	}
	return out, nil
}

func set(ctx context.Context, db *mongo.Database, collection, id string, data any, merge bool) error {
	c := db.Collection(collection)
	var err error
	if merge {
		doc, mErr := stripID(data)
		if mErr != nil {
			return mErr
		}
		_, err = c.UpdateOne(ctx,
			bson.M{"_id": idValue(id)},
			bson.M{"$set": doc},
			options.Update().SetUpsert(true))
	} else {
		_, err = c.ReplaceOne(ctx,
			bson.M{"_id": idValue(id)},
			data,
			options.Replace().SetUpsert(true))
	}
	if err != nil {
		return fmt.Errorf("mongostore: set %s/%s: %w", collection, id, translate(err))
	}
	return nil
}

// stripID drops _id from a merge payload; Mongo rejects $set on _id.
func stripID(data any) (bson.M, error) {
	b, err := bson.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("mongostore: encode: %w", err)
	}
	var m bson.M
	if err := bson.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("mongostore: encode: %w", err)
	}
	delete(m, "_id")
	return m, nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Doc, error) {
	return get(ctx, s.db, collection, id)
}

func (s *Store) Query(ctx context.Context, collection, field string, value any, limit int) ([]docstore.Doc, error) {
	return query(ctx, s.db, collection, field, value, limit)
}

func (s *Store) Set(ctx context.Context, collection, id string, data any, merge bool) error {
	return set(ctx, s.db, collection, id, data, merge)
}

type mongoTx struct {
	db *mongo.Database
}

func (t *mongoTx) Get(ctx context.Context, collection, id string) (docstore.Doc, error) {
	return get(ctx, t.db, collection, id)
}

func (t *mongoTx) Query(ctx context.Context, collection, field string, value any, limit int) ([]docstore.Doc, error) {
	return query(ctx, t.db, collection, field, value, limit)
}

func (t *mongoTx) Set(ctx context.Context, collection, id string, data any, merge bool) error {
	return set(ctx, t.db, collection, id, data, merge)
}

// RunTransaction executes fn inside one Mongo transaction. The session
// context is passed to fn so every read and write issued through the Tx
// joins the transaction.
func (s *Store) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx docstore.Tx) error) error {
	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("mongostore: start session: %w", err)
	}
	defer sess.EndSession(ctx)

	err = mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sess.StartTransaction(); err != nil {
			return err
		}
		if err := fn(sc, &mongoTx{db: s.db}); err != nil {
			_ = sess.AbortTransaction(sc)
			return err
		}
		return sess.CommitTransaction(sc)
	})
	return translate(err)
}

// Write-conflict server codes that arrive without the transient label.
const (
	codeWriteConflict       = 112
	codeTransactionTooOld   = 225
	codeNoSuchTransaction   = 251
	transientTxnErrorLabel  = "TransientTransactionError"
	unknownCommitErrorLabel = "UnknownTransactionCommitResult"
)

// translate folds the driver's transient-abort signals into
// docstore.ErrContention and leaves everything else untouched.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var se mongo.ServerError
	if errors.As(err, &se) {
		if se.HasErrorLabel(transientTxnErrorLabel) ||
			se.HasErrorLabel(unknownCommitErrorLabel) ||
			se.HasErrorCode(codeWriteConflict) ||
			se.HasErrorCode(codeTransactionTooOld) ||
			se.HasErrorCode(codeNoSuchTransaction) {
			return fmt.Errorf("%w: %s", docstore.ErrContention, err.Error())
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.HasErrorLabel(transientTxnErrorLabel) || ce.HasErrorLabel(unknownCommitErrorLabel)) {
		return fmt.Errorf("%w: %s", docstore.ErrContention, err.Error())
	}
	return err
}
