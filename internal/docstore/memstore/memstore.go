// internal/docstore/memstore/memstore.go
package memstore

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/astoriahq/studioops/internal/docstore"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store is an in-memory docstore.Store with optimistic-concurrency
// transactions. Each document carries a version; a transaction records the
// version of every document it reads and validates them all at commit.
// Any mismatch aborts the commit with docstore.ErrContention, which is the
// same contract a real document database gives the allocation core.
//
// Documents are held as bson-encoded bytes so DataTo and merge behave the
// way the Mongo-backed store behaves.
type Store struct {
	mu   sync.Mutex
	cols map[string]map[string]versionedDoc

	// forcedAborts makes the next n commits fail with ErrContention after
	// running the transaction body, for exercising retry paths in tests.
	forcedAborts int
}

type versionedDoc struct {
	raw     bson.Raw
	version uint64
}

func New() *Store {
	return &Store{cols: make(map[string]map[string]versionedDoc)}
}

// FailNextCommits forces the next n transaction commits to abort with
// docstore.ErrContention even when no real conflict occurred.
func (s *Store) FailNextCommits(n int) {
	s.mu.Lock()
	s.forcedAborts = n
	s.mu.Unlock()
}

type memDoc struct {
	id  string
	raw bson.Raw
}

func (d memDoc) ID() string { return d.id }

func (d memDoc) DataTo(v any) error { return bson.Unmarshal(d.raw, v) }

func encode(data any) (bson.Raw, error) {
	b, err := bson.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("memstore: encode: %w", err)
	}
	return bson.Raw(b), nil
}

// mergeRaw overlays the top-level fields of overlay onto base.
func mergeRaw(base, overlay bson.Raw) (bson.Raw, error) {
	var dst, src bson.M
	if err := bson.Unmarshal(base, &dst); err != nil {
		return nil, err
	}
	if err := bson.Unmarshal(overlay, &src); err != nil {
		return nil, err
	}
	for k, v := range src {
		dst[k] = v
	}
	b, err := bson.Marshal(dst)
	if err != nil {
		return nil, err
	}
	return bson.Raw(b), nil
}

// canonical round-trips a value through bson so that query comparisons do
// not depend on the caller's exact Go type (e.g. int vs int64). ObjectIDs
// compare by hex form, matching how docstore callers pass ids around.
func canonical(v any) any {
	b, err := bson.Marshal(bson.M{"v": v})
	if err != nil {
		return v
	}
	var m bson.M
	if err := bson.Unmarshal(b, &m); err != nil {
		return v
	}
	out := m["v"]
	if oid, ok := out.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return out
}

func fieldMatches(raw bson.Raw, field string, want any) bool {
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return false
	}
	got, ok := m[field]
	if !ok {
		return false
	}
	return reflect.DeepEqual(canonical(got), canonical(want))
}

func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Doc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	vd, ok := s.cols[collection][id]
	if !ok {
		return nil, docstore.ErrNotFound
	}
	return memDoc{id: id, raw: vd.raw}, nil
}

func (s *Store) Query(ctx context.Context, collection, field string, value any, limit int) ([]docstore.Doc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queryLocked(collection, field, value, limit), nil
}

func (s *Store) queryLocked(collection, field string, value any, limit int) []docstore.Doc {
	col := s.cols[collection]
	ids := make([]string, 0, len(col))
	for id := range col {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []docstore.Doc
	for _, id := range ids {
		if limit > 0 && len(out) >= limit {
			break
		}
		if fieldMatches(col[id].raw, field, value) {
			out = append(out, memDoc{id: id, raw: col[id].raw})
		}
	}
	return out
}

func (s *Store) Set(ctx context.Context, collection, id string, data any, merge bool) error {
	raw, err := encode(data)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setLocked(collection, id, raw, merge)
}

func (s *Store) setLocked(collection, id string, raw bson.Raw, merge bool) error {
	col, ok := s.cols[collection]
	if !ok {
		col = make(map[string]versionedDoc)
		s.cols[collection] = col
	}
	prev, exists := col[id]
	if merge && exists {
		merged, err := mergeRaw(prev.raw, raw)
		if err != nil {
			return err
		}
		raw = merged
	}
	col[id] = versionedDoc{raw: raw, version: prev.version + 1}
	return nil
}

// readKey identifies one document slot observed by a transaction.
type readKey struct {
	collection string
	id         string
}

type pendingWrite struct {
	collection string
	id         string
	raw        bson.Raw
	merge      bool
}

// tx buffers writes and records the version of every document it reads.
// Reads see the transaction's own buffered writes (read-your-writes).
type tx struct {
	s      *Store
	reads  map[readKey]uint64
	writes []pendingWrite
}

func (t *tx) observe(collection, id string) {
	key := readKey{collection, id}
	if _, seen := t.reads[key]; seen {
		return
	}
	t.reads[key] = t.s.cols[collection][id].version
}

// buffered replays the transaction's pending writes for one document over
// its committed state, so in-transaction reads see exactly what commit would
// produce. A merge write overlays whatever is visible so far (the committed
// document included); a replace write resets it.
func (t *tx) buffered(collection, id string) (bson.Raw, bool, error) {
	raw, have := bson.Raw(nil), false
	if vd, ok := t.s.cols[collection][id]; ok {
		raw, have = vd.raw, true
	}
	wrote := false
	for _, w := range t.writes {
		if w.collection != collection || w.id != id {
			continue
		}
		if w.merge && have {
			merged, err := mergeRaw(raw, w.raw)
			if err != nil {
				return nil, false, err
			}
			raw = merged
		} else {
			raw = w.raw
			have = true
		}
		wrote = true
	}
	return raw, wrote, nil
}

func (t *tx) Get(ctx context.Context, collection, id string) (docstore.Doc, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	t.observe(collection, id)
	if raw, ok, err := t.buffered(collection, id); err != nil {
		return nil, err
	} else if ok {
		return memDoc{id: id, raw: raw}, nil
	}
	vd, ok := t.s.cols[collection][id]
	if !ok {
		return nil, docstore.ErrNotFound
	}
	return memDoc{id: id, raw: vd.raw}, nil
}

func (t *tx) Query(ctx context.Context, collection, field string, value any, limit int) ([]docstore.Doc, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	docs := t.s.queryLocked(collection, field, value, limit)
	for _, d := range docs {
		t.observe(collection, d.ID())
	}
	return docs, nil
}

func (t *tx) Set(ctx context.Context, collection, id string, data any, merge bool) error {
	raw, err := encode(data)
	if err != nil {
		return err
	}
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	// Writes are validated against the version seen at first touch.
	t.observe(collection, id)
	t.writes = append(t.writes, pendingWrite{collection: collection, id: id, raw: raw, merge: merge})
	return nil
}

func (s *Store) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx docstore.Tx) error) error {
	t := &tx{s: s, reads: make(map[readKey]uint64)}
	if err := fn(ctx, t); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.forcedAborts > 0 {
		s.forcedAborts--
		return docstore.ErrContention
	}
	for key, version := range t.reads {
		if s.cols[key.collection][key.id].version != version {
			return docstore.ErrContention
		}
	}
	for _, w := range t.writes {
		if err := s.setLocked(w.collection, w.id, w.raw, w.merge); err != nil {
			return err
		}
	}
	return nil
}
