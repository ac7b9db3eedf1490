// internal/docstore/docstore.go
package docstore

import (
	"context"
	"errors"
)

// Doc is one document returned by a read. DataTo decodes the document body
// into a struct using the same bson tags the concrete store persists with.
type Doc interface {
	ID() string
	DataTo(v any) error
}

// Reader is the read surface shared by a Store and a transaction.
// Query supports equality filters with a limit only; that is the entire
// query capability the code-allocation machinery needs.
type Reader interface {
	Get(ctx context.Context, collection, id string) (Doc, error)
	Query(ctx context.Context, collection, field string, value any, limit int) ([]Doc, error)
}

// Writer is the write surface shared by a Store and a transaction.
// With merge=true, Set overlays the given top-level fields onto an existing
// document (creating it if absent); with merge=false it replaces the document.
type Writer interface {
	Set(ctx context.Context, collection, id string, data any, merge bool) error
}

// Tx is the transaction-scoped view of the store. All reads and writes made
// through a Tx commit atomically or not at all.
type Tx interface {
	Reader
	Writer
}

// Store is the document-store handle the allocation core runs against.
// RunTransaction executes fn under the store's transaction isolation; any
// error from fn rolls the transaction back and is returned unchanged. A
// commit-time conflict with a concurrently committed transaction surfaces
// as an error matching ErrContention.
type Store interface {
	Reader
	Writer
	RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

var (
	// ErrNotFound reports that the requested document does not exist.
	ErrNotFound = errors.New("docstore: document not found")

	// ErrContention reports a transient transaction abort caused by a
	// conflicting concurrent transaction. Callers retry; they never see it
	// as a terminal failure.
	ErrContention = errors.New("docstore: transaction contention")
)

// IsNotFound reports whether err means the document is absent.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsContention reports whether err is a retryable transaction abort.
func IsContention(err error) bool { return errors.Is(err, ErrContention) }
