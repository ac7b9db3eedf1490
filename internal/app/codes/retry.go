// internal/app/codes/retry.go
package codes

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/astoriahq/studioops/internal/docstore"
	"go.uber.org/zap"
)

const (
	// DefaultMaxAttempts is the transaction retry budget.
	DefaultMaxAttempts = 6

	// DefaultBaseDelay seeds the exponential backoff between attempts.
	DefaultBaseDelay = 50 * time.Millisecond
)

// Allocator runs allocation transactions against a docstore with bounded
// retry on transient contention.
type Allocator struct {
	store       docstore.Store
	log         *zap.Logger
	maxAttempts int
	baseDelay   time.Duration
	pattern     string
}

// Option customizes an Allocator.
type Option func(*Allocator)

// WithMaxAttempts overrides the retry budget.
func WithMaxAttempts(n int) Option {
	return func(a *Allocator) {
		if n > 0 {
			a.maxAttempts = n
		}
	}
}

// WithBaseDelay overrides the backoff seed delay.
func WithBaseDelay(d time.Duration) Option {
	return func(a *Allocator) {
		if d > 0 {
			a.baseDelay = d
		}
	}
}

// WithDefaultPattern sets the format pattern used when a request does not
// carry one. Requests with an explicit pattern are unaffected.
func WithDefaultPattern(p string) Option {
	return func(a *Allocator) {
		if p != "" {
			a.pattern = p
		}
	}
}

func NewAllocator(store docstore.Store, logger *zap.Logger, opts ...Option) *Allocator {
	a := &Allocator{
		store:       store,
		log:         logger,
		maxAttempts: DefaultMaxAttempts,
		baseDelay:   DefaultBaseDelay,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Allocate issues the next free employee code for (req.OrgCode, req.Role).
//
// Transient store contention is absorbed here: the whole transaction is
// re-run from scratch after an exponential backoff (base * 2^(attempt-1),
// plus up to 10% jitter), so each attempt sees current counter and index
// state. Terminal kinds — ErrOrgCodeNotFound, ErrOrgMismatch,
// ErrAllocationExhausted — propagate immediately; retrying them cannot
// succeed. When the budget runs out the last contention error is wrapped
// in ErrAllocationFailed.
//
// Concurrent callers for the same (org, role) each get a distinct code or a
// typed failure; none are silently dropped.
func (a *Allocator) Allocate(ctx context.Context, req Request) (*Result, error) {
	req.Role = NormalizeRole(req.Role)
	req.OrgCode = NormalizeOrgCode(req.OrgCode)
	if req.Pattern == "" {
		req.Pattern = a.pattern
	}

	start := time.Now()
	var lastErr error
	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		res, err := allocateOnce(ctx, a.store, req)
		if err == nil {
			res.Attempts = attempt
			res.Elapsed = time.Since(start)
			a.log.Info("employee code allocated",
				zap.String("code", res.Code),
				zap.String("org_id", res.OrgID),
				zap.String("role", res.Role),
				zap.Int64("number", res.Number),
				zap.Int("attempts", res.Attempts),
				zap.Duration("elapsed", res.Elapsed))
			return res, nil
		}
		if !docstore.IsContention(err) {
			return nil, err
		}

		lastErr = err
		if attempt == a.maxAttempts {
			break
		}
		delay := backoff(a.baseDelay, attempt)
		a.log.Warn("allocation transaction aborted on contention; backing off",
			zap.String("org_code", req.OrgCode),
			zap.String("role", req.Role),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("%w after %d attempts: %w", ErrAllocationFailed, a.maxAttempts, lastErr)
}

// backoff computes base * 2^(attempt-1) with up to 10% random jitter.
func backoff(base time.Duration, attempt int) time.Duration {
	d := base << (attempt - 1)
	jitter := time.Duration(rand.Int63n(int64(d)/10 + 1))
	return d + jitter
}
