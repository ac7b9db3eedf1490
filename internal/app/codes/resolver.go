// internal/app/codes/resolver.go
package codes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/astoriahq/studioops/internal/app/system/codecache"
	"github.com/astoriahq/studioops/internal/docstore"
	"github.com/astoriahq/studioops/internal/domain/models"
	"go.uber.org/zap"
)

// claimAliases are the code-shaped claim and organization-record fields the
// resolver probes, in order. Historical clients stored the short code under
// all of these.
var claimAliases = []string{"org_code", "orgCode", "organization_code", "company_code", "short_code"}

// rosterScanLimit caps how many roster records the last-resort probe reads.
const rosterScanLimit = 50

// Resolution names the winning strategy alongside the resolved code.
type Resolution struct {
	Code   string `json:"org_code"`
	Source string `json:"source"`
}

// Resolution sources.
const (
	SourceCache     = "cache"
	SourceCanonical = "canonical"
	SourceOverride  = "override"
	SourceClaims    = "claims"
	SourceOrgRecord = "organization"
	SourceRoster    = "roster"
)

// ResolveInput carries everything the discovery chain may draw on.
type ResolveInput struct {
	OrgID    string
	Override string         // explicit code supplied by the caller
	Claims   map[string]any // decoded auth-token claims, may be nil
}

// Resolver discovers a tenant's short organization code. The canonical
// org_codes collection is authoritative; when a fallback strategy wins, the
// discovered mapping is backfilled there so later calls short-circuit.
type Resolver struct {
	store docstore.Store
	cache codecache.Cache
	log   *zap.Logger
}

func NewResolver(store docstore.Store, cache codecache.Cache, logger *zap.Logger) *Resolver {
	return &Resolver{store: store, cache: cache, log: logger}
}

// Resolve returns the organization code for in.OrgID, trying in order:
// cache, canonical index, caller override, token claims, the organization
// record's alias fields, and finally a bounded scan of roster records for a
// previously allocated employee-code prefix. Store errors while probing are
// logged and skipped; a failed backfill write is not, since a resolution
// that could not be made durable must not be reported as resolved.
func (r *Resolver) Resolve(ctx context.Context, in ResolveInput) (*Resolution, error) {
	if code, ok := r.cache.Get(ctx, in.OrgID); ok {
		return &Resolution{Code: code, Source: SourceCache}, nil
	}

	if code := r.probeCanonical(ctx, in.OrgID); code != "" {
		r.cache.Set(ctx, in.OrgID, code)
		return &Resolution{Code: code, Source: SourceCanonical}, nil
	}

	for _, probe := range []struct {
		source string
		find   func() string
	}{
		{SourceOverride, func() string { return NormalizeOrgCode(in.Override) }},
		{SourceClaims, func() string { return codeFromClaims(in.Claims) }},
		{SourceOrgRecord, func() string { return r.probeOrgRecord(ctx, in.OrgID) }},
		{SourceRoster, func() string { return r.probeRoster(ctx, in.OrgID) }},
	} {
		code := probe.find()
		if code == "" {
			continue
		}
		if err := r.backfill(ctx, in.OrgID, code); err != nil {
			r.log.Error("org-code backfill failed",
				zap.String("org_id", in.OrgID),
				zap.String("code", code),
				zap.String("source", probe.source),
				zap.Error(err))
			return nil, &NotFoundError{OrgID: in.OrgID, Guidance: "backfill of discovered code failed; retry or provision the mapping directly"}
		}
		r.log.Info("org code resolved via fallback",
			zap.String("org_id", in.OrgID),
			zap.String("code", code),
			zap.String("source", probe.source))
		r.cache.Set(ctx, in.OrgID, code)
		return &Resolution{Code: code, Source: probe.source}, nil
	}

	return nil, &NotFoundError{
		OrgID:    in.OrgID,
		Guidance: "supply an org_code override, add a code to the organization record, or provision the org_codes mapping",
	}
}

// probeCanonical reverse-looks-up the canonical index by organization id.
func (r *Resolver) probeCanonical(ctx context.Context, orgID string) string {
	docs, err := r.store.Query(ctx, ColOrgCodes, "org_id", orgID, 1)
	if err != nil {
		r.log.Warn("canonical org-code lookup failed", zap.String("org_id", orgID), zap.Error(err))
		return ""
	}
	if len(docs) == 0 {
		return ""
	}
	return docs[0].ID()
}

// probeOrgRecord reads the organization document and checks its
// code-shaped alias fields.
func (r *Resolver) probeOrgRecord(ctx context.Context, orgID string) string {
	doc, err := r.store.Get(ctx, ColOrganizations, orgID)
	if err != nil {
		if !docstore.IsNotFound(err) {
			r.log.Warn("organization record probe failed", zap.String("org_id", orgID), zap.Error(err))
		}
		return ""
	}
	var fields map[string]any
	if err := doc.DataTo(&fields); err != nil {
		r.log.Warn("organization record decode failed", zap.String("org_id", orgID), zap.Error(err))
		return ""
	}
	return codeFromAliases(fields)
}

// probeRoster scans a bounded window of roster records for one that already
// carries an allocated employee code, and takes the prefix before the first
// dash as the implied organization code.
func (r *Resolver) probeRoster(ctx context.Context, orgID string) string {
	docs, err := r.store.Query(ctx, ColTeamMembers, "org_id", orgID, rosterScanLimit)
	if err != nil {
		r.log.Warn("roster probe failed", zap.String("org_id", orgID), zap.Error(err))
		return ""
	}
	for _, doc := range docs {
		var rec models.TeamMemberRecord
		if err := doc.DataTo(&rec); err != nil {
			continue
		}
		prefix, _, found := strings.Cut(rec.EmployeeCode, "-")
		if !found {
			continue
		}
		if code := NormalizeOrgCode(prefix); code != "" {
			return code
		}
	}
	return ""
}

// backfill writes the discovered mapping into the canonical index. An entry
// that already exists is left untouched: if it maps the code to another
// tenant, the allocation transaction's ownership check is the place that
// rejects it, not a resolver write racing the provisioning flow.
func (r *Resolver) backfill(ctx context.Context, orgID, code string) error {
	if _, err := r.store.Get(ctx, ColOrgCodes, code); err == nil {
		return nil
	} else if !docstore.IsNotFound(err) {
		return fmt.Errorf("backfill org code %q: %w", code, err)
	}

	now := time.Now().UTC()
	entry := models.OrgCodeEntry{
		Code:         code,
		OrgID:        orgID,
		Backfilled:   true,
		BackfilledAt: &now,
		CreatedAt:    now,
	}
	if err := r.store.Set(ctx, ColOrgCodes, code, entry, true); err != nil {
		return fmt.Errorf("backfill org code %q: %w", code, err)
	}
	return nil
}

// codeFromClaims checks the flat aliases and the nested org.* shape some
// identity providers emit.
func codeFromClaims(claims map[string]any) string {
	if claims == nil {
		return ""
	}
	if code := codeFromAliases(claims); code != "" {
		return code
	}
	if org, ok := claims["org"].(map[string]any); ok {
		for _, key := range []string{"code", "short_code", "org_code"} {
			if s, ok := org[key].(string); ok {
				if code := NormalizeOrgCode(s); code != "" {
					return code
				}
			}
		}
	}
	return ""
}

func codeFromAliases(fields map[string]any) string {
	for _, key := range claimAliases {
		if s, ok := fields[key].(string); ok {
			if code := NormalizeOrgCode(s); code != "" {
				return code
			}
		}
	}
	return ""
}
