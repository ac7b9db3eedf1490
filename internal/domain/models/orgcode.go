// internal/domain/models/orgcode.go
package models

import "time"

// OrgCodeEntry is the canonical mapping from an organization's short code to
// its document id. The document id in the org_codes collection is the code
// itself, which gives us uniqueness for free; reverse lookup (org id → code)
// is an equality query on org_id.
//
// Entries created by the resolver's fallback chain carry Backfilled=true and
// a timestamp so operators can tell provisioned mappings from discovered ones.
type OrgCodeEntry struct {
	Code         string     `bson:"_id" json:"code"`
	OrgID        string     `bson:"org_id" json:"org_id"`
	Backfilled   bool       `bson:"backfilled,omitempty" json:"backfilled,omitempty"`
	BackfilledAt *time.Time `bson:"backfilled_at,omitempty" json:"backfilled_at,omitempty"`
	CreatedAt    time.Time  `bson:"created_at" json:"created_at"`
}
