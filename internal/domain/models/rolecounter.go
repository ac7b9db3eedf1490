// internal/domain/models/rolecounter.go
package models

import "time"

// RoleCounter holds the next candidate sequence number for one
// (organization, role) pair. The document id is OrgID + "__" + Role.
//
// Next is advanced only inside the allocation transaction and never
// decreases. It is a hint, not an authority: the employee_codes collection
// decides whether a number is actually free.
type RoleCounter struct {
	ID        string    `bson:"_id" json:"id"`
	OrgID     string    `bson:"org_id" json:"org_id"`
	Role      string    `bson:"role" json:"role"`
	Next      int64     `bson:"next" json:"next"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// RoleCounterID builds the composite document id for a (org, role) counter.
func RoleCounterID(orgID, role string) string {
	return orgID + "__" + role
}
