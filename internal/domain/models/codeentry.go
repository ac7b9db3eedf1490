// internal/domain/models/codeentry.go
package models

import "time"

// CodeEntry reserves one formatted employee code. The document id in the
// employee_codes collection is the code string itself, so presence of a
// document is the uniqueness check. Entries are append-only: once written
// they are never overwritten or deleted, which is what makes an issued code
// permanent.
type CodeEntry struct {
	Code       string    `bson:"_id" json:"code"`
	OrgID      string    `bson:"org_id" json:"org_id"`
	Role       string    `bson:"role" json:"role"`
	Number     int64     `bson:"number" json:"number"`
	TeammateID string    `bson:"teammate_id,omitempty" json:"teammate_id,omitempty"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}
