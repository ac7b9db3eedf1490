// internal/domain/models/teammember.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TeamMemberRecord is the denormalized roster entry for an organization's
// team page. Exactly one document per (org_id, teammate_id). EmployeeCode is
// a display copy; the org-code resolver also scans these records to infer an
// organization code from previously allocated employee codes.
type TeamMemberRecord struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrgID        primitive.ObjectID `bson:"org_id" json:"org_id"`
	TeammateID   primitive.ObjectID `bson:"teammate_id" json:"teammate_id"`
	Role         string             `bson:"role" json:"role"`
	EmployeeCode string             `bson:"employee_code,omitempty" json:"employee_code,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}
