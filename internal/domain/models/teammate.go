// internal/domain/models/teammate.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Teammate is a studio staff profile scoped to one organization.
// EmployeeCode is a denormalized copy of the allocated code; the
// employee_codes collection remains the authority on code ownership.
type Teammate struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	OrgID        primitive.ObjectID `bson:"org_id" json:"org_id"`
	Name         string             `bson:"name" json:"name"`
	NameCI       string             `bson:"name_ci" json:"-"`
	Email        string             `bson:"email" json:"email"`
	Role         string             `bson:"role" json:"role"`
	EmployeeCode string             `bson:"employee_code,omitempty" json:"employee_code,omitempty"`
	Status       string             `bson:"status" json:"status"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}
