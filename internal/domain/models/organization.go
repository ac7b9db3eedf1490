// internal/domain/models/organization.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Organization includes a case/diacritic-insensitive name field for
// search/sort. The code-shaped alias fields (org_code, company_code,
// short_code) exist because historical imports stored the tenant's short
// code under different names; the org-code resolver probes all of them.
type Organization struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"-"`
	OrgCode     string             `bson:"org_code,omitempty" json:"org_code,omitempty"`
	CompanyCode string             `bson:"company_code,omitempty" json:"company_code,omitempty"`
	ShortCode   string             `bson:"short_code,omitempty" json:"short_code,omitempty"`
	ContactInfo string             `bson:"contact_info,omitempty" json:"contact_info,omitempty"`
	Status      string             `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}
