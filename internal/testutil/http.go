package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/astoriahq/studioops/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminClaims returns claims for a platform admin scoped to orgID.
func AdminClaims(orgID string) *auth.Claims {
	return &auth.Claims{
		UserID: primitive.NewObjectID().Hex(),
		Name:   "Test Admin",
		Email:  "admin@test.example",
		Role:   "admin",
		OrgID:  orgID,
	}
}

// OrgAdminClaims returns claims for an organization admin.
func OrgAdminClaims(orgID string) *auth.Claims {
	return &auth.Claims{
		UserID: primitive.NewObjectID().Hex(),
		Name:   "Test Org Admin",
		Email:  "orgadmin@test.example",
		Role:   "org_admin",
		OrgID:  orgID,
	}
}

// ViewerClaims returns claims for a signed-in caller with no admin role.
func ViewerClaims(orgID string) *auth.Claims {
	return &auth.Claims{
		UserID: primitive.NewObjectID().Hex(),
		Name:   "Test Viewer",
		Email:  "viewer@test.example",
		Role:   "viewer",
		OrgID:  orgID,
	}
}

// AuthedRequest builds a request carrying the given claims in context, as
// the auth middleware would have left it.
func AuthedRequest(method, target string, body io.Reader, claims *auth.Claims) *http.Request {
	r := httptest.NewRequest(method, target, body)
	if claims != nil {
		r = auth.WithClaims(r, claims)
	}
	return r
}
