// internal/app/system/status/status.go
package status

// Record lifecycle states shared across collections.
const (
	Active   = "active"
	Inactive = "inactive"
	Archived = "archived"
)
