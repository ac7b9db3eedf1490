// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureOrganizations(ctx, db); err != nil {
		problems = append(problems, "organizations: "+err.Error())
	}
	if err := ensureOrgCodes(ctx, db); err != nil {
		problems = append(problems, "org_codes: "+err.Error())
	}
	if err := ensureEmployeeCodes(ctx, db); err != nil {
		problems = append(problems, "employee_codes: "+err.Error())
	}
	if err := ensureTeammates(ctx, db); err != nil {
		problems = append(problems, "teammates: "+err.Error())
	}
	if err := ensureTeamMembers(ctx, db); err != nil {
		problems = append(problems, "team_members: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	_, err := coll.Indexes().CreateMany(ctx, models)
	if err != nil && !isOptionsConflictErr(err) {
		return fmt.Errorf("create indexes on %s: %w", coll.Name(), err)
	}
	return nil
}

// Mongo/DocDB returns IndexOptionsConflict when an index with the same keys
// already exists under a different name; that is fine for our purposes.
func isOptionsConflictErr(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "IndexOptionsConflict")
}

func ensureOrganizations(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("organizations"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_orgs_nameci"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_orgs_status"),
		},
	})
}

// org_codes is keyed by the code itself (_id), so forward lookup is covered;
// this index serves the resolver's reverse lookup by organization id.
func ensureOrgCodes(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("org_codes"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "org_id", Value: 1}},
			Options: options.Index().SetName("idx_orgcodes_orgid"),
		},
	})
}

func ensureEmployeeCodes(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("employee_codes"), []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "org_id", Value: 1},
				{Key: "role", Value: 1},
				{Key: "number", Value: 1},
			},
			Options: options.Index().SetName("idx_empcodes_org_role_number"),
		},
	})
}

func ensureTeammates(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("teammates"), []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "org_id", Value: 1},
				{Key: "name_ci", Value: 1},
			},
			Options: options.Index().SetName("idx_teammates_org_nameci"),
		},
	})
}

func ensureTeamMembers(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("team_members"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "org_id", Value: 1}},
			Options: options.Index().SetName("idx_teammembers_orgid"),
		},
		{
			Keys:    bson.D{{Key: "teammate_id", Value: 1}},
			Options: options.Index().SetName("idx_teammembers_teammateid"),
		},
	})
}
