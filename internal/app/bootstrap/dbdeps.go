// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/astoriahq/studioops/internal/docstore/mongostore"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Docs is the document-store handle the stores and the allocation
	// core run against.
	Docs *mongostore.Store

	// Redis is non-nil only when the org-code cache runs on Redis.
	Redis *redis.Client
}
