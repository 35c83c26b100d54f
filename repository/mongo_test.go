package repository

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Rajangupta9/taskflow/models"
)

var (
	mongoOnce sync.Once
	mongoURI  string
	mongoUp   bool
)

// testMongoURI reports the server the Mongo tests run against. Set
// TASKFLOW_TEST_MONGO_URI to point them elsewhere than localhost.
func testMongoURI() (string, bool) {
	mongoOnce.Do(func() {
		mongoURI = os.Getenv("TASKFLOW_TEST_MONGO_URI")
		if mongoURI == "" {
			mongoURI = "mongodb://localhost:27017"
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI).SetServerSelectionTimeout(time.Second))
		if err != nil {
			return
		}
		defer client.Disconnect(context.Background())
		mongoUp = client.Ping(ctx, nil) == nil
	})
	return mongoURI, mongoUp
}

// openMongo gives each test its own database and drops it afterwards.
func openMongo(t *testing.T) *Mongo {
	t.Helper()
	uri, ok := testMongoURI()
	if !ok {
		t.Skip("Skipping Mongo integration test: mongodb not available")
	}
	name := "taskflow_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	repo, err := OpenMongo(context.Background(), uri, name)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx := context.Background()
		_ = repo.tasks.Database().Drop(ctx)
		_ = repo.Close(ctx)
	})
	return repo
}

func TestMongoBatchPrecheckLeavesNoPartialInsert(t *testing.T) {
	repo := openMongo(t)
	ctx := context.Background()
	require.NoError(t, repo.CreateTasks(ctx, "u1", []models.Task{task("x", "Existing", "2024-03-15")}))

	err := repo.CreateTasks(ctx, "u1", []models.Task{
		task("y", "New", "2024-03-15"),
		task("z", "Also new", "2024-03-15"),
		task("x", "Clash", "2024-03-15"),
	})
	require.ErrorIs(t, err, ErrConflict)

	n, err := repo.tasks.CountDocuments(ctx, bson.M{"user_id": "u1"})
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}
