package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Rajangupta9/taskflow/config"
	"github.com/Rajangupta9/taskflow/models"
)

type Mongo struct {
	client *mongo.Client
	tasks  *mongo.Collection
	users  *mongo.Collection
	now    func() time.Time
}

// OpenMongo connects and makes sure the unique indexes exist.
func OpenMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	client, err := config.ConnectMongo(ctx, uri)
	if err != nil {
		return nil, err
	}

	db := client.Database(database)
	m := &Mongo{
		client: client,
		tasks:  db.Collection("tasks"),
		users:  db.Collection("users"),
		now:    time.Now,
	}
	if err := m.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return m, nil
}

func (m *Mongo) ensureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	if _, err := m.tasks.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "id", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("task indexes: %w", err)
	}
	if _, err := m.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: unique},
	}); err != nil {
		return fmt.Errorf("user indexes: %w", err)
	}
	return nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *Mongo) ListTasks(ctx context.Context, userID string) ([]models.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := m.tasks.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	tasks := []models.Task{}
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (m *Mongo) GetTask(ctx context.Context, userID, id string) (*models.Task, error) {
	var t models.Task
	err := m.tasks.FindOne(ctx, bson.M{"user_id": userID, "id": id}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTasks checks for existing ids before InsertMany. Multi-document
// transactions need a replica set, so a concurrent insert of the same id
// between the check and the write can still leave a partial batch.
func (m *Mongo) CreateTasks(ctx context.Context, userID string, tasks []models.Task) error {
	if id, dup := duplicateIDs(tasks); dup {
		return fmt.Errorf("task %s: %w", id, ErrConflict)
	}

	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	n, err := m.tasks.CountDocuments(ctx, bson.M{"user_id": userID, "id": bson.M{"$in": ids}})
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%d of %d tasks: %w", n, len(tasks), ErrConflict)
	}

	now := m.now().UTC()
	docs := make([]any, len(tasks))
	for i, t := range tasks {
		t.UserID = userID
		t.CreatedAt = now
		t.UpdatedAt = now
		docs[i] = t
	}
	if _, err := m.tasks.InsertMany(ctx, docs); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("insert tasks: %w", ErrConflict)
		}
		return err
	}
	return nil
}

func (m *Mongo) UpdateTask(ctx context.Context, userID, id string, patch models.TaskPatch) (*models.Task, error) {
	set := bson.M{"updated_at": m.now().UTC()}
	for _, c := range patch.Changes() {
		set[c.Field] = c.Value
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var t models.Task
	err := m.tasks.FindOneAndUpdate(ctx, bson.M{"user_id": userID, "id": id}, bson.M{"$set": set}, opts).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (m *Mongo) DeleteTask(ctx context.Context, userID, id string) error {
	res, err := m.tasks.DeleteOne(ctx, bson.M{"user_id": userID, "id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return nil
}

func (m *Mongo) CreateUser(ctx context.Context, user *models.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = m.now().UTC()
	}
	if _, err := m.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("user %s: %w", user.Username, ErrConflict)
		}
		return err
	}
	return nil
}

func (m *Mongo) findUser(ctx context.Context, filter bson.M, key string) (*models.User, error) {
	var u models.User
	err := m.users.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("user %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (m *Mongo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return m.findUser(ctx, bson.M{"username": username}, username)
}

func (m *Mongo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return m.findUser(ctx, bson.M{"id": id}, id)
}
