package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/nhle/taskflow/internal/model"
)

// MongoStore implements the Store interface on MongoDB. Checklist items,
// assignees and attachments are embedded in the task document.
type MongoStore struct {
	client *mongo.Client
	users  *mongo.Collection
	tasks  *mongo.Collection
}

// NewMongoStore connects to uri, verifies the connection, and ensures
// the unique email index exists.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}

	db := client.Database(database)
	s := &MongoStore{
		client: client,
		users:  db.Collection("users"),
		tasks:  db.Collection("tasks"),
	}

	_, err = s.users.Indexes().CreateOne(connectCtx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("creating email index: %w", err)
	}
	_, err = s.tasks.Indexes().CreateMany(connectCtx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "assignedTo", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("creating task indexes: %w", err)
	}

	return s, nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Ping checks that the primary is reachable.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// CreateTask inserts a new task document. Generates a UUID if ID is empty.
func (s *MongoStore) CreateTask(ctx context.Context, task *model.Task) error {
	if strings.TrimSpace(task.Title) == "" {
		return fmt.Errorf("task title must not be empty")
	}
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	if _, err := s.tasks.InsertOne(ctx, normalizeTaskDoc(*task)); err != nil {
		return fmt.Errorf("creating task: %w", err)
	}
	return nil
}

// SaveTask overwrites the mutable fields of an existing task.
func (s *MongoStore) SaveTask(ctx context.Context, task model.Task) error {
	task = normalizeTaskDoc(task)
	result, err := s.tasks.UpdateOne(ctx, bson.M{"_id": task.ID}, bson.M{"$set": bson.M{
		"title":         task.Title,
		"description":   task.Description,
		"priority":      task.Priority,
		"status":        task.Status,
		"dueDate":       utcPtr(task.DueDate),
		"assignedTo":    task.AssignedTo,
		"attachments":   task.Attachments,
		"todoChecklist": task.TodoChecklist,
		"progress":      task.Progress,
		"updatedAt":     task.UpdatedAt.UTC(),
	}})
	if err != nil {
		return fmt.Errorf("updating task %s: %w", task.ID, err)
	}
	if result.MatchedCount == 0 {
		return model.NotFoundf("Task not found")
	}
	return nil
}

// DeleteTask removes a task document.
func (s *MongoStore) DeleteTask(ctx context.Context, id string) error {
	result, err := s.tasks.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return model.NotFoundf("Task not found")
	}
	return nil
}

// GetTaskByID retrieves a single task by ID.
func (s *MongoStore) GetTaskByID(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	err := s.tasks.FindOne(ctx, bson.M{"_id": id}).Decode(&task)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, model.NotFoundf("Task not found")
	}
	if err != nil {
		return nil, fmt.Errorf("getting task %s: %w", id, err)
	}
	task = normalizeTaskDoc(task)
	return &task, nil
}

// GetTasks retrieves tasks matching the filter.
func (s *MongoStore) GetTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error) {
	cursor, err := s.tasks.Find(ctx, mongoTaskFilter(filter), mongoFindOptions(filter))
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer cursor.Close(ctx)

	tasks := []model.Task{}
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("decoding tasks: %w", err)
	}
	for i := range tasks {
		tasks[i] = normalizeTaskDoc(tasks[i])
	}
	return tasks, nil
}

// CountTasks returns the number of tasks matching the filter.
func (s *MongoStore) CountTasks(ctx context.Context, filter TaskFilter) (int, error) {
	n, err := s.tasks.CountDocuments(ctx, mongoTaskFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("counting tasks: %w", err)
	}
	return int(n), nil
}

// CountTasksBy groups the tasks matching filter on field.
func (s *MongoStore) CountTasksBy(
	ctx context.Context,
	field TaskField,
	filter TaskFilter,
) ([]FieldCount, error) {
	if _, ok := groupColumns[field]; !ok {
		return nil, fmt.Errorf("cannot group tasks by %q", field)
	}

	cursor, err := s.tasks.Aggregate(ctx, mongoGroupPipeline(field, filter))
	if err != nil {
		return nil, fmt.Errorf("grouping tasks by %s: %w", field, err)
	}
	defer cursor.Close(ctx)

	counts := []FieldCount{}
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, fmt.Errorf("decoding %s groups: %w", field, err)
	}
	return counts, nil
}

// CreateUser inserts a new user document. Generates a UUID if ID is empty.
func (s *MongoStore) CreateUser(ctx context.Context, user *model.User) error {
	user.Email = model.NormalizeEmail(user.Email)
	if user.Email == "" {
		return fmt.Errorf("user email must not be empty")
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = model.RoleMember
	}
	if _, err := s.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return model.Conflictf("User already exists")
		}
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

// SaveUser overwrites the mutable fields of an existing user.
func (s *MongoStore) SaveUser(ctx context.Context, user model.User) error {
	result, err := s.users.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": bson.M{
		"name":            user.Name,
		"email":           model.NormalizeEmail(user.Email),
		"password":        user.Password,
		"profileImageUrl": user.ProfileImageURL,
		"role":            user.Role,
		"updatedAt":       user.UpdatedAt.UTC(),
	}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return model.Conflictf("Email is already in use")
		}
		return fmt.Errorf("updating user %s: %w", user.ID, err)
	}
	if result.MatchedCount == 0 {
		return model.NotFoundf("User not found")
	}
	return nil
}

// GetUserByID retrieves a single user by ID.
func (s *MongoStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

// GetUserByEmail retrieves a single user by normalized email.
func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.findUser(ctx, bson.M{"email": model.NormalizeEmail(email)})
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.M) (*model.User, error) {
	var user model.User
	err := s.users.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, model.NotFoundf("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return &user, nil
}

// GetUsers retrieves users matching the filter, oldest first.
func (s *MongoStore) GetUsers(ctx context.Context, filter UserFilter) ([]model.User, error) {
	query := bson.M{}
	if filter.Role != nil {
		query["role"] = *filter.Role
	}
	return s.findUsers(ctx, query)
}

// GetUsersByIDs retrieves the users whose IDs appear in ids.
func (s *MongoStore) GetUsersByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	if len(ids) == 0 {
		return []model.User{}, nil
	}
	return s.findUsers(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (s *MongoStore) findUsers(ctx context.Context, query bson.M) ([]model.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.users.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []model.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decoding users: %w", err)
	}
	return users, nil
}

// mongoTaskFilter translates a TaskFilter into a query document.
func mongoTaskFilter(filter TaskFilter) bson.M {
	query := bson.M{}
	status := bson.M{}
	if filter.Status != nil {
		status["$eq"] = *filter.Status
	}
	if filter.ExcludeStatus != nil {
		status["$ne"] = *filter.ExcludeStatus
	}
	if len(status) > 0 {
		query["status"] = status
	}
	if filter.Priority != nil {
		query["priority"] = *filter.Priority
	}
	if filter.AssignedTo != nil {
		query["assignedTo"] = bson.M{"$in": []string{*filter.AssignedTo}}
	}
	if filter.DueBefore != nil {
		query["dueDate"] = bson.M{"$lt": filter.DueBefore.UTC()}
	}
	return query
}

var mongoSortFields = map[string]string{
	"created_at": "createdAt",
	"updated_at": "updatedAt",
	"due_date":   "dueDate",
	"title":      "title",
	"status":     "status",
	"priority":   "priority",
}

// mongoFindOptions maps sorting and pagination onto find options.
func mongoFindOptions(filter TaskFilter) *options.FindOptions {
	field := "createdAt"
	if f, ok := mongoSortFields[filter.SortBy]; ok {
		field = f
	}
	direction := 1
	if filter.SortDesc {
		direction = -1
	}

	opts := options.Find().SetSort(bson.D{{Key: field, Value: direction}, {Key: "_id", Value: direction}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
		if filter.Offset > 0 {
			opts.SetSkip(int64(filter.Offset))
		}
	}
	return opts
}

// mongoGroupPipeline matches the filter and counts documents per field value.
func mongoGroupPipeline(field TaskField, filter TaskFilter) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: mongoTaskFilter(filter)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + string(field)},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
}

// normalizeTaskDoc replaces nil collections with empty ones so that
// documents never hold null arrays.
func normalizeTaskDoc(task model.Task) model.Task {
	if task.AssignedTo == nil {
		task.AssignedTo = []string{}
	}
	if task.Attachments == nil {
		task.Attachments = []string{}
	}
	if task.TodoChecklist == nil {
		task.TodoChecklist = []model.ChecklistItem{}
	}
	task.CreatedAt = task.CreatedAt.UTC()
	task.UpdatedAt = task.UpdatedAt.UTC()
	task.DueDate = utcPtr(task.DueDate)
	return task
}
