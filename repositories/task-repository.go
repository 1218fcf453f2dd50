package repositories

import (
	"context"
	"fmt"

	"task-management/microservices/tasks-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TaskRepository persists tasks and their owned records in MongoDB. The
// assignment relation lives in its own collection keyed by (taskId, userId)
// so the raw link list stays readable without any visibility filtering.
// Writes that touch more than one collection run inside a session
// transaction, either everything commits or nothing does.
type TaskRepository struct {
	client      *mongo.Client
	tasks       *mongo.Collection
	assignments *mongo.Collection
	comments    *mongo.Collection
	attachments *mongo.Collection
}

func NewTaskRepository(client *mongo.Client, dbName string) *TaskRepository {
	db := client.Database(dbName)
	return &TaskRepository{
		client:      client,
		tasks:       db.Collection("tasks"),
		assignments: db.Collection("task_assignments"),
		comments:    db.Collection("task_comments"),
		attachments: db.Collection("task_attachments"),
	}
}

// assignment is the stored shape of one (task, user) link. It carries no
// attributes of its own, uniqueness of the pair is its only invariant.
type assignment struct {
	TaskID primitive.ObjectID `bson:"taskId"`
	UserID string             `bson:"userId"`
}

// EnsureIndexes creates the unique compound index that enforces one link
// per (task, user) pair. Called once at startup.
func (r *TaskRepository) EnsureIndexes(ctx context.Context) error {
	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "taskId", Value: 1}, {Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := r.assignments.Indexes().CreateOne(ctx, indexModel); err != nil {
		return fmt.Errorf("failed to create assignments index: %v", err)
	}
	return nil
}

func (r *TaskRepository) Insert(ctx context.Context, task *models.Task, assigneeIDs []string) error {
	return r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if _, err := r.tasks.InsertOne(sc, task); err != nil {
			return fmt.Errorf("failed to insert task: %v", err)
		}
		return r.insertAssignments(sc, task.ID, assigneeIDs)
	})
}

// FindByID returns (nil, nil) when the id is malformed or no task matches;
// a missing task is not an infrastructure error.
func (r *TaskRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var task models.Task
	err = r.tasks.FindOne(ctx, bson.M{"_id": objectID}).Decode(&task)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %v", err)
	}
	return &task, nil
}

// FindAssigneeIDs reads the raw assignment links of a task. No filtering
// happens here, links to soft-deleted users are returned like any other.
func (r *TaskRepository) FindAssigneeIDs(ctx context.Context, taskID string) ([]string, error) {
	objectID, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return nil, nil
	}

	cursor, err := r.assignments.Find(ctx, bson.M{"taskId": objectID})
	if err != nil {
		return nil, fmt.Errorf("failed to find assignments: %v", err)
	}
	defer cursor.Close(ctx)

	var userIDs []string
	for cursor.Next(ctx) {
		var link assignment
		if err := cursor.Decode(&link); err != nil {
			return nil, fmt.Errorf("failed to decode assignment: %v", err)
		}
		userIDs = append(userIDs, link.UserID)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}
	return userIDs, nil
}

// Update replaces the stored task document. When assigneeIDs is non-nil the
// whole link set is replaced with it in the same transaction. The write is
// unconditional, of two racing updates the later commit wins.
func (r *TaskRepository) Update(ctx context.Context, task *models.Task, assigneeIDs *[]string) error {
	return r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		result, err := r.tasks.ReplaceOne(sc, bson.M{"_id": task.ID}, task)
		if err != nil {
			return fmt.Errorf("failed to update task: %v", err)
		}
		if result.MatchedCount == 0 {
			return fmt.Errorf("task not found for update")
		}

		if assigneeIDs == nil {
			return nil
		}
		if _, err := r.assignments.DeleteMany(sc, bson.M{"taskId": task.ID}); err != nil {
			return fmt.Errorf("failed to clear assignments: %v", err)
		}
		return r.insertAssignments(sc, task.ID, *assigneeIDs)
	})
}

// DeleteTree removes the task with its assignment links, comments and
// attachments as one atomic unit.
func (r *TaskRepository) DeleteTree(ctx context.Context, taskID string) error {
	objectID, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return fmt.Errorf("invalid task ID format: %v", err)
	}

	return r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if _, err := r.tasks.DeleteOne(sc, bson.M{"_id": objectID}); err != nil {
			return fmt.Errorf("failed to delete task: %v", err)
		}
		owned := bson.M{"taskId": objectID}
		if _, err := r.assignments.DeleteMany(sc, owned); err != nil {
			return fmt.Errorf("failed to delete assignments: %v", err)
		}
		if _, err := r.comments.DeleteMany(sc, owned); err != nil {
			return fmt.Errorf("failed to delete comments: %v", err)
		}
		if _, err := r.attachments.DeleteMany(sc, owned); err != nil {
			return fmt.Errorf("failed to delete attachments: %v", err)
		}
		return nil
	})
}

func (r *TaskRepository) FindAll(ctx context.Context) ([]models.Task, error) {
	return r.findTasks(ctx, bson.M{})
}

func (r *TaskRepository) FindByProject(ctx context.Context, projectID string) ([]models.Task, error) {
	return r.findTasks(ctx, bson.M{"projectId": projectID})
}

// HasUnfinished reports whether the project owns any task outside the two
// terminal states.
func (r *TaskRepository) HasUnfinished(ctx context.Context, projectID string) (bool, error) {
	filter := bson.M{
		"projectId": projectID,
		"status":    bson.M{"$nin": []models.TaskStatus{models.StatusCompleted, models.StatusCancelled}},
	}
	count, err := r.tasks.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to count unfinished tasks: %v", err)
	}
	return count > 0, nil
}

// RemoveUserAssignments deletes every assignment link of one user across
// all tasks and returns how many links were removed.
func (r *TaskRepository) RemoveUserAssignments(ctx context.Context, userID string) (int64, error) {
	result, err := r.assignments.DeleteMany(ctx, bson.M{"userId": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to remove user assignments: %v", err)
	}
	return result.DeletedCount, nil
}

func (r *TaskRepository) findTasks(ctx context.Context, filter bson.M) ([]models.Task, error) {
	cursor, err := r.tasks.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tasks: %v", err)
	}
	defer cursor.Close(ctx)

	var tasks []models.Task
	for cursor.Next(ctx) {
		var task models.Task
		if err := cursor.Decode(&task); err != nil {
			return nil, fmt.Errorf("failed to decode task: %v", err)
		}
		tasks = append(tasks, task)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}
	return tasks, nil
}

func (r *TaskRepository) insertAssignments(ctx context.Context, taskID primitive.ObjectID, assigneeIDs []string) error {
	if len(assigneeIDs) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(assigneeIDs))
	for _, userID := range assigneeIDs {
		docs = append(docs, assignment{TaskID: taskID, UserID: userID})
	}
	if _, err := r.assignments.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert assignments: %v", err)
	}
	return nil
}

// withTransaction runs fn inside one session transaction. Multi-document
// transactions need mongod running as a replica set.
func (r *TaskRepository) withTransaction(ctx context.Context, fn func(mongo.SessionContext) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %v", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
