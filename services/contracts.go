package services

import (
	"context"

	"task-management/microservices/tasks-service/models"
)

// UserDirectory is the read-only view of the users service. Its batch lookup
// applies the directory's default filter: soft-deleted accounts are never
// returned. Accounts with active=false are returned; deciding whether they
// may be assigned is this service's job, not the directory's.
type UserDirectory interface {
	FindAllByID(ctx context.Context, ids []string) ([]models.User, error)
}

// ProjectDirectory is the read-only view of the projects service. A project
// that does not exist and a project that has been archived are deliberately
// indistinguishable through this interface: both come back nil.
type ProjectDirectory interface {
	FindActiveByID(ctx context.Context, id string) (*models.Project, error)
}

// TaskStore is the persistence collaborator for tasks, their assignment
// links and their owned child records. Every mutating method is atomic:
// either all of its writes commit or none do.
type TaskStore interface {
	// Insert persists a new task together with its assignment links. The
	// caller assigns the task's ID before inserting.
	Insert(ctx context.Context, task *models.Task, assigneeIDs []string) error
	// FindByID loads a task's scalar fields without touching any user data.
	// A missing or malformed ID yields (nil, nil).
	FindByID(ctx context.Context, id string) (*models.Task, error)
	// FindAssigneeIDs reads the raw assignment relation for a task with no
	// per-user filtering of any kind.
	FindAssigneeIDs(ctx context.Context, taskID string) ([]string, error)
	// Update overwrites a task's scalar fields. When assigneeIDs is non-nil
	// the assignment links are replaced in the same atomic write; nil leaves
	// the links untouched.
	Update(ctx context.Context, task *models.Task, assigneeIDs *[]string) error
	// DeleteTree removes the task, its assignment links, its comments and
	// its attachments as one atomic unit.
	DeleteTree(ctx context.Context, taskID string) error
	FindAll(ctx context.Context) ([]models.Task, error)
	FindByProject(ctx context.Context, projectID string) ([]models.Task, error)
	// HasUnfinished reports whether the project still has tasks outside the
	// terminal statuses.
	HasUnfinished(ctx context.Context, projectID string) (bool, error)
	// RemoveUserAssignments strips one user's assignment links across all
	// tasks and returns how many links were removed.
	RemoveUserAssignments(ctx context.Context, userID string) (int64, error)
}

// Notifier delivers user-facing notifications through the notifications
// service. Delivery is best effort; callers log failures and move on.
type Notifier interface {
	Notify(ctx context.Context, recipients []models.User, message string) error
}
