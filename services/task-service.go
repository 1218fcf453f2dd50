package services

import (
	"context"
	"fmt"

	"task-management/microservices/tasks-service/logging"
	"task-management/microservices/tasks-service/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskService composes the assignment resolver, the project gate, the task
// store and the directories into the public task operations. Every operation
// runs as one request-scoped unit of work: validations run to completion
// before any write, and a failed validation never leaves a partial write.
//
// No locking is taken across operations. Two concurrent updates of the same
// task race at the storage layer and the later commit wins; callers that
// need stronger guarantees must serialize on their side.
type TaskService struct {
	store    TaskStore
	users    UserDirectory
	projects ProjectDirectory
	resolver *AssignmentResolver
	notifier Notifier
}

func NewTaskService(store TaskStore, users UserDirectory, projects ProjectDirectory, notifier Notifier) *TaskService {
	return &TaskService{
		store:    store,
		users:    users,
		projects: projects,
		resolver: NewAssignmentResolver(users),
		notifier: notifier,
	}
}

// CreateTask validates the input, resolves the requested assignees and
// checks the project gate before anything is written. The new task always
// starts in pending status no matter what the caller supplied. The response
// is re-read through the assembled read path so it reflects exactly what a
// subsequent GetTaskByID would show.
func (s *TaskService) CreateTask(ctx context.Context, input *models.TaskInput) (*models.Task, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	verified, err := s.resolver.ResolveAssignees(ctx, input.AssigneeIDs)
	if err != nil {
		return nil, err
	}

	if _, err := s.requireActiveProject(ctx, input.ProjectID); err != nil {
		return nil, err
	}

	priority := input.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	task := &models.Task{
		ID:             primitive.NewObjectID(),
		ProjectID:      input.ProjectID,
		Title:          input.Title,
		Description:    input.Description,
		Status:         models.StatusPending,
		Priority:       priority,
		DueDate:        input.DueDate,
		EstimatedHours: input.EstimatedHours,
		Notes:          input.Notes,
	}

	if err := s.store.Insert(ctx, task, userIDs(verified)); err != nil {
		return nil, fmt.Errorf("failed to create task: %v", err)
	}

	s.notify(ctx, verified, fmt.Sprintf("You have been added to task: %s", task.Title))

	created, err := s.loadTaskWithAssignees(ctx, task.ID.Hex())
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, &models.NotFoundError{Resource: "task", IDs: []string{task.ID.Hex()}}
	}
	return created, nil
}

// GetTaskByID returns one task with its assignees materialized through the
// directory, or NotFound when no such task exists.
func (s *TaskService) GetTaskByID(ctx context.Context, id string) (*models.Task, error) {
	task, err := s.loadTaskWithAssignees(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, &models.NotFoundError{Resource: "task", IDs: []string{id}}
	}
	return task, nil
}

// UpdateTask overwrites exactly the fields the caller supplied and leaves
// the rest untouched. A supplied assignee list replaces the whole set after
// re-validation, an empty list unassigns everyone. A supplied project that
// differs from the current one is re-checked against the gate. A supplied
// status is applied directly, maintaining only the completion-timestamp
// invariant. The response is built from the in-memory post-mutation state;
// the just-verified assignee set is used as is, never re-fetched through
// the filtered directory.
func (s *TaskService) UpdateTask(ctx context.Context, id string, fields *models.TaskUpdate) (*models.Task, error) {
	task, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load task %s: %v", id, err)
	}
	if task == nil {
		return nil, &models.NotFoundError{Resource: "task", IDs: []string{id}}
	}

	if err := fields.Validate(); err != nil {
		return nil, err
	}

	var assigneePatch *[]string
	var added, removed []models.User
	if fields.AssigneeIDs != nil {
		previousIDs, err := s.store.FindAssigneeIDs(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load assignments for task %s: %v", id, err)
		}

		verified, err := s.resolver.ResolveAssignees(ctx, *fields.AssigneeIDs)
		if err != nil {
			return nil, err
		}

		ids := userIDs(verified)
		assigneePatch = &ids
		task.Assignees = verified
		added, removed, err = s.assigneeDiff(ctx, previousIDs, verified)
		if err != nil {
			return nil, err
		}
	}

	if fields.ProjectID != nil && *fields.ProjectID != task.ProjectID {
		if _, err := s.requireActiveProject(ctx, *fields.ProjectID); err != nil {
			return nil, err
		}
		task.ProjectID = *fields.ProjectID
	}

	if fields.Title != nil {
		task.Title = *fields.Title
	}
	if fields.Description != nil {
		task.Description = *fields.Description
	}
	if fields.Priority != nil {
		task.Priority = *fields.Priority
	}
	if fields.DueDate != nil {
		task.DueDate = *fields.DueDate
	}
	if fields.EstimatedHours != nil {
		task.EstimatedHours = fields.EstimatedHours
	}
	if fields.Notes != nil {
		task.Notes = *fields.Notes
	}

	statusChanged := false
	if fields.Status != nil {
		statusChanged = *fields.Status != task.Status
		task.SetStatus(*fields.Status)
	}

	if err := s.store.Update(ctx, task, assigneePatch); err != nil {
		return nil, fmt.Errorf("failed to update task %s: %v", id, err)
	}

	if fields.AssigneeIDs == nil {
		linkIDs, err := s.store.FindAssigneeIDs(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load assignments for task %s: %v", id, err)
		}
		task.Assignees, err = s.fetchAssignees(ctx, linkIDs)
		if err != nil {
			return nil, err
		}
	}

	s.notify(ctx, added, fmt.Sprintf("You have been added to task: %s", task.Title))
	s.notify(ctx, removed, fmt.Sprintf("You have been removed from task: %s", task.Title))
	if statusChanged {
		s.notify(ctx, task.Assignees, fmt.Sprintf("Task %s changed status to %s", task.Title, task.Status))
	}

	return task, nil
}

// DeleteTask hard-deletes the task together with its assignment links,
// comments and attachments as one atomic unit. There is no soft delete and
// no recovery.
func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	task, err := s.store.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load task %s: %v", id, err)
	}
	if task == nil {
		return &models.NotFoundError{Resource: "task", IDs: []string{id}}
	}

	if err := s.store.DeleteTree(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task %s: %v", id, err)
	}
	return nil
}

func (s *TaskService) GetAllTasks(ctx context.Context) ([]models.Task, error) {
	tasks, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tasks: %v", err)
	}
	if err := s.attachAssignees(ctx, tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

func (s *TaskService) GetTasksByProject(ctx context.Context, projectID string) ([]models.Task, error) {
	tasks, err := s.store.FindByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tasks for project %s: %v", projectID, err)
	}
	if err := s.attachAssignees(ctx, tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

// HasUnfinishedTasks reports whether the project still owns any task that is
// neither completed nor cancelled. The users service consults this before it
// allows an account or project teardown.
func (s *TaskService) HasUnfinishedTasks(ctx context.Context, projectID string) (bool, error) {
	unfinished, err := s.store.HasUnfinished(ctx, projectID)
	if err != nil {
		return false, fmt.Errorf("failed to check unfinished tasks for project %s: %v", projectID, err)
	}
	return unfinished, nil
}

// RemoveUserFromAllTasks strips every assignment link of one user across all
// tasks. Unlike soft-delete visibility filtering this removes the links for
// good; it backs permanent account removal.
func (s *TaskService) RemoveUserFromAllTasks(ctx context.Context, userID string) (int64, error) {
	removed, err := s.store.RemoveUserAssignments(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to remove user %s from tasks: %v", userID, err)
	}
	return removed, nil
}

// requireActiveProject admits only projects the directory reports as active.
// An archived project and a nonexistent one are indistinguishable to the
// caller, both answer NotFound.
func (s *TaskService) requireActiveProject(ctx context.Context, projectID string) (*models.Project, error) {
	project, err := s.projects.FindActiveByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify project %s: %v", projectID, err)
	}
	if project == nil {
		return nil, &models.NotFoundError{Resource: "project", IDs: []string{projectID}}
	}
	return project, nil
}

// assigneeDiff computes who enters and who leaves the assignee set when it
// is replaced. Leavers are looked up through the directory, so a leaver who
// was meanwhile soft-deleted is simply not notified.
func (s *TaskService) assigneeDiff(ctx context.Context, previousIDs []string, verified []models.User) (added, removed []models.User, err error) {
	previous := make(map[string]struct{}, len(previousIDs))
	for _, id := range previousIDs {
		previous[id] = struct{}{}
	}

	current := make(map[string]struct{}, len(verified))
	for _, user := range verified {
		id := user.ID.Hex()
		current[id] = struct{}{}
		if _, ok := previous[id]; !ok {
			added = append(added, user)
		}
	}

	var removedIDs []string
	for _, id := range previousIDs {
		if _, ok := current[id]; !ok {
			removedIDs = append(removedIDs, id)
		}
	}
	if len(removedIDs) > 0 {
		removed, err = s.fetchAssignees(ctx, removedIDs)
		if err != nil {
			return nil, nil, err
		}
	}
	return added, removed, nil
}

// notify is best effort. Delivery failures are logged and never surfaced,
// a task operation must not fail because the notifications service is down.
func (s *TaskService) notify(ctx context.Context, recipients []models.User, message string) {
	if s.notifier == nil || len(recipients) == 0 {
		return
	}
	if err := s.notifier.Notify(ctx, recipients, message); err != nil {
		logging.Logger.Warnf("Failed to send notification %q to %d users: %v", message, len(recipients), err)
	}
}

func userIDs(users []models.User) []string {
	ids := make([]string, 0, len(users))
	for _, user := range users {
		ids = append(ids, user.ID.Hex())
	}
	return ids
}
