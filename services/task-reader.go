package services

import (
	"context"
	"fmt"

	"task-management/microservices/tasks-service/models"
)

// loadTaskWithAssignees assembles the full view of a single task in four
// steps: load the task record, read the raw assignment links, batch-fetch
// the linked users through the directory, and attach whatever the directory
// still answers for.
//
// The link read is deliberately unfiltered and the directory lookup is
// deliberately filtered. Soft-deleted users therefore drop out of the
// assembled view while every still-existing assignee survives, even when
// the two reads interleave with a concurrent user deletion. The steps must
// never be collapsed into one filtered join.
//
// Returns (nil, nil) when the task does not exist.
func (s *TaskService) loadTaskWithAssignees(ctx context.Context, id string) (*models.Task, error) {
	task, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load task %s: %v", id, err)
	}
	if task == nil {
		return nil, nil
	}

	assigneeIDs, err := s.store.FindAssigneeIDs(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignments for task %s: %v", id, err)
	}

	task.Assignees, err = s.fetchAssignees(ctx, assigneeIDs)
	if err != nil {
		return nil, err
	}
	return task, nil
}

// fetchAssignees materializes assignment links into user records. IDs the
// directory no longer answers for are silently dropped, never errors.
func (s *TaskService) fetchAssignees(ctx context.Context, assigneeIDs []string) ([]models.User, error) {
	if len(assigneeIDs) == 0 {
		return []models.User{}, nil
	}
	users, err := s.users.FindAllByID(ctx, assigneeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignees: %v", err)
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// attachAssignees resolves assignment links for a whole result set with a
// single directory round trip shared by all listed tasks.
func (s *TaskService) attachAssignees(ctx context.Context, tasks []models.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	perTask := make([][]string, len(tasks))
	var union []string
	seen := make(map[string]struct{})
	for i := range tasks {
		linkIDs, err := s.store.FindAssigneeIDs(ctx, tasks[i].ID.Hex())
		if err != nil {
			return fmt.Errorf("failed to load assignments for task %s: %v", tasks[i].ID.Hex(), err)
		}
		perTask[i] = linkIDs
		for _, id := range linkIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			union = append(union, id)
		}
	}

	byID := make(map[string]models.User)
	if len(union) > 0 {
		users, err := s.users.FindAllByID(ctx, union)
		if err != nil {
			return fmt.Errorf("failed to load assignees: %v", err)
		}
		for _, user := range users {
			byID[user.ID.Hex()] = user
		}
	}

	for i := range tasks {
		tasks[i].Assignees = make([]models.User, 0, len(perTask[i]))
		for _, id := range perTask[i] {
			if user, ok := byID[id]; ok {
				tasks[i].Assignees = append(tasks[i].Assignees, user)
			}
		}
	}
	return nil
}
