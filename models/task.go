package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusBlocked    TaskStatus = "blocked"
	StatusInReview   TaskStatus = "in_review"
	StatusCompleted  TaskStatus = "completed"
	StatusCancelled  TaskStatus = "cancelled"
)

// IsValid reports whether s is one of the known task statuses.
func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusBlocked, StatusInReview, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no workflow transition leads out of s.
func (s TaskStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type TaskPriority string

const (
	PriorityLow      TaskPriority = "low"
	PriorityMedium   TaskPriority = "medium"
	PriorityHigh     TaskPriority = "high"
	PriorityCritical TaskPriority = "critical"
)

// IsValid reports whether p is one of the known task priorities.
func (p TaskPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Task is the central entity of the tasks service. Assignees are not stored
// on the task document itself; the task_assignments collection is the
// authoritative relation and Assignees only carries the materialized result
// of a read or a freshly verified set during a mutation.
type Task struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProjectID      string             `bson:"projectId" json:"projectId"`
	Title          string             `bson:"title" json:"title"`
	Description    string             `bson:"description" json:"description"`
	Status         TaskStatus         `bson:"status" json:"status"`
	Priority       TaskPriority       `bson:"priority" json:"priority"`
	DueDate        time.Time          `bson:"dueDate" json:"dueDate"`
	StartDate      *time.Time         `bson:"startDate,omitempty" json:"startDate,omitempty"`
	CompletedAt    *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	EstimatedHours *int               `bson:"estimatedHours,omitempty" json:"estimatedHours,omitempty"`
	Notes          string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Assignees      []User             `bson:"-" json:"assignees"`
}

// Start moves the task into work. Allowed only from pending or blocked.
func (t *Task) Start() error {
	if t.Status != StatusPending && t.Status != StatusBlocked {
		return &BusinessRuleError{Message: fmt.Sprintf("cannot start task in status %q: only pending or blocked tasks can be started", t.Status)}
	}
	now := time.Now()
	t.Status = StatusInProgress
	t.StartDate = &now
	return nil
}

// Complete finishes the task. Allowed only from in_progress.
func (t *Task) Complete() error {
	if t.Status != StatusInProgress {
		return &BusinessRuleError{Message: fmt.Sprintf("cannot complete task in status %q: only in_progress tasks can be completed", t.Status)}
	}
	now := time.Now()
	t.Status = StatusCompleted
	t.CompletedAt = &now
	return nil
}

// Block marks the task as blocked and appends a timestamped reason line to
// the notes. Existing notes are never overwritten. Allowed from any
// non-terminal status.
func (t *Task) Block(reason string) error {
	if t.Status.IsTerminal() {
		return &BusinessRuleError{Message: fmt.Sprintf("cannot block task in terminal status %q", t.Status)}
	}
	t.Status = StatusBlocked
	line := fmt.Sprintf("[%s] blocked: %s", time.Now().Format(time.RFC3339), reason)
	if t.Notes == "" {
		t.Notes = line
	} else {
		t.Notes = t.Notes + "\n" + line
	}
	return nil
}

// Cancel abandons the task. Allowed from every status except completed, so
// cancelling an already cancelled task succeeds.
func (t *Task) Cancel() error {
	if t.Status == StatusCompleted {
		return &BusinessRuleError{Message: "cannot cancel a completed task"}
	}
	t.Status = StatusCancelled
	return nil
}

// SetStatus applies an administrative status change without the workflow
// guards above. It maintains only the completion timestamp invariant:
// entering completed records the time, leaving completed clears it.
func (t *Task) SetStatus(status TaskStatus) {
	if status == StatusCompleted {
		if t.Status != StatusCompleted {
			now := time.Now()
			t.CompletedAt = &now
		}
	} else {
		t.CompletedAt = nil
	}
	t.Status = status
}

// IsOverdue reports whether the task is past its due date and still open.
func (t *Task) IsOverdue() bool {
	return !t.Status.IsTerminal() && t.DueDate.Before(time.Now())
}

// HoursUntilDue returns the whole hours remaining until the due date,
// negative once the task is overdue.
func (t *Task) HoursUntilDue() int {
	return int(time.Until(t.DueDate).Hours())
}
