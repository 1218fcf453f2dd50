package models

import (
	"time"
	"unicode/utf8"
)

const (
	titleMinLen       = 3
	titleMaxLen       = 255
	descriptionMinLen = 10
	descriptionMaxLen = 2000
	estimatedHoursMax = 999
	notesMaxLen       = 1000
)

// TaskInput carries the caller-supplied fields for creating a task. There is
// deliberately no status field: every new task starts as pending no matter
// what the caller sends.
type TaskInput struct {
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	Priority       TaskPriority `json:"priority"`
	DueDate        time.Time    `json:"dueDate"`
	EstimatedHours *int         `json:"estimatedHours,omitempty"`
	Notes          string       `json:"notes,omitempty"`
	AssigneeIDs    []string     `json:"assigneeIds"`
	ProjectID      string       `json:"projectId"`
}

// Validate checks the input's field constraints. It runs before any directory
// or storage lookup, so a failure here never touches another service.
func (in *TaskInput) Validate() error {
	if err := validateTitle(in.Title); err != nil {
		return err
	}
	if err := validateDescription(in.Description); err != nil {
		return err
	}
	if in.Priority != "" && !in.Priority.IsValid() {
		return &ValidationError{Field: "priority", Message: "unknown priority " + string(in.Priority)}
	}
	if in.DueDate.IsZero() {
		return &ValidationError{Field: "dueDate", Message: "due date is required"}
	}
	// The due date has to lie in the present or future at creation time only;
	// updates may move it into the past.
	if in.DueDate.Before(time.Now()) {
		return &ValidationError{Field: "dueDate", Message: "due date must not be in the past"}
	}
	if err := validateEstimatedHours(in.EstimatedHours); err != nil {
		return err
	}
	if err := validateNotes(in.Notes); err != nil {
		return err
	}
	if in.ProjectID == "" {
		return &ValidationError{Field: "projectId", Message: "project id is required"}
	}
	return nil
}

// TaskUpdate carries a partial update. Nil means "leave the field unchanged";
// a non-nil pointer overwrites the field, so *AssigneeIDs pointing at an
// empty slice unassigns everyone while a nil AssigneeIDs keeps the current
// set.
type TaskUpdate struct {
	Title          *string       `json:"title,omitempty"`
	Description    *string       `json:"description,omitempty"`
	Priority       *TaskPriority `json:"priority,omitempty"`
	DueDate        *time.Time    `json:"dueDate,omitempty"`
	EstimatedHours *int          `json:"estimatedHours,omitempty"`
	Notes          *string       `json:"notes,omitempty"`
	Status         *TaskStatus   `json:"status,omitempty"`
	ProjectID      *string       `json:"projectId,omitempty"`
	AssigneeIDs    *[]string     `json:"assigneeIds,omitempty"`
}

// Validate checks every supplied field against the same constraints the
// create path uses, except that a due date may be moved into the past.
func (u *TaskUpdate) Validate() error {
	if u.Title != nil {
		if err := validateTitle(*u.Title); err != nil {
			return err
		}
	}
	if u.Description != nil {
		if err := validateDescription(*u.Description); err != nil {
			return err
		}
	}
	if u.Priority != nil && !u.Priority.IsValid() {
		return &ValidationError{Field: "priority", Message: "unknown priority " + string(*u.Priority)}
	}
	if u.DueDate != nil && u.DueDate.IsZero() {
		return &ValidationError{Field: "dueDate", Message: "due date must not be empty"}
	}
	if u.EstimatedHours != nil {
		if err := validateEstimatedHours(u.EstimatedHours); err != nil {
			return err
		}
	}
	if u.Notes != nil {
		if err := validateNotes(*u.Notes); err != nil {
			return err
		}
	}
	if u.Status != nil && !u.Status.IsValid() {
		return &ValidationError{Field: "status", Message: "unknown status " + string(*u.Status)}
	}
	if u.ProjectID != nil && *u.ProjectID == "" {
		return &ValidationError{Field: "projectId", Message: "project id must not be empty"}
	}
	return nil
}

func validateTitle(title string) error {
	if n := utf8.RuneCountInString(title); n < titleMinLen || n > titleMaxLen {
		return &ValidationError{Field: "title", Message: "title must be between 3 and 255 characters"}
	}
	return nil
}

func validateDescription(description string) error {
	if n := utf8.RuneCountInString(description); n < descriptionMinLen || n > descriptionMaxLen {
		return &ValidationError{Field: "description", Message: "description must be between 10 and 2000 characters"}
	}
	return nil
}

func validateEstimatedHours(hours *int) error {
	if hours == nil {
		return nil
	}
	if *hours < 0 || *hours > estimatedHoursMax {
		return &ValidationError{Field: "estimatedHours", Message: "estimated hours must be between 0 and 999"}
	}
	return nil
}

func validateNotes(notes string) error {
	if utf8.RuneCountInString(notes) > notesMaxLen {
		return &ValidationError{Field: "notes", Message: "notes must not exceed 1000 characters"}
	}
	return nil
}
