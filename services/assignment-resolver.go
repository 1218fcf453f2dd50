package services

import (
	"context"
	"fmt"
	"strings"

	"task-management/microservices/tasks-service/models"
)

// AssignmentResolver turns caller-supplied user IDs into a verified,
// deduplicated set of assignable users. It validates against the user
// directory only; it never writes anything.
type AssignmentResolver struct {
	users UserDirectory
}

func NewAssignmentResolver(users UserDirectory) *AssignmentResolver {
	return &AssignmentResolver{users: users}
}

// ResolveAssignees bulk-fetches the candidate users and checks that every
// one of them exists and is active. An empty candidate list means "no
// assignees" and resolves to an empty set. Duplicated IDs are tolerated.
//
// The whole candidate list is judged in one pass so the caller learns about
// every defective entry at once. A mix of missing and inactive entries
// produces a single error naming both groups rather than two failures in a
// row.
func (r *AssignmentResolver) ResolveAssignees(ctx context.Context, candidateIDs []string) ([]models.User, error) {
	if len(candidateIDs) == 0 {
		return []models.User{}, nil
	}

	distinct := make([]string, 0, len(candidateIDs))
	seen := make(map[string]struct{}, len(candidateIDs))
	for _, id := range candidateIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		distinct = append(distinct, id)
	}

	found, err := r.users.FindAllByID(ctx, distinct)
	if err != nil {
		return nil, fmt.Errorf("failed to look up assignees: %w", err)
	}

	foundByID := make(map[string]models.User, len(found))
	for _, user := range found {
		foundByID[user.ID.Hex()] = user
	}

	var missing, inactive []string
	verified := make([]models.User, 0, len(found))
	for _, id := range distinct {
		user, ok := foundByID[id]
		if !ok {
			// Soft-deleted users are absent from the directory's answer, so
			// they land here together with IDs that never existed.
			missing = append(missing, id)
			continue
		}
		if !user.IsActive {
			inactive = append(inactive, user.Username)
			continue
		}
		verified = append(verified, user)
	}

	switch {
	case len(missing) > 0 && len(inactive) > 0:
		return nil, &models.BusinessRuleError{Message: fmt.Sprintf(
			"cannot assign users: not found: %s; inactive: %s",
			strings.Join(missing, ", "), strings.Join(inactive, ", "))}
	case len(missing) > 0:
		return nil, &models.NotFoundError{Resource: "users", IDs: missing}
	case len(inactive) > 0:
		return nil, &models.BusinessRuleError{Message: fmt.Sprintf(
			"cannot assign inactive users: %s", strings.Join(inactive, ", "))}
	}

	return verified, nil
}
