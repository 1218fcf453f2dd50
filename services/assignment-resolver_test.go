package services

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"task-management/microservices/tasks-service/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type stubUserDirectory struct {
	findAllByID func(ctx context.Context, ids []string) ([]models.User, error)
}

func (s *stubUserDirectory) FindAllByID(ctx context.Context, ids []string) ([]models.User, error) {
	return s.findAllByID(ctx, ids)
}

func newDirectoryUser(username string, active bool) models.User {
	return models.User{
		ID:       primitive.NewObjectID(),
		Username: username,
		Name:     "Test",
		LastName: "User",
		IsActive: active,
	}
}

func TestResolveAssigneesEmptyInput(t *testing.T) {
	directory := &stubUserDirectory{
		findAllByID: func(ctx context.Context, ids []string) ([]models.User, error) {
			t.Fatal("expected no directory call for an empty candidate list")
			return nil, nil
		},
	}
	resolver := NewAssignmentResolver(directory)

	verified, err := resolver.ResolveAssignees(context.Background(), nil)
	if err != nil {
		t.Fatalf("resolve empty list: %v", err)
	}
	if verified == nil || len(verified) != 0 {
		t.Fatalf("expected an empty verified set, got %v", verified)
	}
}

func TestResolveAssigneesDeduplicates(t *testing.T) {
	alice := newDirectoryUser("alice", true)
	bob := newDirectoryUser("bob", true)

	var requested []string
	directory := &stubUserDirectory{
		findAllByID: func(ctx context.Context, ids []string) ([]models.User, error) {
			requested = ids
			return []models.User{alice, bob}, nil
		},
	}
	resolver := NewAssignmentResolver(directory)

	input := []string{alice.ID.Hex(), alice.ID.Hex(), bob.ID.Hex(), alice.ID.Hex()}
	verified, err := resolver.ResolveAssignees(context.Background(), input)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	wantRequested := []string{alice.ID.Hex(), bob.ID.Hex()}
	if !reflect.DeepEqual(requested, wantRequested) {
		t.Fatalf("expected deduplicated lookup %v, got %v", wantRequested, requested)
	}
	if len(verified) != 2 || verified[0].Username != "alice" || verified[1].Username != "bob" {
		t.Fatalf("expected alice and bob once each, got %v", verified)
	}
}

func TestResolveAssigneesNamesEveryMissingID(t *testing.T) {
	found := newDirectoryUser("carol", true)
	missingOne := primitive.NewObjectID().Hex()
	missingTwo := primitive.NewObjectID().Hex()

	directory := &stubUserDirectory{
		findAllByID: func(ctx context.Context, ids []string) ([]models.User, error) {
			return []models.User{found}, nil
		},
	}
	resolver := NewAssignmentResolver(directory)

	_, err := resolver.ResolveAssignees(context.Background(), []string{missingOne, found.ID.Hex(), missingTwo})

	var notFoundErr *models.NotFoundError
	if !errors.As(err, &notFoundErr) {
		t.Fatalf("expected a not-found error, got %v", err)
	}
	if !reflect.DeepEqual(notFoundErr.IDs, []string{missingOne, missingTwo}) {
		t.Fatalf("expected both missing IDs %v, got %v", []string{missingOne, missingTwo}, notFoundErr.IDs)
	}
}

func TestResolveAssigneesNamesEveryInactiveUser(t *testing.T) {
	active := newDirectoryUser("dave", true)
	idleOne := newDirectoryUser("erin", false)
	idleTwo := newDirectoryUser("frank", false)

	directory := &stubUserDirectory{
		findAllByID: func(ctx context.Context, ids []string) ([]models.User, error) {
			return []models.User{active, idleOne, idleTwo}, nil
		},
	}
	resolver := NewAssignmentResolver(directory)

	_, err := resolver.ResolveAssignees(context.Background(), []string{active.ID.Hex(), idleOne.ID.Hex(), idleTwo.ID.Hex()})

	var ruleErr *models.BusinessRuleError
	if !errors.As(err, &ruleErr) {
		t.Fatalf("expected a business rule error, got %v", err)
	}
	for _, username := range []string{"erin", "frank"} {
		if !strings.Contains(ruleErr.Error(), username) {
			t.Fatalf("expected error to name %s, got %q", username, ruleErr.Error())
		}
	}
}

func TestResolveAssigneesMissingAndInactiveFailTogether(t *testing.T) {
	inactive := newDirectoryUser("grace", false)
	missing := primitive.NewObjectID().Hex()

	directory := &stubUserDirectory{
		findAllByID: func(ctx context.Context, ids []string) ([]models.User, error) {
			return []models.User{inactive}, nil
		},
	}
	resolver := NewAssignmentResolver(directory)

	_, err := resolver.ResolveAssignees(context.Background(), []string{missing, inactive.ID.Hex()})

	var ruleErr *models.BusinessRuleError
	if !errors.As(err, &ruleErr) {
		t.Fatalf("expected one combined business rule error, got %v", err)
	}

	var notFoundErr *models.NotFoundError
	if errors.As(err, &notFoundErr) {
		t.Fatalf("expected a single error, not a not-found error: %v", err)
	}

	if !strings.Contains(ruleErr.Error(), missing) {
		t.Fatalf("expected error to name the missing ID %s, got %q", missing, ruleErr.Error())
	}
	if !strings.Contains(ruleErr.Error(), "grace") {
		t.Fatalf("expected error to name the inactive user grace, got %q", ruleErr.Error())
	}
}

func TestResolveAssigneesDirectoryFailure(t *testing.T) {
	directory := &stubUserDirectory{
		findAllByID: func(ctx context.Context, ids []string) ([]models.User, error) {
			return nil, errors.New("directory unreachable")
		},
	}
	resolver := NewAssignmentResolver(directory)

	_, err := resolver.ResolveAssignees(context.Background(), []string{primitive.NewObjectID().Hex()})
	if err == nil || !strings.Contains(err.Error(), "directory unreachable") {
		t.Fatalf("expected the directory failure to propagate, got %v", err)
	}
}
