package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"task-management/microservices/tasks-service/models"
	"task-management/microservices/tasks-service/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNotifyPostsOncePerRecipient(t *testing.T) {
	type delivery struct {
		UserID   string `json:"userId"`
		Username string `json:"username"`
		Message  string `json:"message"`
	}

	var deliveries []delivery
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/notifications/add" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Role") != "manager" {
			t.Fatalf("expected Role manager, got %q", r.Header.Get("Role"))
		}
		var body delivery
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode notification body: %v", err)
		}
		deliveries = append(deliveries, body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := NewNotifierClient(server.URL, utils.NewHTTPClient(), newTestBreaker("notifications-test"))

	alice := models.User{ID: primitive.NewObjectID(), Username: "alice", IsActive: true}
	bob := models.User{ID: primitive.NewObjectID(), Username: "bob", IsActive: true}

	err := client.Notify(context.Background(), []models.User{alice, bob}, "You have been added to task: Fix login bug")
	if err != nil {
		t.Fatalf("notify: %v", err)
	}

	if len(deliveries) != 2 {
		t.Fatalf("expected one delivery per recipient, got %d", len(deliveries))
	}
	if deliveries[0].Username != "alice" || deliveries[0].UserID != alice.ID.Hex() {
		t.Fatalf("unexpected first delivery %+v", deliveries[0])
	}
	if deliveries[1].Username != "bob" {
		t.Fatalf("unexpected second delivery %+v", deliveries[1])
	}
	for _, d := range deliveries {
		if d.Message != "You have been added to task: Fix login bug" {
			t.Fatalf("unexpected message %q", d.Message)
		}
	}
}

func TestNotifyReportsDeliveryFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewNotifierClient(server.URL, utils.NewHTTPClient(), newTestBreaker("notifications-test"))

	carol := models.User{ID: primitive.NewObjectID(), Username: "carol", IsActive: true}
	err := client.Notify(context.Background(), []models.User{carol}, "status changed")
	if err == nil {
		t.Fatal("expected a delivery failure to be reported")
	}
	if !strings.Contains(err.Error(), "carol") {
		t.Fatalf("expected the failed recipient to be named, got %v", err)
	}
}
