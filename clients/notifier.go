package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"task-management/microservices/tasks-service/models"

	"github.com/sony/gobreaker"
)

// NotifierClient posts notifications to the notifications service, one per
// recipient, the shape its create endpoint expects. The orchestrator treats
// delivery as best effort; this client only reports what happened.
type NotifierClient struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

func NewNotifierClient(baseURL string, httpClient *http.Client, breaker *gobreaker.CircuitBreaker) *NotifierClient {
	return &NotifierClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		breaker:    breaker,
	}
}

func (c *NotifierClient) Notify(ctx context.Context, recipients []models.User, message string) error {
	for _, recipient := range recipients {
		if err := c.send(ctx, recipient, message); err != nil {
			return fmt.Errorf("failed to notify %s: %v", recipient.Username, err)
		}
	}
	return nil
}

func (c *NotifierClient) send(ctx context.Context, recipient models.User, message string) error {
	payload, err := json.Marshal(struct {
		UserID   string `json:"userId"`
		Username string `json:"username"`
		Message  string `json:"message"`
	}{
		UserID:   recipient.ID.Hex(),
		Username: recipient.Username,
		Message:  message,
	})
	if err != nil {
		return fmt.Errorf("failed to encode notification: %v", err)
	}

	_, err = c.breaker.Execute(func() (interface{}, error) {
		url := fmt.Sprintf("%s/api/notifications/add", c.baseURL)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("error creating request to notifications-service: %v", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Role", "manager")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("error sending request to notifications-service: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			return nil, fmt.Errorf("notifications-service error (%d): %s", resp.StatusCode, string(body))
		}
		return nil, nil
	})
	return err
}
