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

// UserDirectoryClient resolves user IDs against the users service. The batch
// endpoint applies the directory's default visibility rule: soft-deleted
// accounts are simply absent from the answer, they are never an error. Known
// but inactive accounts come back with isActive=false, judging them is the
// caller's business.
type UserDirectoryClient struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

func NewUserDirectoryClient(baseURL string, httpClient *http.Client, breaker *gobreaker.CircuitBreaker) *UserDirectoryClient {
	return &UserDirectoryClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		breaker:    breaker,
	}
}

func (c *UserDirectoryClient) FindAllByID(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}

	payload, err := json.Marshal(struct {
		IDs []string `json:"ids"`
	}{IDs: ids})
	if err != nil {
		return nil, fmt.Errorf("failed to encode user lookup: %v", err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		url := fmt.Sprintf("%s/api/users/batch", c.baseURL)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("error creating request to users-service: %v", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Role", "manager")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("error sending request to users-service: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			return nil, fmt.Errorf("users-service error (%d): %s", resp.StatusCode, string(body))
		}

		var users []models.User
		if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
			return nil, fmt.Errorf("failed to decode users-service response: %v", err)
		}
		return users, nil
	})
	if err != nil {
		return nil, err
	}

	users := result.([]models.User)
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}
