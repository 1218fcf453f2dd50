package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"task-management/microservices/tasks-service/models"

	"github.com/sony/gobreaker"
)

// ProjectDirectoryClient asks the projects service for a single project.
// Callers of FindActiveByID cannot tell an archived project from a missing
// one, both answer (nil, nil).
type ProjectDirectoryClient struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

func NewProjectDirectoryClient(baseURL string, httpClient *http.Client, breaker *gobreaker.CircuitBreaker) *ProjectDirectoryClient {
	return &ProjectDirectoryClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		breaker:    breaker,
	}
}

func (c *ProjectDirectoryClient) FindActiveByID(ctx context.Context, id string) (*models.Project, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		url := fmt.Sprintf("%s/projects/%s", c.baseURL, id)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("error creating request to projects-service: %v", err)
		}
		req.Header.Set("Role", "manager")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("error sending request to projects-service: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return (*models.Project)(nil), nil
		}
		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			return nil, fmt.Errorf("projects-service error (%d): %s", resp.StatusCode, string(body))
		}

		var project models.Project
		if err := json.NewDecoder(resp.Body).Decode(&project); err != nil {
			return nil, fmt.Errorf("failed to decode projects-service response: %v", err)
		}
		return &project, nil
	})
	if err != nil {
		return nil, err
	}

	project := result.(*models.Project)
	if project == nil || !project.IsActive {
		return nil, nil
	}
	return project, nil
}
