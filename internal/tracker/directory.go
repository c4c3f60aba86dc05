package tracker

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/alexanderramin/taskpilot/internal/domain"
	"github.com/tidwall/gjson"
)

const continuationHeader = "X-MS-ContinuationToken"

// ListUsers returns the organization's user roster, following continuation
// tokens. Users without a mail address are kept.
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	endpoint, err := c.graphURL("/_apis/graph/users", graphAPIVersion)
	if err != nil {
		return nil, err
	}

	users := []domain.User{}
	next := endpoint
	for {
		resp, err := c.do(ctx, http.MethodGet, next, "", nil)
		if err != nil {
			return nil, fmt.Errorf("listing users: %w", err)
		}
		for _, item := range gjson.GetBytes(resp.body, "value").Array() {
			users = append(users, decodeUser(item))
		}
		token := resp.header.Get(continuationHeader)
		if token == "" {
			return users, nil
		}
		next = endpoint + "&continuationToken=" + url.QueryEscape(token)
	}
}

// ListProjects returns the projects visible to the token.
func (c *Client) ListProjects(ctx context.Context) ([]domain.Project, error) {
	endpoint, err := c.orgURL("/_apis/projects", projectsAPIVersion)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, http.MethodGet, endpoint, "", nil)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}

	projects := []domain.Project{}
	for _, item := range gjson.GetBytes(resp.body, "value").Array() {
		projects = append(projects, decodeProject(item))
	}
	return projects, nil
}

// CurrentProject returns the project the client is scoped to.
func (c *Client) CurrentProject(ctx context.Context) (domain.Project, error) {
	if c.cfg.Project == "" {
		return domain.Project{}, ErrNotConfigured
	}
	endpoint, err := c.orgURL("/_apis/projects/"+url.PathEscape(c.cfg.Project), projectsAPIVersion)
	if err != nil {
		return domain.Project{}, err
	}
	resp, err := c.do(ctx, http.MethodGet, endpoint, "", nil)
	if err != nil {
		return domain.Project{}, fmt.Errorf("fetching project %q: %w", c.cfg.Project, err)
	}
	return decodeProject(gjson.ParseBytes(resp.body)), nil
}
