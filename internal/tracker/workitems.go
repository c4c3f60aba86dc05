package tracker

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/alexanderramin/taskpilot/internal/domain"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// QueryIDs runs q as WIQL and returns matching ids, newest change first.
func (c *Client) QueryIDs(ctx context.Context, q Query) ([]int, error) {
	scoped := c
	if q.Project != "" {
		scoped = c.WithProject(q.Project)
	}
	endpoint, err := scoped.projectURL("/_apis/wit/wiql", wiqlAPIVersion)
	if err != nil {
		return nil, err
	}

	body, err := sjson.SetBytes(nil, "query", q.WIQL(c.cfg.Project))
	if err != nil {
		return nil, fmt.Errorf("building wiql body: %w", err)
	}
	resp, err := scoped.do(ctx, http.MethodPost, endpoint, "application/json", body)
	if err != nil {
		return nil, fmt.Errorf("running wiql query: %w", err)
	}

	refs := gjson.GetBytes(resp.body, "workItems.#.id").Array()
	ids := make([]int, 0, len(refs))
	for _, r := range refs {
		ids = append(ids, int(r.Int()))
	}
	return ids, nil
}

// GetWorkItems fetches full records for ids in batches of Config.BatchSize.
// The result follows the order of ids; ids the tracker did not return are
// skipped.
func (c *Client) GetWorkItems(ctx context.Context, ids []int) ([]domain.Task, error) {
	if len(ids) == 0 {
		return []domain.Task{}, nil
	}
	endpoint, err := c.projectURL("/_apis/wit/workitemsbatch", batchAPIVersion)
	if err != nil {
		return nil, err
	}

	byID := make(map[int]domain.Task, len(ids))
	for start := 0; start < len(ids); start += c.cfg.BatchSize {
		end := min(start+c.cfg.BatchSize, len(ids))

		body, err := sjson.SetBytes(nil, "ids", ids[start:end])
		if err == nil {
			body, err = sjson.SetBytes(body, "fields", taskFields)
		}
		if err != nil {
			return nil, fmt.Errorf("building batch body: %w", err)
		}

		resp, err := c.do(ctx, http.MethodPost, endpoint, "application/json", body)
		if err != nil {
			return nil, fmt.Errorf("fetching work item batch %d-%d: %w", start, end, err)
		}
		for _, item := range gjson.GetBytes(resp.body, "value").Array() {
			task := decodeTask(item, c.logger)
			byID[task.ID] = task
		}
	}

	tasks := make([]domain.Task, 0, len(byID))
	for _, id := range ids {
		if task, ok := byID[id]; ok {
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}

// QueryWorkItems runs q and returns the matching work items.
func (c *Client) QueryWorkItems(ctx context.Context, q Query) ([]domain.Task, error) {
	ids, err := c.QueryIDs(ctx, q)
	if err != nil {
		return nil, err
	}
	scoped := c
	if q.Project != "" {
		scoped = c.WithProject(q.Project)
	}
	return scoped.GetWorkItems(ctx, ids)
}

// UpdateAssignee sets System.AssignedTo on one work item and returns the
// updated record.
func (c *Client) UpdateAssignee(ctx context.Context, id int, email string) (domain.Task, error) {
	endpoint, err := c.projectURL("/_apis/wit/workitems/"+strconv.Itoa(id), updateAPIVersion)
	if err != nil {
		return domain.Task{}, err
	}

	op, err := sjson.SetBytes([]byte(`{"op":"add","path":"/fields/System.AssignedTo"}`), "value", email)
	if err != nil {
		return domain.Task{}, fmt.Errorf("building patch: %w", err)
	}
	patch := append(append([]byte{'['}, op...), ']')

	resp, err := c.do(ctx, http.MethodPatch, endpoint, "application/json-patch+json", patch)
	if err != nil {
		return domain.Task{}, fmt.Errorf("updating work item %d: %w", id, err)
	}
	return decodeTask(gjson.ParseBytes(resp.body), c.logger), nil
}
