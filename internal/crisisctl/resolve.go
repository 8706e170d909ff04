package crisisctl

import (
	"context"
	"encoding/json"
	"fmt"
)

// ResourceSummary is the subset of a resource crisisctl works with.
type ResourceSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Availability string `json:"availability"`
}

// ListResources returns every registered resource keyed by name.
func (c *Client) ListResources(ctx context.Context) (map[string]ResourceSummary, error) {
	resp, err := c.Get(ctx, "/resources")
	if err != nil {
		return nil, err
	}

	items, err := resp.Items()
	if err != nil {
		return nil, fmt.Errorf("parse resources: %w", err)
	}

	var resources []ResourceSummary
	if err := json.Unmarshal(items, &resources); err != nil {
		return nil, fmt.Errorf("parse resources: %w", err)
	}

	byName := make(map[string]ResourceSummary, len(resources))
	for _, r := range resources {
		byName[r.Name] = r
	}
	return byName, nil
}

func extractID(resp *Response) (string, error) {
	var resource struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp.Body, &resource); err != nil {
		return "", fmt.Errorf("parse response ID: %w", err)
	}
	return resource.ID, nil
}
