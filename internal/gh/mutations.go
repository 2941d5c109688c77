package gh

import (
	"context"
	"fmt"

	"github.com/h0rv/gpx/internal/auth"
	"github.com/h0rv/gpx/internal/domain"
)

// StatusFieldName is the field the add-item mutation sets from NewItem.Status.
const StatusFieldName = "Status"

// AddItemMutation creates a project item and returns it with its field values.
const AddItemMutation = `
mutation($input: AddProjectV2ItemByIdInput!) {
  addProjectV2ItemById(input: $input) {
    item {
      id
      ` + fieldValuesSelection + `
    }
  }
}
`

// NewItem is the input of AddItem.
type NewItem struct {
	ProjectID   string
	Title       string
	Status      string
	Description string
}

// variables builds the mutation's input object.
func (n NewItem) variables() map[string]any {
	return map[string]any{
		"input": map[string]any{
			"projectId": n.ProjectID,
			"title":     n.Title,
			"body":      n.Description,
			"fieldValues": []map[string]any{
				{"field": StatusFieldName, "value": n.Status},
			},
		},
	}
}

// AddItem creates an item in a project.
// Upstream GraphQL errors are returned as *QueryError whose message is the
// first upstream message; the mutation is never retried.
func (c *Client) AddItem(ctx context.Context, id auth.Identity, item NewItem) (*domain.Item, error) {
	created, err := run(ctx, c, AddItemMutation, item.variables(), id, AddItemShape)
	if err != nil {
		return nil, fmt.Errorf("failed to add project item: %w", err)
	}
	return created, nil
}
