package gh

import (
	"context"
	"errors"
	"fmt"

	"github.com/h0rv/gpx/internal/auth"
	"github.com/h0rv/gpx/internal/domain"
	"go.uber.org/zap"
)

// ProjectsQuery lists the viewer's Projects v2.
// Like the other queries it requests one fixed-size page and no cursor.
const ProjectsQuery = `
query {
  viewer {
    id
    login
    name
    projectsV2(first: 100) {
      nodes {
        closed
        createdAt
        public
        number
        resourcePath
        title
        url
      }
      totalCount
    }
  }
}
`

// fieldValuesSelection selects the modeled field value kinds.
// Shared by the editor query and the add-item mutation.
const fieldValuesSelection = `fieldValues(first: 10) {
            nodes {
              ... on ProjectV2ItemFieldTextValue {
                text
                field {
                  ... on ProjectV2FieldCommon {
                    name
                    dataType
                  }
                }
              }
              ... on ProjectV2ItemFieldDateValue {
                date
                field {
                  ... on ProjectV2FieldCommon {
                    name
                    dataType
                  }
                }
              }
              ... on ProjectV2ItemFieldSingleSelectValue {
                name
                field {
                  ... on ProjectV2FieldCommon {
                    name
                    dataType
                  }
                }
              }
            }
          }`

// EditorQuery fetches one of the viewer's projects with its items.
const EditorQuery = `
query($number: Int!) {
  viewer {
    projectV2(number: $number) {
      id
      title
      shortDescription
      items(first: 100) {
        nodes {
          id
          ` + fieldValuesSelection + `
        }
      }
    }
  }
}
`

// ListProjects returns the first page of the viewer's projects.
func (c *Client) ListProjects(ctx context.Context, id auth.Identity) (*ProjectsData, error) {
	data, err := run(ctx, c, ProjectsQuery, nil, id, ProjectsShape)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return data, nil
}

// GetProjectDetails returns the viewer's project with the given number and
// the first page of its items.
func (c *Client) GetProjectDetails(ctx context.Context, id auth.Identity, number int) (*domain.ProjectDetails, error) {
	vars := map[string]any{"number": number}
	data, err := run(ctx, c, EditorQuery, vars, id, EditorShape)
	if err != nil {
		return nil, fmt.Errorf("failed to get project %d: %w", number, err)
	}
	return data, nil
}

// run executes a query and decodes it against shape. GraphQL errors in
// the response become a *QueryError even when data is present.
func run[T any](ctx context.Context, c *Client, query string, vars map[string]any, id auth.Identity, shape Shape[T]) (*T, error) {
	raw, err := c.Execute(ctx, query, vars, id)
	if err != nil {
		c.logDecodeError(shape.name, err)
		return nil, err
	}

	result, err := Decode(raw, shape)
	if err != nil {
		c.logDecodeError(shape.name, err)
		return nil, err
	}

	if err := result.Err(); err != nil {
		var qe *QueryError
		errors.As(err, &qe)
		c.logger.Warn("graphql query returned errors",
			zap.String("op", shape.name),
			zap.Int("count", len(qe.Errors)),
			zap.String("first", qe.Error()))
		return nil, err
	}
	return result.Data, nil
}
