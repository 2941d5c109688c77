package gh

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/go-github/v58/github"
	"github.com/h0rv/gpx/internal/auth"
	"github.com/h0rv/gpx/internal/domain"
	"github.com/h0rv/gpx/internal/logging"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
)

// maxColumnFetches bounds the concurrent card requests of one ListColumns call.
const maxColumnFetches = 8

// ClassicClient reads classic (REST) project boards: columns and their note cards.
type ClassicClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClassicClient creates a client for the REST API at apiURL.
// An empty apiURL means api.github.com.
func NewClassicClient(apiURL string, httpClient *http.Client, logger *zap.Logger) (*ClassicClient, error) {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	c := &ClassicClient{httpClient: httpClient, logger: logging.OrNop(logger)}
	if apiURL != "" {
		u, err := url.Parse(apiURL)
		if err != nil {
			return nil, fmt.Errorf("invalid github api url: %w", err)
		}
		if u.Path == "" || u.Path[len(u.Path)-1] != '/' {
			u.Path += "/"
		}
		c.baseURL = u
	}
	return c, nil
}

// client returns a go-github client authenticated as id.
func (c *ClassicClient) client(ctx context.Context, id auth.Identity) *github.Client {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	tc := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: id.AccessToken}))
	tc.Timeout = c.httpClient.Timeout

	client := github.NewClient(tc)
	if c.baseURL != nil {
		client.BaseURL = c.baseURL
	}
	return client
}

// ListColumns returns a project's columns with their cards.
// Failing to list the columns is an error. Cards are fetched concurrently,
// one request per column; a column whose cards cannot be fetched is logged
// and left out without affecting the others.
func (c *ClassicClient) ListColumns(ctx context.Context, id auth.Identity, projectID int64) ([]domain.Column, error) {
	client := c.client(ctx, id)

	columns, _, err := client.Projects.ListProjectColumns(ctx, projectID, &github.ListOptions{PerPage: 100})
	if err != nil {
		return nil, fmt.Errorf("failed to list columns of project %d: %w", projectID, classicError(err))
	}

	results := make([]*domain.Column, len(columns))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(maxColumnFetches)
	for i, col := range columns {
		eg.Go(func() error {
			cards, _, err := client.Projects.ListProjectCards(egCtx, col.GetID(), &github.ProjectCardListOptions{
				ListOptions: github.ListOptions{PerPage: 100},
			})
			if err != nil {
				c.logger.Warn("failed to list column cards",
					zap.Int64("project", projectID),
					zap.Int64("column", col.GetID()),
					zap.Error(err))
				return nil
			}

			column := &domain.Column{
				ID:    col.GetID(),
				Name:  col.GetName(),
				Cards: make([]domain.Card, 0, len(cards)),
			}
			for _, card := range cards {
				column.Cards = append(column.Cards, domain.Card{ID: card.GetID(), Note: card.GetNote()})
			}
			results[i] = column
			return nil
		})
	}
	// Per-column failures are swallowed above, so Wait cannot fail.
	_ = eg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]domain.Column, 0, len(results))
	for _, col := range results {
		if col != nil {
			out = append(out, *col)
		}
	}
	return out, nil
}

// classicError maps go-github's response errors onto TransportError.
func classicError(err error) error {
	var er *github.ErrorResponse
	if errors.As(err, &er) && er.Response != nil {
		return &TransportError{StatusCode: er.Response.StatusCode, Err: err}
	}
	return &TransportError{Err: err}
}
