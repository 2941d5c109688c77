// Package gh provides a GraphQL client for the GitHub Projects v2 API.
// It implements a deep module interface - simple methods hiding the GraphQL
// queries and the structural decoding of their polymorphic responses.
package gh

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/h0rv/gpx/internal/auth"
	"github.com/h0rv/gpx/internal/logging"
	"github.com/machinebox/graphql"
	"go.uber.org/zap"
)

const (
	// DefaultEndpoint is GitHub's GraphQL API.
	DefaultEndpoint = "https://api.github.com/graphql"
	// AcceptHeader selects the stable API version.
	AcceptHeader = "application/vnd.github.v3+json"
)

// Prefixes of the error strings produced by the graphql library, whose
// error types are unexported.
const (
	graphqlErrorPrefix  = "graphql: "
	decodeFailurePrefix = "decoding response"
	// Reported for an unparsable body under any status other than 200.
	nonOKStatusPrefix = "graphql: server returned a non-200 status code"
)

// RawResponse is a GraphQL response before structural decoding.
// Errors may be populated alongside a successful transport.
type RawResponse struct {
	Data   json.RawMessage
	Errors []GraphQLError
}

// Client is a GitHub GraphQL API client for Projects v2.
// It holds no credentials: every call carries the caller's identity.
type Client struct {
	gql    *graphql.Client
	logger *zap.Logger

	endpoint   string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint sets the GraphQL endpoint URL.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

// WithHTTPClient sets the HTTP client. Its Timeout is the only bound on
// outbound latency; none is applied by default.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logging.OrNop(logger)
	}
}

// New creates a new GitHub GraphQL client.
func New(opts ...Option) *Client {
	c := &Client{
		endpoint:   DefaultEndpoint,
		httpClient: &http.Client{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	// Copy so the caller's client keeps its own transport.
	hc := *c.httpClient
	hc.Transport = &statusTransport{base: c.httpClient.Transport, accept: AcceptHeader}

	c.gql = graphql.NewClient(c.endpoint, graphql.WithHTTPClient(&hc))
	c.gql.Log = func(s string) {
		// Request headers carry the token.
		if strings.HasPrefix(s, ">> headers") {
			return
		}
		c.logger.Debug(s)
	}

	return c
}

// Execute runs one GraphQL query or mutation with the caller's token.
// It makes exactly one attempt. A response carrying GraphQL errors is not
// an error here: it is returned with Errors populated for the caller to judge.
func (c *Client) Execute(ctx context.Context, query string, variables map[string]any, id auth.Identity) (*RawResponse, error) {
	req := graphql.NewRequest(query)
	for name, value := range variables {
		req.Var(name, value)
	}

	var data json.RawMessage
	err := c.makeRequest(ctx, req, id, &data)
	if err == nil {
		return &RawResponse{Data: data}, nil
	}

	var te *TransportError
	switch msg := err.Error(); {
	case errors.As(err, &te):
		return nil, te
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case strings.HasPrefix(msg, nonOKStatusPrefix):
		// Non-2xx statuses never get this far, so the body was not JSON.
		return nil, &DecodeError{Path: "$", Reason: "response body is not JSON (" + strings.TrimPrefix(msg, graphqlErrorPrefix) + ")"}
	case strings.HasPrefix(msg, graphqlErrorPrefix):
		return &RawResponse{
			Errors: []GraphQLError{{Message: strings.TrimPrefix(msg, graphqlErrorPrefix)}},
		}, nil
	case strings.HasPrefix(msg, decodeFailurePrefix):
		return nil, &DecodeError{Path: "$", Reason: msg}
	default:
		return nil, &TransportError{Err: err}
	}
}

// makeRequest executes a GraphQL request with authentication.
// This is a helper method to avoid repeating the authorization header setup.
func (c *Client) makeRequest(ctx context.Context, req *graphql.Request, id auth.Identity, resp interface{}) error {
	req.Header.Set("Authorization", "token "+id.AccessToken)
	return c.gql.Run(ctx, req, resp)
}

// logDecodeError records where a response broke its expected shape.
func (c *Client) logDecodeError(op string, err error) {
	var de *DecodeError
	if errors.As(err, &de) {
		c.logger.Warn("invalid response format",
			zap.String("op", op),
			zap.String("path", de.Path),
			zap.String("reason", de.Reason))
	}
}
