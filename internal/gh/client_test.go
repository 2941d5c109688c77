package gh

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/h0rv/gpx/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var testIdentity = auth.Identity{AccessToken: "gho_test"}

// recordedRequest is what the fake GraphQL server saw.
type recordedRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
	Auth      string         `json:"-"`
	Accept    []string       `json:"-"`
}

// newGraphQLServer starts a fake endpoint answering every request with status and body.
func newGraphQLServer(t *testing.T, status int, body string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var seen []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req recordedRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		req.Auth = r.Header.Get("Authorization")
		req.Accept = r.Header.Values("Accept")
		seen = append(seen, req)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	return New(
		WithEndpoint(srv.URL),
		WithHTTPClient(srv.Client()),
		WithLogger(zaptest.NewLogger(t)),
	)
}

func TestExecute_SendsTokenAndAccept(t *testing.T) {
	srv, seen := newGraphQLServer(t, http.StatusOK, `{"data":{"viewer":{"login":"octocat"}}}`)
	c := newTestClient(t, srv)

	raw, err := c.Execute(context.Background(), "query { viewer { login } }", map[string]any{"number": 3}, testIdentity)
	require.NoError(t, err)
	assert.JSONEq(t, `{"viewer":{"login":"octocat"}}`, string(raw.Data))
	assert.Empty(t, raw.Errors)

	require.Len(t, *seen, 1)
	req := (*seen)[0]
	assert.Equal(t, "token gho_test", req.Auth)
	assert.Equal(t, []string{AcceptHeader}, req.Accept)
	assert.Equal(t, "query { viewer { login } }", req.Query)
	assert.Equal(t, float64(3), req.Variables["number"])
}

func TestExecute_NonSuccessStatus(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusBadGateway} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			srv, seen := newGraphQLServer(t, status, `{"message":"Bad credentials"}`)
			c := newTestClient(t, srv)

			raw, err := c.Execute(context.Background(), ProjectsQuery, nil, testIdentity)
			assert.Nil(t, raw)

			var te *TransportError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, status, te.StatusCode)
			assert.Len(t, *seen, 1, "exactly one attempt")
		})
	}
}

func TestExecute_GraphQLErrorsAreNotTransportErrors(t *testing.T) {
	srv, _ := newGraphQLServer(t, http.StatusOK, `{"data":null,"errors":[{"message":"x"}]}`)
	c := newTestClient(t, srv)

	raw, err := c.Execute(context.Background(), ProjectsQuery, nil, testIdentity)
	require.NoError(t, err)
	require.Len(t, raw.Errors, 1)
	assert.Equal(t, "x", raw.Errors[0].Message)
}

func TestExecute_MalformedBody(t *testing.T) {
	srv, _ := newGraphQLServer(t, http.StatusOK, `not json`)
	c := newTestClient(t, srv)

	_, err := c.Execute(context.Background(), ProjectsQuery, nil, testIdentity)
	var de *DecodeError
	assert.ErrorAs(t, err, &de)
}

func TestExecute_MalformedBodyWithNon200Success(t *testing.T) {
	srv, _ := newGraphQLServer(t, http.StatusCreated, `<html>created</html>`)
	c := newTestClient(t, srv)

	raw, err := c.Execute(context.Background(), ProjectsQuery, nil, testIdentity)
	assert.Nil(t, raw)

	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "$", de.Path)
	assert.Contains(t, de.Reason, "201")

	var qe *QueryError
	assert.False(t, errors.As(err, &qe))
}

func TestExecute_NetworkFailure(t *testing.T) {
	srv, _ := newGraphQLServer(t, http.StatusOK, `{}`)
	c := newTestClient(t, srv)
	srv.Close()

	_, err := c.Execute(context.Background(), ProjectsQuery, nil, testIdentity)
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Zero(t, te.StatusCode)
	assert.Contains(t, te.Error(), "github request failed")
}

func TestExecute_Canceled(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(block)
		srv.Close()
	})
	c := newTestClient(t, srv)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Execute(ctx, ProjectsQuery, nil, testIdentity)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
}

func TestListProjects(t *testing.T) {
	srv, seen := newGraphQLServer(t, http.StatusOK, projectsFixture)
	c := newTestClient(t, srv)

	data, err := c.ListProjects(context.Background(), testIdentity)
	require.NoError(t, err)

	assert.Equal(t, "octocat", data.Viewer.Login)
	assert.Equal(t, 5, data.Projects.TotalCount)
	require.Len(t, data.Projects.Nodes, 3)
	assert.Equal(t, 3, data.Projects.Nodes[0].Number)
	assert.Equal(t, ProjectsQuery, (*seen)[0].Query)
}

func TestListProjects_QueryErrors(t *testing.T) {
	srv, _ := newGraphQLServer(t, http.StatusOK, `{"data":null,"errors":[{"message":"x"}]}`)
	c := newTestClient(t, srv)

	data, err := c.ListProjects(context.Background(), testIdentity)
	assert.Nil(t, data)

	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "x", qe.Error())
}

func TestListProjects_QueryErrorsWithData(t *testing.T) {
	// Partial data alongside errors is still a failure
	body := `{"data":{"viewer":{"id":"U_1","login":"octocat","name":null,"projectsV2":{"nodes":[],"totalCount":0}}},"errors":[{"message":"partial"}]}`
	srv, _ := newGraphQLServer(t, http.StatusOK, body)
	c := newTestClient(t, srv)

	_, err := c.ListProjects(context.Background(), testIdentity)
	var qe *QueryError
	assert.ErrorAs(t, err, &qe)
}

func TestListProjects_DecodeFailure(t *testing.T) {
	body := `{"data":{"viewer":{"id":"U_1","login":"octocat","projectsV2":{"nodes":[{"closed":false}],"totalCount":1}}}}`
	srv, _ := newGraphQLServer(t, http.StatusOK, body)
	c := newTestClient(t, srv)

	_, err := c.ListProjects(context.Background(), testIdentity)
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "data.viewer.projectsV2.nodes[0].createdAt", de.Path)
}

func TestGetProjectDetails(t *testing.T) {
	srv, seen := newGraphQLServer(t, http.StatusOK, editorFixture)
	c := newTestClient(t, srv)

	details, err := c.GetProjectDetails(context.Background(), testIdentity, 7)
	require.NoError(t, err)

	assert.Equal(t, "PVT_7", details.ID)
	require.Len(t, details.Items, 2)
	assert.Len(t, details.Items[0].FieldValues, 5)

	require.Len(t, *seen, 1)
	assert.Equal(t, EditorQuery, (*seen)[0].Query)
	assert.Equal(t, float64(7), (*seen)[0].Variables["number"])
}

func TestGetProjectDetails_MissingProject(t *testing.T) {
	srv, _ := newGraphQLServer(t, http.StatusOK, `{"data":{"viewer":{"projectV2":null}}}`)
	c := newTestClient(t, srv)

	_, err := c.GetProjectDetails(context.Background(), testIdentity, 99)
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "data.viewer.projectV2", de.Path)
}

func TestAddItem(t *testing.T) {
	srv, seen := newGraphQLServer(t, http.StatusOK, addItemFixture)
	c := newTestClient(t, srv)

	item, err := c.AddItem(context.Background(), testIdentity, NewItem{
		ProjectID:   "PVT_7",
		Title:       "Write docs",
		Status:      "Todo",
		Description: "All of them",
	})
	require.NoError(t, err)

	assert.Equal(t, "PVTI_new", item.ID)
	// Field value count comes from the response, not the request
	assert.Len(t, item.FieldValues, 3)
	assert.Equal(t, "Write docs", item.Title())

	require.Len(t, *seen, 1)
	req := (*seen)[0]
	assert.Equal(t, AddItemMutation, req.Query)
	assert.Equal(t, map[string]any{
		"projectId": "PVT_7",
		"title":     "Write docs",
		"body":      "All of them",
		"fieldValues": []any{
			map[string]any{"field": "Status", "value": "Todo"},
		},
	}, req.Variables["input"])
}

func TestAddItem_Created(t *testing.T) {
	srv, _ := newGraphQLServer(t, http.StatusCreated, addItemFixture)
	c := newTestClient(t, srv)

	item, err := c.AddItem(context.Background(), testIdentity, NewItem{ProjectID: "PVT_7", Title: "Write docs"})
	require.NoError(t, err)
	assert.Equal(t, "PVTI_new", item.ID)
}

func TestAddItem_UpstreamMessageVerbatim(t *testing.T) {
	body := `{"data":null,"errors":[{"message":"Could not resolve to a node with the global id of 'PVT_x'"},{"message":"second"}]}`
	srv, seen := newGraphQLServer(t, http.StatusOK, body)
	c := newTestClient(t, srv)

	_, err := c.AddItem(context.Background(), testIdentity, NewItem{ProjectID: "PVT_x"})
	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "Could not resolve to a node with the global id of 'PVT_x'", qe.Error())
	assert.Len(t, *seen, 1, "mutations are never retried")
}

func TestAddItem_TransportFailure(t *testing.T) {
	srv, _ := newGraphQLServer(t, http.StatusInternalServerError, `{}`)
	c := newTestClient(t, srv)

	_, err := c.AddItem(context.Background(), testIdentity, NewItem{ProjectID: "PVT_7"})
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusInternalServerError, te.StatusCode)
}

func TestQueryError_GenericMessage(t *testing.T) {
	assert.Equal(t, genericQueryMessage, (&QueryError{}).Error())
	assert.Equal(t, genericQueryMessage, (&QueryError{Errors: []GraphQLError{{}}}).Error())
}
