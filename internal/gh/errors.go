package gh

import (
	"fmt"
	"net/http"
)

// GraphQLError is one entry of a GraphQL response's errors array.
type GraphQLError struct {
	Message string
}

// TransportError reports that the upstream call itself failed: a non-2xx
// status, or no response at all (StatusCode 0).
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("github request failed: %v", e.Err)
	}
	return fmt.Sprintf("github returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// QueryError reports a successful transport whose response carried GraphQL errors.
type QueryError struct {
	Errors []GraphQLError
}

// genericQueryMessage is used when upstream sent errors without a message.
const genericQueryMessage = "graphql query returned errors"

// Error returns the first upstream message verbatim.
func (e *QueryError) Error() string {
	if len(e.Errors) > 0 && e.Errors[0].Message != "" {
		return e.Errors[0].Message
	}
	return genericQueryMessage
}

// DecodeError reports a response whose shape violates a required field.
// Path locates the offending value, e.g. "data.viewer.projectsV2.nodes[2].number".
type DecodeError struct {
	Path   string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid response at %s: %s", e.Path, e.Reason)
}
