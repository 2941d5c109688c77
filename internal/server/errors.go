package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/h0rv/gpx/internal/auth"
	"github.com/h0rv/gpx/internal/gh"
	"go.uber.org/zap"
)

// Messages returned to the browser for failures whose details stay in the log.
const (
	msgUnauthenticated = "user not authenticated"
	msgInvalidResponse = "invalid response format"
	msgUpstreamFailed  = "failed to reach github"
	msgInternal        = "internal error"
)

// statusFor maps an error from the GitHub layer onto an HTTP status and
// the message shown to the user.
func statusFor(err error) (int, string) {
	var (
		te *gh.TransportError
		qe *gh.QueryError
		de *gh.DecodeError
	)
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized, msgUnauthenticated
	case errors.As(err, &te):
		if te.StatusCode == 0 {
			return http.StatusBadGateway, msgUpstreamFailed
		}
		return te.StatusCode, http.StatusText(te.StatusCode)
	case errors.As(err, &qe):
		return http.StatusBadRequest, qe.Error()
	case errors.As(err, &de):
		return http.StatusBadRequest, msgInvalidResponse
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

// writeError reports err to the caller. Nothing is written when the
// caller has gone away.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
		s.logger.Debug("request canceled", zap.String("path", r.URL.Path))
		return
	}

	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(err))
	} else {
		s.logger.Info("request rejected", zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(err))
	}
	http.Error(w, msg, status)
}
