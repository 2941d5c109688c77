package gh

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestRateLimitTransport_PassesThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	hc := &http.Client{Transport: NewRateLimitTransport(nil, 5000)}
	resp, err := hc.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestRateLimitTransport_HonorsContext(t *testing.T) {
	calls := 0
	rt := &RateLimitTransport{
		Base: roundTripFunc(func(*http.Request) (*http.Response, error) {
			calls++
			return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
		}),
		// One token, refilled once an hour.
		Limiter: rate.NewLimiter(rate.Every(time.Hour), 1),
	}

	req, err := http.NewRequest(http.MethodGet, "http://example.invalid", nil)
	require.NoError(t, err)
	_, err = rt.RoundTrip(req)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = rt.RoundTrip(req.WithContext(ctx))
	assert.Error(t, err)
	assert.Equal(t, 1, calls, "the second request must not reach the base transport")
}

func TestStatusTransport(t *testing.T) {
	tests := []struct {
		name   string
		status int
		wantOK bool
	}{
		{"ok", http.StatusOK, true},
		{"created", http.StatusCreated, true},
		{"redirect", http.StatusNotModified, false},
		{"unauthorized", http.StatusUnauthorized, false},
		{"server error", http.StatusServiceUnavailable, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var accept string
			st := &statusTransport{
				base: roundTripFunc(func(r *http.Request) (*http.Response, error) {
					accept = r.Header.Get("Accept")
					return &http.Response{StatusCode: tt.status, Body: http.NoBody}, nil
				}),
				accept: AcceptHeader,
			}

			req, err := http.NewRequest(http.MethodPost, "http://example.invalid", nil)
			require.NoError(t, err)
			req.Header.Set("Accept", "application/json; charset=utf-8")

			resp, err := st.RoundTrip(req)
			assert.Equal(t, AcceptHeader, accept)
			assert.Equal(t, "application/json; charset=utf-8", req.Header.Get("Accept"), "caller's request is not modified")

			if tt.wantOK {
				require.NoError(t, err)
				assert.Equal(t, tt.status, resp.StatusCode)
				return
			}
			var te *TransportError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tt.status, te.StatusCode)
		})
	}
}

func TestStatusTransport_NetworkError(t *testing.T) {
	boom := errors.New("connection reset")
	st := &statusTransport{
		base: roundTripFunc(func(*http.Request) (*http.Response, error) {
			return nil, boom
		}),
		accept: AcceptHeader,
	}

	req, err := http.NewRequest(http.MethodPost, "http://example.invalid", nil)
	require.NoError(t, err)
	_, err = st.RoundTrip(req)
	assert.ErrorIs(t, err, boom)
}

func TestTransportError_Message(t *testing.T) {
	assert.Equal(t, "github returned 502 Bad Gateway", (&TransportError{StatusCode: http.StatusBadGateway}).Error())

	inner := errors.New("dial tcp: refused")
	err := &TransportError{Err: inner}
	assert.Equal(t, "github request failed: dial tcp: refused", err.Error())
	assert.ErrorIs(t, err, inner)
}
