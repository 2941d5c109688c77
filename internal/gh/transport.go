package gh

import (
	"io"
	"net/http"

	"golang.org/x/time/rate"
)

// RateLimitTransport waits for its limiter before every request.
// The wait honors the request context.
type RateLimitTransport struct {
	Base    http.RoundTripper
	Limiter *rate.Limiter
}

// NewRateLimitTransport spreads requestsPerHour evenly with a small burst.
func NewRateLimitTransport(base http.RoundTripper, requestsPerHour int) *RateLimitTransport {
	rps := rate.Limit(float64(requestsPerHour) / 3600)
	return &RateLimitTransport{
		Base:    base,
		Limiter: rate.NewLimiter(rps, 10),
	}
}

// RoundTrip implements http.RoundTripper.
func (t *RateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.Limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return orDefault(t.Base).RoundTrip(req)
}

// statusTransport pins the Accept header and turns non-2xx responses into
// TransportError. The graphql library only inspects the status code when
// the body is not JSON, so the check has to happen below it.
type statusTransport struct {
	base   http.RoundTripper
	accept string
}

func (t *statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Accept", t.accept)

	resp, err := orDefault(t.base).RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		resp.Body.Close()
		return nil, &TransportError{StatusCode: resp.StatusCode}
	}
	return resp, nil
}

func orDefault(rt http.RoundTripper) http.RoundTripper {
	if rt == nil {
		return http.DefaultTransport
	}
	return rt
}
