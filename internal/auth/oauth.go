package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// Scopes requested at GitHub's authorize endpoint.
var Scopes = []string{
	"user",
	"public_repo",
	"repo",
	"repo_deployment",
	"repo:status",
	"read:repo_hook",
	"read:org",
	"read:public_key",
	"read:gpg_key",
	"read:packages",
	"read:discussion",
	"read:enterprise",
	"read:project",
}

// ErrNoAccessToken indicates the token endpoint answered without a token.
var ErrNoAccessToken = errors.New("failed to obtain access token")

// OAuth performs GitHub's web application flow.
type OAuth struct {
	config     *oauth2.Config
	httpClient *http.Client
}

// OAuthOption configures an OAuth.
type OAuthOption func(*OAuth)

// WithEndpoint overrides GitHub's authorize and token URLs.
func WithEndpoint(endpoint oauth2.Endpoint) OAuthOption {
	return func(o *OAuth) {
		o.config.Endpoint = endpoint
	}
}

// WithHTTPClient sets the client used for the token exchange.
func WithHTTPClient(client *http.Client) OAuthOption {
	return func(o *OAuth) {
		o.httpClient = client
	}
}

// NewOAuth creates the flow for a registered GitHub OAuth app.
func NewOAuth(clientID, clientSecret string, opts ...OAuthOption) *OAuth {
	o := &OAuth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     github.Endpoint,
			Scopes:       Scopes,
		},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// AuthCodeURL returns the authorize URL the user is redirected to.
func (o *OAuth) AuthCodeURL(state string) string {
	return o.config.AuthCodeURL(state)
}

// Exchange trades an authorization code for an identity.
func (o *OAuth) Exchange(ctx context.Context, code string) (Identity, error) {
	if code == "" {
		return Identity{}, fmt.Errorf("%w: empty authorization code", ErrNoAccessToken)
	}
	if o.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, o.httpClient)
	}

	token, err := o.config.Exchange(ctx, code)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrNoAccessToken, err)
	}
	if token.AccessToken == "" {
		return Identity{}, ErrNoAccessToken
	}
	return Identity{AccessToken: token.AccessToken}, nil
}
