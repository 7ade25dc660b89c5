package auth

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

type ClientCred struct {
	conf clientcredentials.Config

	mu    sync.Mutex
	token *oauth2.Token
}

func NewClientCred(conf Conf) *ClientCred {
	return &ClientCred{
		conf: conf.toOauth2Config(),
	}
}

// GetToken retrieves a valid access token. If the current token is valid, it returns the existing token.
// Otherwise, it requests a new token using the client credentials configuration.
func (c *ClientCred) GetToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureToken(ctx); err != nil {
		return "", err
	}
	return c.token.AccessToken, nil
}

func (c *ClientCred) ensureToken(ctx context.Context) error {
	if c.token != nil && c.token.Valid() {
		return nil
	}
	tok, err := c.conf.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to get token: %w", err)
	}
	c.token = tok
	return nil
}

// ForceRefresh discards the cached token and requests a new one.
func (c *ClientCred) ForceRefresh(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = nil
	if err := c.ensureToken(ctx); err != nil {
		return "", err
	}
	return c.token.AccessToken, nil
}

// SetAuthHeader sets the bearer token on r, fetching one when needed.
func (c *ClientCred) SetAuthHeader(r *http.Request) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureToken(r.Context()); err != nil {
		return err
	}
	c.token.SetAuthHeader(r)
	return nil
}

// HTTPClient returns a client that authenticates every request. The base
// client's transport and timeout are reused when base is not nil.
func HTTPClient(ctx context.Context, conf Conf, base *http.Client) *http.Client {
	if base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	}
	oc := conf.toOauth2Config()
	client := oc.Client(ctx)
	if base != nil {
		client.Timeout = base.Timeout
	}
	return client
}
