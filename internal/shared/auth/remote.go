package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// RemoteVerifier resolves tokens by calling an identity provider's userinfo endpoint.
type RemoteVerifier struct {
	URL    string
	APIKey string
	Admins []string

	// Base is the transport used for outbound calls. Nil means http.DefaultTransport.
	Base    http.RoundTripper
	Timeout time.Duration
}

type remoteUser struct {
	ID          string `json:"id"`
	Sub         string `json:"sub"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	AppMetadata struct {
		Role string `json:"role"`
	} `json:"app_metadata"`
}

// Verify forwards token as a bearer credential and maps the response to an identity.
func (v *RemoteVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, ErrInvalidToken
	}
	timeout := v.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	base := v.Base
	if base == nil {
		base = http.DefaultTransport
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Transport: base})
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.URL, nil)
	if err != nil {
		return Identity{}, err
	}
	if v.APIKey != "" {
		req.Header.Set("apikey", v.APIKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("userinfo request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Identity{}, fmt.Errorf("userinfo read: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return Identity{}, ErrInvalidToken
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Identity{}, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var user remoteUser
	if err := json.Unmarshal(body, &user); err != nil {
		return Identity{}, ErrInvalidToken
	}
	id := user.ID
	if id == "" {
		id = user.Sub
	}
	if strings.TrimSpace(id) == "" {
		return Identity{}, ErrInvalidToken
	}
	role := user.AppMetadata.Role
	if role == "" && user.Role == RoleAdmin {
		role = user.Role
	}
	return withAdmin(Identity{UserID: id, Email: user.Email, Role: role}, adminSet(v.Admins)), nil
}
