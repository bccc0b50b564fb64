package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/RichardoC/humaniza/internal/models"
)

type authUser struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
}

func (u authUser) user() models.User {
	name, _ := u.UserMetadata["full_name"].(string)
	return models.User{ID: u.ID, Email: u.Email, Name: name}
}

type tokenResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int      `json:"expires_in"`
	User         authUser `json:"user"`
}

func (t tokenResponse) session() *models.Session {
	return &models.Session{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		ExpiresIn:    t.ExpiresIn,
		User:         t.User.user(),
	}
}

type credentials struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Data     map[string]any `json:"data,omitempty"`
}

// SignIn exchanges an email and password for a session.
func (c *Client) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	q := url.Values{"grant_type": []string{"password"}}
	var tok tokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/v1/token", q, credentials{Email: email, Password: password}, "", nil, &tok); err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	return tok.session(), nil
}

// SignUp registers a new account. When the backend requires email confirmation
// the returned session has no access token.
func (c *Client) SignUp(ctx context.Context, email, password, name string) (*models.Session, error) {
	body := credentials{Email: email, Password: password}
	if name != "" {
		body.Data = map[string]any{"full_name": name}
	}

	// Without auto-confirm GoTrue answers with the bare user object instead of a token.
	var resp struct {
		tokenResponse
		ID           string         `json:"id"`
		Email        string         `json:"email"`
		UserMetadata map[string]any `json:"user_metadata"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/v1/signup", nil, body, "", nil, &resp); err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}
	if resp.User.ID == "" && resp.ID != "" {
		resp.User = authUser{ID: resp.ID, Email: resp.Email, UserMetadata: resp.UserMetadata}
	}
	return resp.tokenResponse.session(), nil
}

// User resolves the account behind an access token.
func (c *Client) User(ctx context.Context, token string) (*models.User, error) {
	var u authUser
	if err := c.do(ctx, http.MethodGet, "/auth/v1/user", nil, nil, token, nil, &u); err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	user := u.user()
	return &user, nil
}

// AuthorizeURL is where a browser is sent to start an OAuth sign-in with provider.
func (c *Client) AuthorizeURL(provider, redirectTo string) string {
	q := url.Values{"provider": []string{provider}}
	if redirectTo != "" {
		q.Set("redirect_to", redirectTo)
	}
	return c.baseURL + "/auth/v1/authorize?" + q.Encode()
}
