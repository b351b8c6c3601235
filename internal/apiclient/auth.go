package apiclient

import (
	"context"
	"net/http"

	"redesperanza/web/internal/models"
)

// CredentialSink receives the token and user after a successful login or registration.
type CredentialSink interface {
	Save(ctx context.Context, token string, user models.User) error
}

type AuthResult struct {
	Token string      `json:"token"`
	User  models.User `json:"usuario"`
}

type loginRequest struct {
	Email    string `json:"correo"`
	Password string `json:"password"`
}

// Login authenticates without a bearer header and stores the session in sink.
func (c *Client) Login(ctx context.Context, sink CredentialSink, email, password string) (models.User, error) {
	var result AuthResult
	if err := c.do(ctx, nil, http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password}, &result, loginErrorMessage); err != nil {
		return models.User{}, err
	}
	c.persist(ctx, sink, result)
	return result.User, nil
}

// Register creates the account without a bearer header and stores the session in sink.
func (c *Client) Register(ctx context.Context, sink CredentialSink, input models.RegisterInput) (AuthResult, error) {
	var result AuthResult
	if err := c.do(ctx, nil, http.MethodPost, "/auth/register", input, &result, registerErrorMessage); err != nil {
		return AuthResult{}, err
	}
	c.persist(ctx, sink, result)
	return result, nil
}

// persist is best effort: an unavailable store leaves the browser logged out.
func (c *Client) persist(ctx context.Context, sink CredentialSink, result AuthResult) {
	if sink == nil || result.Token == "" {
		return
	}
	if err := sink.Save(ctx, result.Token, result.User); err != nil {
		c.log.Warn().Err(err).Str("user_id", result.User.ID).Msg("session persist failed")
	}
}
