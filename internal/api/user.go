package api

import (
	"context"
	"net/http"

	apperrors "github.com/miku-nicol/klassyz-hair-client/pkg/errors"
)

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}

	var envelope struct {
		Token   string `json:"token"`
		Message string `json:"message"`
	}
	if err := c.do(ctx, "login", http.MethodPost, "/user/login", body, &envelope, false); err != nil {
		return "", err
	}
	if envelope.Token == "" {
		return "", apperrors.Unavailable("login: response carried no token")
	}
	return envelope.Token, nil
}

// RegisterInput is the account creation payload.
type RegisterInput struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password" validate:"required,min=6"`
}

// Register creates an account and returns the issued bearer token.
func (c *Client) Register(ctx context.Context, input RegisterInput) (string, error) {
	var envelope struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
		Token   string `json:"token"`
		Message string `json:"message"`
	}
	if err := c.do(ctx, "register", http.MethodPost, "/user/register", input, &envelope, false); err != nil {
		return "", err
	}

	// Some deployments return the token at the top level instead of the
	// data envelope; accept either.
	token := envelope.Data.Token
	if token == "" {
		token = envelope.Token
	}
	if token == "" {
		return "", apperrors.Unavailable("register: response carried no token")
	}
	return token, nil
}

// SubscribeNewsletter subscribes an email address. A duplicate subscription
// comes back as a Conflict, which callers surface as a soft notice.
func (c *Client) SubscribeNewsletter(ctx context.Context, email string) (string, error) {
	body := struct {
		Email string `json:"email"`
	}{Email: email}

	var envelope struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, "subscribe newsletter", http.MethodPost, "/newsletter/subscribe", body, &envelope, false); err != nil {
		return "", err
	}
	return envelope.Message, nil
}
