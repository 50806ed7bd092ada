package gateway

import (
	"context"
	"net/http"

	"github.com/noah-isme/internship-portal/internal/models"
)

// AuthGateway maps the public /auth endpoints.
type AuthGateway struct {
	client *Client
}

// NewAuthGateway constructs AuthGateway.
func NewAuthGateway(client *Client) *AuthGateway {
	return &AuthGateway{client: client}
}

// Login exchanges credentials for a token and the user record.
func (g *AuthGateway) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	var out models.LoginResponse
	err := g.client.doJSON(ctx, call{
		Method:   http.MethodPost,
		Endpoint: "/auth/login",
		Path:     "/auth/login",
		Body:     req,
		Public:   true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account.
func (g *AuthGateway) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	var out models.User
	err := g.client.doJSON(ctx, call{
		Method:   http.MethodPost,
		Endpoint: "/auth/register",
		Path:     "/auth/register",
		Body:     req,
		Public:   true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
