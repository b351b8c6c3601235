package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"redesperanza/web/internal/models"
)

func (c *Client) GetUser(ctx context.Context, tokens TokenSource, id string) (models.User, error) {
	var user models.User
	err := c.Request(ctx, tokens, http.MethodGet, "/users/"+url.PathEscape(id), nil, &user)
	return user, err
}

func (c *Client) ListUsers(ctx context.Context, tokens TokenSource) ([]models.User, error) {
	var users []models.User
	err := c.Request(ctx, tokens, http.MethodGet, "/users", nil, &users)
	return users, err
}

func (c *Client) GetUserStats(ctx context.Context, tokens TokenSource, id string) (models.UserStats, error) {
	var stats models.UserStats
	err := c.Request(ctx, tokens, http.MethodGet, "/users/"+url.PathEscape(id)+"/stats", nil, &stats)
	return stats, err
}
