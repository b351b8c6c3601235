package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"redesperanza/web/internal/models"
)

func (c *Client) ListActiveCases(ctx context.Context, tokens TokenSource) ([]models.Case, error) {
	var cases []models.Case
	err := c.Request(ctx, tokens, http.MethodGet, "/cases?estado="+string(models.CaseStatusActive), nil, &cases)
	return cases, err
}

func (c *Client) ListCases(ctx context.Context, tokens TokenSource) ([]models.Case, error) {
	var cases []models.Case
	err := c.Request(ctx, tokens, http.MethodGet, "/cases", nil, &cases)
	return cases, err
}

func (c *Client) GetCase(ctx context.Context, tokens TokenSource, id string) (models.Case, error) {
	var item models.Case
	err := c.Request(ctx, tokens, http.MethodGet, "/cases/"+url.PathEscape(id), nil, &item)
	return item, err
}

func (c *Client) ListCasesByUser(ctx context.Context, tokens TokenSource, userID string) ([]models.Case, error) {
	var cases []models.Case
	err := c.Request(ctx, tokens, http.MethodGet, "/cases/user/"+url.PathEscape(userID), nil, &cases)
	return cases, err
}

func (c *Client) CreateCase(ctx context.Context, tokens TokenSource, input models.CaseInput) (models.Case, error) {
	var created models.Case
	err := c.Request(ctx, tokens, http.MethodPost, "/cases", input, &created)
	return created, err
}

type caseStatusUpdate struct {
	Status models.CaseStatus `json:"estado_caso"`
}

func (c *Client) UpdateCaseStatus(ctx context.Context, tokens TokenSource, id string, status models.CaseStatus) (models.Case, error) {
	var updated models.Case
	err := c.Request(ctx, tokens, http.MethodPut, "/cases/"+url.PathEscape(id), caseStatusUpdate{Status: status}, &updated)
	return updated, err
}

func (c *Client) DeleteCase(ctx context.Context, tokens TokenSource, id string) error {
	return c.Request(ctx, tokens, http.MethodDelete, "/cases/"+url.PathEscape(id), nil, nil)
}
