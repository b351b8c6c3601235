package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"redesperanza/web/internal/models"
)

// ListCluesByCase returns the clues the backend lets the caller see: all of
// them for administrators, verified ones otherwise.
func (c *Client) ListCluesByCase(ctx context.Context, tokens TokenSource, caseID string) ([]models.Clue, error) {
	var clues []models.Clue
	err := c.Request(ctx, tokens, http.MethodGet, "/clues/case/"+url.PathEscape(caseID), nil, &clues)
	return clues, err
}

func (c *Client) CreateClue(ctx context.Context, tokens TokenSource, input models.ClueInput) (models.Clue, error) {
	var created models.Clue
	err := c.Request(ctx, tokens, http.MethodPost, "/clues", input, &created)
	return created, err
}

type clueStatusUpdate struct {
	Status models.ClueStatus `json:"estado_pista"`
}

func (c *Client) UpdateClueStatus(ctx context.Context, tokens TokenSource, id string, status models.ClueStatus) (models.Clue, error) {
	var updated models.Clue
	err := c.Request(ctx, tokens, http.MethodPut, "/clues/"+url.PathEscape(id), clueStatusUpdate{Status: status}, &updated)
	return updated, err
}

func (c *Client) ListPendingClues(ctx context.Context, tokens TokenSource) ([]models.Clue, error) {
	var clues []models.Clue
	err := c.Request(ctx, tokens, http.MethodGet, "/clues/pending", nil, &clues)
	return clues, err
}
