package apiclient

import (
	"context"

	"golang.org/x/sync/errgroup"

	"redesperanza/web/internal/models"
)

// Statistics fetches all cases and pending clues in parallel and aggregates
// them. Either call failing fails the whole operation.
func (c *Client) Statistics(ctx context.Context, tokens TokenSource) (models.Statistics, error) {
	var (
		cases []models.Case
		clues []models.Clue
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cases, err = c.ListCases(gctx, tokens)
		return err
	})
	g.Go(func() error {
		var err error
		clues, err = c.ListPendingClues(gctx, tokens)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.Statistics{}, err
	}

	return models.ComputeStatistics(cases, clues), nil
}

type Dashboard struct {
	Cases []models.Case
	Clues []models.Clue
	Stats models.Statistics
}

// LoadDashboard loads everything the admin dashboard shows. The first failure
// cancels the remaining calls and discards their results.
func (c *Client) LoadDashboard(ctx context.Context, tokens TokenSource) (Dashboard, error) {
	var d Dashboard

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		d.Cases, err = c.ListCases(gctx, tokens)
		return err
	})
	g.Go(func() error {
		var err error
		d.Clues, err = c.ListPendingClues(gctx, tokens)
		return err
	})
	g.Go(func() error {
		var err error
		d.Stats, err = c.Statistics(gctx, tokens)
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	return d, nil
}
