package audit

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/capria-app/capria/internal/shared"
)

// Service exposes the audit timeline to administrators and the
// retention trim job.
type Service struct {
	logger *slog.Logger
	repo   Repository
}

// NewService constructs a Service.
func NewService(logger *slog.Logger, repo Repository) *Service {
	return &Service{logger: logger, repo: repo}
}

// Timeline returns a page of audit entries, newest first. The count and the
// page itself are fetched in parallel.
func (s *Service) Timeline(ctx context.Context, filter Filter, page, perPage int) ([]Entry, shared.Pagination, error) {
	if perPage <= 0 || perPage > 100 {
		perPage = 50
	}
	if page <= 0 {
		page = 1
	}

	var (
		total   int
		entries []Entry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = s.repo.Count(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		entries, err = s.repo.List(gctx, filter, perPage, (page-1)*perPage)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, shared.Pagination{}, err
	}
	return entries, shared.NewPagination(page, perPage, total), nil
}

// Trim removes entries older than the retention window.
func (s *Service) Trim(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	removed, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.Info("trimmed audit logs", slog.Int64("removed", removed), slog.Time("cutoff", cutoff))
	}
	return removed, nil
}
