// AngelaMos | 2026
// service.go

package deal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/elyterrax/marketplace-api/internal/access"
	"github.com/elyterrax/marketplace-api/internal/core"
	"github.com/elyterrax/marketplace-api/internal/lead"
	"github.com/elyterrax/marketplace-api/internal/metrics"
)

type LeadFinder interface {
	GetByID(ctx context.Context, id string) (*lead.Lead, error)
}

type Service struct {
	repo   Repository
	leads  LeadFinder
	logger *slog.Logger
}

func NewService(repo Repository, leads LeadFinder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, leads: leads, logger: logger}
}

// Record attaches a deal to a lead, charging the rate the lead locked at
// creation.
func (s *Service) Record(
	ctx context.Context,
	viewer *access.Viewer,
	req RecordDealRequest,
) (*Deal, error) {
	ctx, end := core.StartSpan(ctx, "deal.record", attribute.String("lead.id", req.LeadID))
	out, err := s.record(ctx, viewer, req)
	end(err)
	return out, err
}

func (s *Service) record(
	ctx context.Context,
	viewer *access.Viewer,
	req RecordDealRequest,
) (*Deal, error) {
	if err := requireAdmin(viewer); err != nil {
		return nil, err
	}

	l, err := s.leads.GetByID(ctx, req.LeadID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("Lead")
		}
		return nil, fmt.Errorf("load lead: %w", err)
	}

	d, err := NewDealFromLead(l, req.toNewDeal())
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}

	metrics.DealsRecordedTotal.WithLabelValues(d.LockedTier).Inc()
	s.logger.InfoContext(ctx, "deal recorded",
		"deal_id", d.ID,
		"lead_id", d.LeadID,
		"locked_tier", d.LockedTier,
		"fee", d.SuccessFeeCalculated.Decimal.String(),
	)

	return d, nil
}

func (s *Service) Get(ctx context.Context, viewer *access.Viewer, id string) (*Deal, error) {
	if err := requireAdmin(viewer); err != nil {
		return nil, err
	}

	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("Deal")
		}
		return nil, err
	}
	return d, nil
}

func (s *Service) ListByLead(
	ctx context.Context,
	viewer *access.Viewer,
	leadID string,
) ([]Deal, error) {
	if err := requireAdmin(viewer); err != nil {
		return nil, err
	}
	return s.repo.ListByLead(ctx, leadID)
}

func requireAdmin(viewer *access.Viewer) error {
	if viewer == nil {
		return core.UnauthorizedError("")
	}
	if !viewer.IsAdmin() {
		return core.ForbiddenError("Admin access required")
	}
	return nil
}
