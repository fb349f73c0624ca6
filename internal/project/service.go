// AngelaMos | 2026
// service.go

package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/elyterrax/marketplace-api/internal/access"
	"github.com/elyterrax/marketplace-api/internal/core"
	"github.com/elyterrax/marketplace-api/internal/metrics"
)

// BlobDeleter removes stored document objects.
type BlobDeleter interface {
	Delete(ctx context.Context, key string) error
}

type Service struct {
	repo   Repository
	blobs  BlobDeleter
	logger *slog.Logger
}

func NewService(repo Repository, blobs BlobDeleter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, blobs: blobs, logger: logger}
}

var hundred = decimal.NewFromInt(100)

func (s *Service) Create(
	ctx context.Context,
	viewer *access.Viewer,
	req CreateProjectRequest,
) (*Project, error) {
	ctx, end := core.StartSpan(ctx, "project.create")
	out, err := s.create(ctx, viewer, req)
	end(err)
	return out, err
}

func (s *Service) create(
	ctx context.Context,
	viewer *access.Viewer,
	req CreateProjectRequest,
) (*Project, error) {
	if viewer == nil {
		return nil, core.UnauthorizedError("")
	}
	if viewer.Role != access.RoleDeveloper {
		return nil, core.ForbiddenError("Only developers can create projects")
	}
	if !viewer.HasActiveSubscription() {
		return nil, core.PaymentRequiredError(
			"Active subscription required to create projects",
		)
	}

	if err := validateAmounts(&req.InvestmentRequired, req.ROIEstimate); err != nil {
		return nil, err
	}

	level := access.LevelPublic
	if req.AccessLevel != "" {
		parsed, err := access.ParseAccessLevel(req.AccessLevel)
		if err != nil {
			return nil, core.BadRequestError("invalid access_level")
		}
		level = parsed
	}

	contact := ContactFull
	if req.ContactVisibility != "" {
		parsed, ok := ParseContactVisibility(req.ContactVisibility)
		if !ok {
			return nil, core.BadRequestError("invalid contact_visibility")
		}
		contact = parsed
	}

	p := &Project{
		ID:                 uuid.New().String(),
		DeveloperID:        viewer.ID,
		Title:              req.Title,
		Description:        req.Description,
		Country:            req.Country,
		City:               req.City,
		PropertyType:       req.PropertyType,
		InvestmentRequired: req.InvestmentRequired,
		TimelineMonths:     req.TimelineMonths,
		Status:             StatusDraft,
		AccessLevel:        level,
		ContactVisibility:  contact,
		Tags:               StringList(req.Tags),
		MediaURLs:          StringList(req.MediaURLs),
	}
	if req.ROIEstimate != nil {
		p.ROIEstimate = decimal.NewNullDecimal(*req.ROIEstimate)
	}

	err := s.repo.InTx(ctx, func(tx Repository) error {
		if err := tx.LockDeveloper(ctx, viewer.ID); err != nil {
			return err
		}
		if err := access.CheckQuota(ctx, tx, viewer); err != nil {
			return err
		}
		return tx.Create(ctx, p)
	})
	if err != nil {
		if errors.Is(err, core.ErrQuotaExceeded) {
			metrics.QuotaDenialsTotal.WithLabelValues(
				string(access.QuotaFor(viewer.Tier).Tier),
			).Inc()
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "project created",
		"project_id", p.ID,
		"developer_id", p.DeveloperID,
		"access_level", p.AccessLevel,
	)

	created, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		return p, nil //nolint:nilerr // row is committed; fall back to the inserted value
	}
	return created, nil
}

// Get returns a single project when the viewer may see its access level.
// Drafts and archived projects are only visible to their owner and admins.
func (s *Service) Get(
	ctx context.Context,
	viewer *access.Viewer,
	id string,
) (*Project, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("Project")
		}
		return nil, err
	}

	if !access.CanAccessProject(viewer, p.DeveloperID, p.AccessLevel) {
		metrics.AccessDenialsTotal.WithLabelValues("project").Inc()
		return nil, core.ForbiddenError("You do not have access to this project")
	}

	if p.Status != StatusPublished && !canManage(viewer, p) {
		return nil, core.NotFoundError("Project")
	}

	return p, nil
}

func (s *Service) Search(
	ctx context.Context,
	viewer *access.Viewer,
	params SearchParams,
) ([]Project, int, error) {
	if !viewer.IsAdmin() {
		params.Status = string(StatusPublished)
	} else if params.Status != "" {
		if _, ok := ParseStatus(params.Status); !ok {
			return nil, 0, core.BadRequestError("invalid status filter")
		}
	}

	levels := access.Strings(access.ProjectLevels(viewer, ""))
	return s.repo.Search(ctx, params, levels)
}

func (s *Service) ListMine(
	ctx context.Context,
	viewer *access.Viewer,
) ([]Project, error) {
	if viewer == nil {
		return nil, core.UnauthorizedError("")
	}
	if viewer.Role != access.RoleDeveloper {
		return nil, core.ForbiddenError("Only developers have projects")
	}
	return s.repo.ListByDeveloper(ctx, viewer.ID)
}

func (s *Service) Update(
	ctx context.Context,
	viewer *access.Viewer,
	id string,
	req UpdateProjectRequest,
) (*Project, error) {
	p, err := s.owned(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	if p.IsArchived() {
		return nil, core.BadRequestError("Archived projects cannot be modified")
	}

	if err := validateAmounts(req.InvestmentRequired, req.ROIEstimate); err != nil {
		return nil, err
	}

	if req.Title != nil {
		p.Title = *req.Title
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Country != nil {
		p.Country = *req.Country
	}
	if req.City != nil {
		p.City = *req.City
	}
	if req.PropertyType != nil {
		p.PropertyType = *req.PropertyType
	}
	if req.InvestmentRequired != nil {
		p.InvestmentRequired = *req.InvestmentRequired
	}
	if req.ROIEstimate != nil {
		p.ROIEstimate = decimal.NewNullDecimal(*req.ROIEstimate)
	}
	if req.TimelineMonths != nil {
		p.TimelineMonths = req.TimelineMonths
	}
	if req.AccessLevel != nil {
		level, err := access.ParseAccessLevel(*req.AccessLevel)
		if err != nil {
			return nil, core.BadRequestError("invalid access_level")
		}
		p.AccessLevel = level
	}
	if req.ContactVisibility != nil {
		cv, ok := ParseContactVisibility(*req.ContactVisibility)
		if !ok {
			return nil, core.BadRequestError("invalid contact_visibility")
		}
		p.ContactVisibility = cv
	}
	if req.Tags != nil {
		p.Tags = StringList(req.Tags)
	}
	if req.MediaURLs != nil {
		p.MediaURLs = StringList(req.MediaURLs)
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

// ChangeStatus moves a project between draft and published, or archives
// it. Publishing needs an active subscription.
func (s *Service) ChangeStatus(
	ctx context.Context,
	viewer *access.Viewer,
	id string,
	status string,
) (*Project, error) {
	next, ok := ParseStatus(status)
	if !ok {
		return nil, core.BadRequestError("invalid status")
	}

	p, err := s.owned(ctx, viewer, id)
	if err != nil {
		return nil, err
	}

	if p.Status == next {
		return p, nil
	}
	if p.IsArchived() {
		return nil, core.BadRequestError("Archived projects cannot change status")
	}
	if next != StatusArchived && !p.Status.CanTransition(next) {
		return nil, core.BadRequestError(fmt.Sprintf(
			"cannot move project from %s to %s", p.Status, next,
		))
	}
	if next == StatusPublished && !viewer.IsAdmin() && !viewer.HasActiveSubscription() {
		return nil, core.PaymentRequiredError(
			"Active subscription required to publish projects",
		)
	}

	return s.repo.UpdateStatus(ctx, id, next)
}

func (s *Service) Archive(
	ctx context.Context,
	viewer *access.Viewer,
	id string,
) error {
	_, err := s.ChangeStatus(ctx, viewer, id, string(StatusArchived))
	return err
}

func (s *Service) Boost(
	ctx context.Context,
	viewer *access.Viewer,
	id string,
	amount int,
) (*Project, error) {
	if !viewer.IsAdmin() {
		return nil, core.ForbiddenError("Only admins can boost projects")
	}
	if amount <= 0 {
		return nil, core.BadRequestError("amount must be positive")
	}

	p, err := s.repo.IncrementVisibility(ctx, id, amount)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("Project")
		}
		return nil, err
	}
	return p, nil
}

// Purge hard-deletes the project with its leads, messages, deals and
// documents in one transaction. Stored objects are removed afterwards and
// failures there are only logged.
func (s *Service) Purge(
	ctx context.Context,
	viewer *access.Viewer,
	id string,
) error {
	if !viewer.IsAdmin() {
		return core.ForbiddenError("Only admins can purge projects")
	}

	var keys []string
	err := s.repo.InTx(ctx, func(tx Repository) error {
		var err error
		keys, err = tx.Purge(ctx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.NotFoundError("Project")
		}
		return err
	}

	for _, key := range keys {
		if s.blobs == nil {
			break
		}
		if err := s.blobs.Delete(ctx, key); err != nil {
			s.logger.WarnContext(ctx, "purge: blob delete failed",
				"project_id", id,
				"key", key,
				"error", err,
			)
		}
	}

	s.logger.InfoContext(ctx, "project purged",
		"project_id", id,
		"documents", len(keys),
		"admin_id", viewer.ID,
	)
	return nil
}

func (s *Service) owned(
	ctx context.Context,
	viewer *access.Viewer,
	id string,
) (*Project, error) {
	if viewer == nil {
		return nil, core.UnauthorizedError("")
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("Project")
		}
		return nil, err
	}

	if !viewer.Is(p.DeveloperID) {
		return nil, core.ForbiddenError("You do not own this project")
	}
	return p, nil
}

func canManage(viewer *access.Viewer, p *Project) bool {
	return viewer.Is(p.DeveloperID) || viewer.IsAdmin()
}

func validateAmounts(investment, roi *decimal.Decimal) error {
	if investment != nil && !investment.IsPositive() {
		return core.BadRequestError("investment_required must be greater than 0")
	}
	if roi != nil && (roi.IsNegative() || roi.GreaterThan(hundred)) {
		return core.BadRequestError("roi_estimate must be between 0 and 100")
	}
	return nil
}
