// AngelaMos | 2026
// service.go

package lead

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"go.opentelemetry.io/otel/attribute"

	"github.com/elyterrax/marketplace-api/internal/access"
	"github.com/elyterrax/marketplace-api/internal/core"
	"github.com/elyterrax/marketplace-api/internal/metrics"
	"github.com/elyterrax/marketplace-api/internal/project"
)

const (
	defaultInitiatorTier = string(access.TierExplorer)
	defaultRecipientTier = string(access.TierLaunch)

	msgDuplicateLead = "Lead already exists between these users for this project/listing"
)

// UserDirectory resolves the current role and tier of a user.
type UserDirectory interface {
	ResolveViewer(ctx context.Context, userID string) (*access.Viewer, error)
}

type ProjectFinder interface {
	GetByID(ctx context.Context, id string) (*project.Project, error)
}

type Service struct {
	repo     Repository
	users    UserDirectory
	projects ProjectFinder
	logger   *slog.Logger
}

func NewService(
	repo Repository,
	users UserDirectory,
	projects ProjectFinder,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		users:    users,
		projects: projects,
		logger:   logger,
	}
}

// CreateLead records the first contact between an investor or buyer and a
// developer or agency. The checks run in a fixed order and the first
// failure wins. Tiers and the success fee rate are locked on the row.
func (s *Service) CreateLead(
	ctx context.Context,
	initiator *access.Viewer,
	req CreateLeadRequest,
	meta RequestMeta,
) (*Lead, error) {
	ctx, end := core.StartSpan(ctx, "lead.create",
		attribute.String("lead.recipient_id", req.RecipientID),
	)
	out, err := s.createLead(ctx, initiator, req, meta)
	end(err)
	return out, err
}

func (s *Service) createLead(
	ctx context.Context,
	initiator *access.Viewer,
	req CreateLeadRequest,
	meta RequestMeta,
) (*Lead, error) {
	if initiator == nil {
		return nil, core.UnauthorizedError("")
	}
	if !initiator.Role.CanInitiateLead() {
		return nil, core.ForbiddenError("Only investors and buyers can initiate leads")
	}

	recipient, err := s.users.ResolveViewer(ctx, req.RecipientID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NewDomainError(core.ErrNotFound, "Recipient user not found")
		}
		return nil, fmt.Errorf("resolve recipient: %w", err)
	}
	if !recipient.Role.CanReceiveLead() {
		return nil, core.BadRequestError("Can only contact developers or agencies")
	}

	if req.ProjectID != nil {
		p, err := s.projects.GetByID(ctx, *req.ProjectID)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return nil, core.NewDomainError(core.ErrNotFound, "Project not found")
			}
			return nil, fmt.Errorf("load project: %w", err)
		}
		if p.DeveloperID != recipient.ID {
			return nil, core.BadRequestError("Project does not belong to recipient")
		}
	}

	key := Key{
		InitiatorID: initiator.ID,
		RecipientID: recipient.ID,
		ProjectID:   req.ProjectID,
		ListingID:   req.ListingID,
	}
	exists, err := s.repo.Exists(ctx, key)
	if err != nil {
		return nil, err
	}
	if exists {
		metrics.LeadConflictsTotal.Inc()
		return nil, core.ConflictError(msgDuplicateLead)
	}

	if meta.IP == "" {
		return nil, core.BadRequestError("Unable to determine client IP address")
	}

	lead := newLead(initiator, recipient, req, meta)

	err = s.repo.InTx(ctx, func(tx Repository) error {
		if err := tx.Create(ctx, lead); err != nil {
			return err
		}
		if req.Message == nil || *req.Message == "" {
			return nil
		}
		return tx.CreateMessage(ctx, &Message{
			ID:        uuid.New().String(),
			LeadID:    lead.ID,
			SenderID:  &initiator.ID,
			Content:   *req.Message,
			IPAddress: optional(meta.IP),
			UserAgent: optional(meta.UserAgent),
		})
	})
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			metrics.LeadConflictsTotal.Inc()
			return nil, core.ConflictError(msgDuplicateLead)
		}
		return nil, err
	}

	metrics.LeadsCreatedTotal.WithLabelValues(lead.RecipientTierLocked).Inc()
	s.logger.InfoContext(ctx, "lead created",
		"lead_id", lead.ID,
		"initiator_id", lead.InitiatorID,
		"recipient_id", lead.RecipientID,
		"recipient_tier", lead.RecipientTierLocked,
		"fee_rate", lead.SuccessFeeRateLocked.String(),
	)

	return lead, nil
}

func newLead(
	initiator, recipient *access.Viewer,
	req CreateLeadRequest,
	meta RequestMeta,
) *Lead {
	initiatorTier := initiator.Tier
	if initiatorTier == "" {
		initiatorTier = defaultInitiatorTier
	}
	recipientTier := recipient.Tier
	if recipientTier == "" {
		recipientTier = defaultRecipientTier
	}

	channel := ChannelPlatform
	if req.Channel != "" {
		channel = Channel(req.Channel)
	}

	return &Lead{
		ID:                    uuid.New().String(),
		InitiatorID:           initiator.ID,
		RecipientID:           recipient.ID,
		ProjectID:             req.ProjectID,
		ListingID:             req.ListingID,
		Channel:               channel,
		Status:                StatusPending,
		Origin:                OriginPlatform,
		FirstContactIP:        meta.IP,
		FirstContactUserAgent: optional(meta.UserAgent),
		InitiatorTierLocked:   initiatorTier,
		RecipientTierLocked:   recipientTier,
		SuccessFeeRateLocked:  access.SuccessFeeRate(recipientTier),
	}
}

func (s *Service) GetLead(
	ctx context.Context,
	viewer *access.Viewer,
	id string,
) (*Lead, error) {
	return s.participantLead(ctx, viewer, id, "You don't have permission to view this lead")
}

func (s *Service) ListMine(ctx context.Context, viewer *access.Viewer) ([]Lead, error) {
	if viewer == nil {
		return nil, core.UnauthorizedError("")
	}
	return s.repo.ListForUser(ctx, viewer.ID)
}

func (s *Service) SendMessage(
	ctx context.Context,
	viewer *access.Viewer,
	leadID string,
	content string,
	meta RequestMeta,
) (*Message, error) {
	lead, err := s.participantLead(ctx, viewer, leadID,
		"You don't have permission to send messages in this lead")
	if err != nil {
		return nil, err
	}

	msg := &Message{
		ID:        uuid.New().String(),
		LeadID:    lead.ID,
		SenderID:  &viewer.ID,
		Content:   content,
		IPAddress: optional(meta.IP),
		UserAgent: optional(meta.UserAgent),
	}
	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	return msg, nil
}

func (s *Service) ListMessages(
	ctx context.Context,
	viewer *access.Viewer,
	leadID string,
) ([]Message, error) {
	lead, err := s.participantLead(ctx, viewer, leadID,
		"You don't have permission to view messages in this lead")
	if err != nil {
		return nil, err
	}
	return s.repo.ListMessages(ctx, lead.ID)
}

// UpdateStatus moves a lead forward through pending, contacted, responded
// and closed. Either participant may do it.
func (s *Service) UpdateStatus(
	ctx context.Context,
	viewer *access.Viewer,
	leadID string,
	status string,
) (*Lead, error) {
	next, ok := ParseStatus(status)
	if !ok {
		return nil, core.BadRequestError("invalid status")
	}

	lead, err := s.participantLead(ctx, viewer, leadID,
		"You don't have permission to update this lead")
	if err != nil {
		return nil, err
	}

	if lead.Status == next {
		return lead, nil
	}
	if !lead.Status.CanTransition(next) {
		return nil, core.BadRequestError(fmt.Sprintf(
			"cannot move lead from %s to %s", lead.Status, next,
		))
	}

	if err := s.repo.UpdateStatus(ctx, lead.ID, next); err != nil {
		return nil, err
	}
	lead.Status = next

	return lead, nil
}

func (s *Service) participantLead(
	ctx context.Context,
	viewer *access.Viewer,
	id string,
	denied string,
) (*Lead, error) {
	if viewer == nil {
		return nil, core.UnauthorizedError("")
	}

	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("Lead")
		}
		return nil, err
	}

	if !lead.HasParticipant(viewer.ID) {
		return nil, core.ForbiddenError(denied)
	}

	return lead, nil
}
