// AngelaMos | 2026
// service_test.go

package lead

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elyterrax/marketplace-api/internal/access"
	"github.com/elyterrax/marketplace-api/internal/core"
	"github.com/elyterrax/marketplace-api/internal/project"
)

type stubRepo struct {
	leads       map[string]*Lead
	messages    []Message
	skipExists  bool
	failMessage bool
}

func newStubRepo() *stubRepo {
	return &stubRepo{leads: map[string]*Lead{}}
}

// InTx snapshots state and restores it when fn fails, like a rollback.
func (s *stubRepo) InTx(_ context.Context, fn func(Repository) error) error {
	leads := make(map[string]*Lead, len(s.leads))
	for k, v := range s.leads {
		leads[k] = v
	}
	msgs := append([]Message(nil), s.messages...)

	if err := fn(s); err != nil {
		s.leads = leads
		s.messages = msgs
		return err
	}
	return nil
}

func sameRef(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (s *stubRepo) match(key Key) bool {
	for _, l := range s.leads {
		if l.InitiatorID == key.InitiatorID &&
			l.RecipientID == key.RecipientID &&
			sameRef(l.ProjectID, key.ProjectID) &&
			sameRef(l.ListingID, key.ListingID) {
			return true
		}
	}
	return false
}

func (s *stubRepo) Exists(_ context.Context, key Key) (bool, error) {
	if s.skipExists {
		return false, nil
	}
	return s.match(key), nil
}

func (s *stubRepo) Create(_ context.Context, l *Lead) error {
	if s.match(Key{l.InitiatorID, l.RecipientID, l.ProjectID, l.ListingID}) {
		return fmt.Errorf("create lead: %w", core.ErrDuplicateKey)
	}
	cp := *l
	s.leads[l.ID] = &cp
	return nil
}

func (s *stubRepo) GetByID(_ context.Context, id string) (*Lead, error) {
	l, ok := s.leads[id]
	if !ok {
		return nil, fmt.Errorf("get lead: %w", core.ErrNotFound)
	}
	cp := *l
	return &cp, nil
}

func (s *stubRepo) ListForUser(_ context.Context, userID string) ([]Lead, error) {
	var out []Lead
	for _, l := range s.leads {
		if l.HasParticipant(userID) {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (s *stubRepo) UpdateStatus(_ context.Context, id string, status Status) error {
	l, ok := s.leads[id]
	if !ok {
		return fmt.Errorf("update lead status: %w", core.ErrNotFound)
	}
	l.Status = status
	return nil
}

func (s *stubRepo) CreateMessage(_ context.Context, msg *Message) error {
	if s.failMessage {
		return errors.New("messages table unavailable")
	}
	s.messages = append(s.messages, *msg)
	return nil
}

func (s *stubRepo) ListMessages(_ context.Context, leadID string) ([]Message, error) {
	var out []Message
	for _, m := range s.messages {
		if m.LeadID == leadID {
			out = append(out, m)
		}
	}
	return out, nil
}

type stubUsers map[string]*access.Viewer

func (u stubUsers) ResolveViewer(_ context.Context, id string) (*access.Viewer, error) {
	v, ok := u[id]
	if !ok {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	cp := *v
	return &cp, nil
}

type stubProjects map[string]*project.Project

func (p stubProjects) GetByID(_ context.Context, id string) (*project.Project, error) {
	pr, ok := p[id]
	if !ok {
		return nil, fmt.Errorf("get project: %w", core.ErrNotFound)
	}
	return pr, nil
}

var (
	investor  = &access.Viewer{ID: "inv-1", Role: access.RoleInvestor, Tier: "insider"}
	buyer     = &access.Viewer{ID: "buy-1", Role: access.RoleBuyer}
	devGrowth = &access.Viewer{ID: "dev-1", Role: access.RoleDeveloper, Tier: "growth"}
	devBare   = &access.Viewer{ID: "dev-2", Role: access.RoleDeveloper}
	agency    = &access.Viewer{ID: "agc-1", Role: access.RoleAgency, Tier: "platinum"}
	investor2 = &access.Viewer{ID: "inv-2", Role: access.RoleInvestor, Tier: "explorer"}
)

type fixture struct {
	svc   *Service
	repo  *stubRepo
	users stubUsers
}

func newFixture() fixture {
	repo := newStubRepo()
	users := stubUsers{}
	for _, v := range []*access.Viewer{investor, buyer, devGrowth, devBare, agency, investor2} {
		cp := *v
		users[v.ID] = &cp
	}
	projects := stubProjects{
		"p-1": {ID: "p-1", DeveloperID: "dev-1"},
		"p-2": {ID: "p-2", DeveloperID: "dev-2"},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return fixture{
		svc:   NewService(repo, users, projects, logger),
		repo:  repo,
		users: users,
	}
}

var meta = RequestMeta{IP: "203.0.113.7", UserAgent: "Mozilla/5.0"}

func ptr(s string) *string { return &s }

func appErr(t *testing.T, err error) *core.AppError {
	t.Helper()
	var ae *core.AppError
	require.True(t, errors.As(err, &ae), "expected AppError, got %v", err)
	return ae
}

func TestCreateLeadLocksTiersAndFee(t *testing.T) {
	f := newFixture()

	lead, err := f.svc.CreateLead(context.Background(), investor, CreateLeadRequest{
		RecipientID: "dev-1",
		ProjectID:   ptr("p-1"),
		Message:     ptr("Interested in the second tranche."),
	}, meta)
	require.NoError(t, err)

	assert.Equal(t, StatusPending, lead.Status)
	assert.Equal(t, OriginPlatform, lead.Origin)
	assert.Equal(t, ChannelPlatform, lead.Channel)
	assert.Equal(t, "insider", lead.InitiatorTierLocked)
	assert.Equal(t, "growth", lead.RecipientTierLocked)
	assert.True(t, decimal.NewFromInt(4).Equal(lead.SuccessFeeRateLocked))
	assert.Equal(t, "203.0.113.7", lead.FirstContactIP)
	require.NotNil(t, lead.FirstContactUserAgent)
	assert.Equal(t, "Mozilla/5.0", *lead.FirstContactUserAgent)

	require.Len(t, f.repo.messages, 1)
	msg := f.repo.messages[0]
	assert.Equal(t, lead.ID, msg.LeadID)
	assert.Equal(t, "203.0.113.7", *msg.IPAddress)
	assert.Equal(t, "Mozilla/5.0", *msg.UserAgent)
}

func TestCreateLeadDefaults(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	lead, err := f.svc.CreateLead(ctx, buyer, CreateLeadRequest{RecipientID: "dev-2"}, meta)
	require.NoError(t, err)
	assert.Equal(t, "explorer", lead.InitiatorTierLocked)
	assert.Equal(t, "launch", lead.RecipientTierLocked)
	assert.True(t, decimal.NewFromInt(5).Equal(lead.SuccessFeeRateLocked))
	assert.Empty(t, f.repo.messages)

	lead, err = f.svc.CreateLead(ctx, investor, CreateLeadRequest{RecipientID: "agc-1"}, meta)
	require.NoError(t, err)
	assert.Equal(t, "platinum", lead.RecipientTierLocked)
	assert.True(t, decimal.NewFromInt(5).Equal(lead.SuccessFeeRateLocked))
}

func TestCreateLeadFeeSurvivesTierChange(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	lead, err := f.svc.CreateLead(ctx, investor, CreateLeadRequest{RecipientID: "dev-1"}, meta)
	require.NoError(t, err)

	f.users["dev-1"].Tier = "elite"

	stored, err := f.svc.GetLead(ctx, investor, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, "growth", stored.RecipientTierLocked)
	assert.True(t, decimal.NewFromInt(4).Equal(stored.SuccessFeeRateLocked))

	_, err = f.svc.UpdateStatus(ctx, devGrowth, lead.ID, "contacted")
	require.NoError(t, err)

	stored, err = f.svc.GetLead(ctx, devGrowth, lead.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(4).Equal(stored.SuccessFeeRateLocked))
}

func TestCreateLeadCheckOrder(t *testing.T) {
	tests := []struct {
		name      string
		initiator *access.Viewer
		req       CreateLeadRequest
		meta      RequestMeta
		status    int
		message   string
	}{
		{
			name:      "developer cannot initiate",
			initiator: devGrowth,
			req:       CreateLeadRequest{RecipientID: "missing"},
			meta:      RequestMeta{},
			status:    403,
		},
		{
			name:      "recipient missing beats bad project and ip",
			initiator: investor,
			req:       CreateLeadRequest{RecipientID: "missing", ProjectID: ptr("nope")},
			meta:      RequestMeta{},
			status:    404,
			message:   "Recipient user not found",
		},
		{
			name:      "recipient must be developer or agency",
			initiator: investor,
			req:       CreateLeadRequest{RecipientID: "inv-2", ProjectID: ptr("nope")},
			meta:      RequestMeta{},
			status:    400,
			message:   "Can only contact developers or agencies",
		},
		{
			name:      "project missing",
			initiator: investor,
			req:       CreateLeadRequest{RecipientID: "dev-1", ProjectID: ptr("nope")},
			meta:      RequestMeta{},
			status:    404,
			message:   "Project not found",
		},
		{
			name:      "project of someone else",
			initiator: investor,
			req:       CreateLeadRequest{RecipientID: "dev-1", ProjectID: ptr("p-2")},
			meta:      RequestMeta{},
			status:    400,
			message:   "Project does not belong to recipient",
		},
		{
			name:      "missing ip",
			initiator: investor,
			req:       CreateLeadRequest{RecipientID: "dev-1", ProjectID: ptr("p-1")},
			meta:      RequestMeta{UserAgent: "curl"},
			status:    400,
			message:   "Unable to determine client IP address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.svc.CreateLead(context.Background(), tt.initiator, tt.req, tt.meta)
			require.Error(t, err)

			ae := appErr(t, err)
			assert.Equal(t, tt.status, ae.StatusCode)
			if tt.message != "" {
				assert.Equal(t, tt.message, ae.Message)
			}
			assert.Empty(t, f.repo.leads)
		})
	}
}

func TestCreateLeadConflictBeforeIP(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	req := CreateLeadRequest{RecipientID: "dev-1", ProjectID: ptr("p-1")}

	_, err := f.svc.CreateLead(ctx, investor, req, meta)
	require.NoError(t, err)

	_, err = f.svc.CreateLead(ctx, investor, req, RequestMeta{})
	ae := appErr(t, err)
	assert.Equal(t, 409, ae.StatusCode)
	assert.Equal(t, "Lead already exists between these users for this project/listing", ae.Message)
}

func TestCreateLeadTupleVariations(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	requests := []CreateLeadRequest{
		{RecipientID: "dev-1"},
		{RecipientID: "dev-1", ProjectID: ptr("p-1")},
		{RecipientID: "dev-1", ListingID: ptr("l-1")},
		{RecipientID: "dev-1", ProjectID: ptr("p-1"), ListingID: ptr("l-1")},
	}
	for _, req := range requests {
		_, err := f.svc.CreateLead(ctx, investor, req, meta)
		require.NoError(t, err)
	}
	assert.Len(t, f.repo.leads, 4)

	for _, req := range requests {
		_, err := f.svc.CreateLead(ctx, investor, req, meta)
		assert.ErrorIs(t, err, core.ErrConflict)
	}

	_, err := f.svc.CreateLead(ctx, investor2, CreateLeadRequest{RecipientID: "dev-1"}, meta)
	assert.NoError(t, err)
}

func TestCreateLeadRaceMapsUniqueViolation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	req := CreateLeadRequest{RecipientID: "dev-1"}

	_, err := f.svc.CreateLead(ctx, investor, req, meta)
	require.NoError(t, err)

	f.repo.skipExists = true
	_, err = f.svc.CreateLead(ctx, investor, req, meta)
	ae := appErr(t, err)
	assert.Equal(t, 409, ae.StatusCode)
	assert.Len(t, f.repo.leads, 1)
}

func TestCreateLeadMessageFailureRollsBack(t *testing.T) {
	f := newFixture()
	f.repo.failMessage = true

	_, err := f.svc.CreateLead(context.Background(), investor, CreateLeadRequest{
		RecipientID: "dev-1",
		Message:     ptr("hello"),
	}, meta)
	require.Error(t, err)
	assert.Empty(t, f.repo.leads)
}

func TestParticipants(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	lead, err := f.svc.CreateLead(ctx, investor, CreateLeadRequest{RecipientID: "dev-1"}, meta)
	require.NoError(t, err)

	_, err = f.svc.GetLead(ctx, investor2, lead.ID)
	assert.ErrorIs(t, err, core.ErrForbidden)

	_, err = f.svc.GetLead(ctx, investor2, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = f.svc.SendMessage(ctx, investor2, lead.ID, "hi", meta)
	assert.ErrorIs(t, err, core.ErrForbidden)

	_, err = f.svc.ListMessages(ctx, buyer, lead.ID)
	assert.ErrorIs(t, err, core.ErrForbidden)

	msg, err := f.svc.SendMessage(ctx, devGrowth, lead.ID, "Happy to share the IM.", meta)
	require.NoError(t, err)
	assert.Equal(t, "dev-1", *msg.SenderID)

	msgs, err := f.svc.ListMessages(ctx, investor, lead.ID)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)

	mine, err := f.svc.ListMine(ctx, devGrowth)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	mine, err = f.svc.ListMine(ctx, investor2)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestUpdateStatusFlow(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	lead, err := f.svc.CreateLead(ctx, investor, CreateLeadRequest{RecipientID: "dev-1"}, meta)
	require.NoError(t, err)

	for _, st := range []string{"contacted", "responded", "closed"} {
		updated, err := f.svc.UpdateStatus(ctx, devGrowth, lead.ID, st)
		require.NoError(t, err)
		assert.Equal(t, Status(st), updated.Status)
	}

	_, err = f.svc.UpdateStatus(ctx, investor, lead.ID, "pending")
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = f.svc.UpdateStatus(ctx, investor2, lead.ID, "closed")
	assert.ErrorIs(t, err, core.ErrForbidden)

	_, err = f.svc.UpdateStatus(ctx, investor, lead.ID, "archived")
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestStatusCanTransition(t *testing.T) {
	assert.True(t, StatusPending.CanTransition(StatusContacted))
	assert.True(t, StatusPending.CanTransition(StatusClosed))
	assert.False(t, StatusResponded.CanTransition(StatusContacted))
	assert.False(t, StatusClosed.CanTransition(StatusPending))
	assert.False(t, StatusClosed.CanTransition(StatusClosed))
}
