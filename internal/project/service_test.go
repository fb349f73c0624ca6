// AngelaMos | 2026
// service_test.go

package project

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
)

type stubRepo struct {
	projects     map[string]*Project
	locked       []string
	searchLevels []string
	searchParams SearchParams
	purgeKeys    []string
	txCalls      int
}

func newStubRepo() *stubRepo {
	return &stubRepo{projects: map[string]*Project{}}
}

func (s *stubRepo) InTx(_ context.Context, fn func(Repository) error) error {
	s.txCalls++
	return fn(s)
}

func (s *stubRepo) Create(_ context.Context, p *Project) error {
	cp := *p
	s.projects[p.ID] = &cp
	return nil
}

func (s *stubRepo) GetByID(_ context.Context, id string) (*Project, error) {
	p, ok := s.projects[id]
	if !ok {
		return nil, fmt.Errorf("get project: %w", core.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (s *stubRepo) ListByDeveloper(_ context.Context, developerID string) ([]Project, error) {
	var out []Project
	for _, p := range s.projects {
		if p.DeveloperID == developerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *stubRepo) Search(
	_ context.Context,
	params SearchParams,
	levels []string,
) ([]Project, int, error) {
	s.searchParams = params
	s.searchLevels = levels
	return nil, 0, nil
}

func (s *stubRepo) Update(_ context.Context, p *Project) error {
	cp := *p
	s.projects[p.ID] = &cp
	return nil
}

func (s *stubRepo) UpdateStatus(ctx context.Context, id string, status Status) (*Project, error) {
	p, ok := s.projects[id]
	if !ok {
		return nil, fmt.Errorf("update status: %w", core.ErrNotFound)
	}
	p.Status = status
	return s.GetByID(ctx, id)
}

func (s *stubRepo) IncrementVisibility(ctx context.Context, id string, amount int) (*Project, error) {
	p, ok := s.projects[id]
	if !ok {
		return nil, fmt.Errorf("boost: %w", core.ErrNotFound)
	}
	p.VisibilityScore += amount
	return s.GetByID(ctx, id)
}

func (s *stubRepo) CountActiveByDeveloper(_ context.Context, developerID string) (int, error) {
	n := 0
	for _, p := range s.projects {
		if p.DeveloperID == developerID && p.Status != StatusArchived {
			n++
		}
	}
	return n, nil
}

func (s *stubRepo) LockDeveloper(_ context.Context, developerID string) error {
	s.locked = append(s.locked, developerID)
	return nil
}

func (s *stubRepo) Purge(_ context.Context, id string) ([]string, error) {
	if _, ok := s.projects[id]; !ok {
		return nil, fmt.Errorf("purge: %w", core.ErrNotFound)
	}
	delete(s.projects, id)
	return s.purgeKeys, nil
}

type stubBlobs struct {
	deleted []string
	err     error
}

func (b *stubBlobs) Delete(_ context.Context, key string) error {
	b.deleted = append(b.deleted, key)
	return b.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func developer(id, tier string) *access.Viewer {
	return &access.Viewer{
		ID:                 id,
		Role:               access.RoleDeveloper,
		Tier:               tier,
		SubscriptionStatus: access.SubscriptionActive,
	}
}

func validCreate() CreateProjectRequest {
	return CreateProjectRequest{
		Title:              "Riverside Lofts",
		Description:        "Forty loft units on the river front.",
		Country:            "Portugal",
		City:               "Porto",
		PropertyType:       "residential",
		InvestmentRequired: decimal.NewFromInt(2_500_000),
	}
}

func seed(repo *stubRepo, p Project) {
	if p.Status == "" {
		p.Status = StatusPublished
	}
	if p.AccessLevel == "" {
		p.AccessLevel = access.LevelPublic
	}
	repo.projects[p.ID] = &p
}

func TestCreateQuota(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, nil, quietLogger())
	ctx := context.Background()
	dev := developer("dev-1", "launch")

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, dev, validCreate())
		require.NoError(t, err)
	}

	_, err := svc.Create(ctx, dev, validCreate())
	require.ErrorIs(t, err, core.ErrQuotaExceeded)

	var appErr *core.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t,
		"Project quota exceeded. Your Launch tier allows 3 projects. Upgrade to create more.",
		appErr.Message,
	)
	assert.Equal(t, 403, appErr.StatusCode)
	assert.Equal(t, []string{"dev-1", "dev-1", "dev-1", "dev-1"}, repo.locked)
}

func TestCreateArchivedProjectsDoNotCount(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, nil, quietLogger())
	dev := developer("dev-1", "launch")

	for i := 0; i < 3; i++ {
		seed(repo, Project{
			ID:          fmt.Sprintf("old-%d", i),
			DeveloperID: "dev-1",
			Status:      StatusArchived,
		})
	}

	p, err := svc.Create(context.Background(), dev, validCreate())
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, p.Status)
	assert.Equal(t, 0, p.VisibilityScore)
	assert.Equal(t, access.LevelPublic, p.AccessLevel)
	assert.Equal(t, ContactFull, p.ContactVisibility)
}

func TestCreateEliteUnlimited(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, nil, quietLogger())
	dev := developer("dev-1", "elite")

	for i := 0; i < 60; i++ {
		seed(repo, Project{ID: fmt.Sprintf("p-%d", i), DeveloperID: "dev-1"})
	}

	_, err := svc.Create(context.Background(), dev, validCreate())
	assert.NoError(t, err)
}

func TestCreateGuards(t *testing.T) {
	svc := NewService(newStubRepo(), nil, quietLogger())
	ctx := context.Background()

	investor := &access.Viewer{
		ID:                 "inv-1",
		Role:               access.RoleInvestor,
		SubscriptionStatus: access.SubscriptionActive,
	}
	_, err := svc.Create(ctx, investor, validCreate())
	assert.ErrorIs(t, err, core.ErrForbidden)

	expired := developer("dev-1", "growth")
	expired.SubscriptionStatus = access.SubscriptionExpired
	_, err = svc.Create(ctx, expired, validCreate())
	assert.ErrorIs(t, err, core.ErrPaymentRequired)

	trial := developer("dev-2", "growth")
	trial.SubscriptionStatus = access.SubscriptionTrial
	_, err = svc.Create(ctx, trial, validCreate())
	assert.NoError(t, err)

	req := validCreate()
	req.InvestmentRequired = decimal.Zero
	_, err = svc.Create(ctx, developer("dev-3", "growth"), req)
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	req = validCreate()
	roi := decimal.NewFromInt(140)
	req.ROIEstimate = &roi
	_, err = svc.Create(ctx, developer("dev-3", "growth"), req)
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = svc.Create(ctx, nil, validCreate())
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestGetVisibility(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, nil, quietLogger())
	ctx := context.Background()

	seed(repo, Project{
		ID:          "p-1",
		DeveloperID: "dev-1",
		AccessLevel: access.LevelInvestorOnly,
	})
	seed(repo, Project{
		ID:          "p-draft",
		DeveloperID: "dev-1",
		Status:      StatusDraft,
	})

	explorer := &access.Viewer{ID: "inv-1", Role: access.RoleInvestor, Tier: "explorer"}
	partner := &access.Viewer{ID: "inv-2", Role: access.RoleInvestor, Tier: "capital_partner"}
	otherDev := developer("dev-2", "launch")

	_, err := svc.Get(ctx, explorer, "p-1")
	assert.ErrorIs(t, err, core.ErrForbidden)

	_, err = svc.Get(ctx, nil, "p-1")
	assert.ErrorIs(t, err, core.ErrForbidden)

	p, err := svc.Get(ctx, partner, "p-1")
	require.NoError(t, err)
	assert.Equal(t, "p-1", p.ID)

	_, err = svc.Get(ctx, otherDev, "p-1")
	assert.NoError(t, err)

	_, err = svc.Get(ctx, explorer, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = svc.Get(ctx, explorer, "p-draft")
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = svc.Get(ctx, developer("dev-1", "launch"), "p-draft")
	assert.NoError(t, err)
}

func TestSearchLevelsAndStatus(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, nil, quietLogger())
	ctx := context.Background()

	_, _, err := svc.Search(ctx, nil, SearchParams{Status: "draft"})
	require.NoError(t, err)
	assert.Equal(t, []string{"public"}, repo.searchLevels)
	assert.Equal(t, "published", repo.searchParams.Status)

	insider := &access.Viewer{ID: "inv-1", Role: access.RoleInvestor, Tier: "Insider"}
	_, _, err = svc.Search(ctx, insider, SearchParams{})
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]string{"public", "verified_only"},
		repo.searchLevels,
	)

	admin := &access.Viewer{ID: "adm", Role: access.RoleAdmin}
	_, _, err = svc.Search(ctx, admin, SearchParams{Status: "draft"})
	require.NoError(t, err)
	assert.Equal(t, "draft", repo.searchParams.Status)
	assert.Len(t, repo.searchLevels, 4)

	_, _, err = svc.Search(ctx, admin, SearchParams{Status: "deleted"})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestChangeStatus(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, nil, quietLogger())
	ctx := context.Background()
	owner := developer("dev-1", "growth")

	seed(repo, Project{ID: "p-1", DeveloperID: "dev-1", Status: StatusDraft})

	p, err := svc.ChangeStatus(ctx, owner, "p-1", "published")
	require.NoError(t, err)
	assert.Equal(t, StatusPublished, p.Status)

	p, err = svc.ChangeStatus(ctx, owner, "p-1", "draft")
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, p.Status)

	_, err = svc.ChangeStatus(ctx, developer("dev-2", "growth"), "p-1", "published")
	assert.ErrorIs(t, err, core.ErrForbidden)

	lapsed := developer("dev-1", "growth")
	lapsed.SubscriptionStatus = access.SubscriptionNone
	_, err = svc.ChangeStatus(ctx, lapsed, "p-1", "published")
	assert.ErrorIs(t, err, core.ErrPaymentRequired)

	require.NoError(t, svc.Archive(ctx, owner, "p-1"))

	_, err = svc.ChangeStatus(ctx, owner, "p-1", "published")
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = svc.Update(ctx, owner, "p-1", UpdateProjectRequest{})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestUpdate(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, nil, quietLogger())
	ctx := context.Background()

	seed(repo, Project{ID: "p-1", DeveloperID: "dev-1", ContactVisibility: ContactFull})

	title := "Harbour View"
	level := "investor_only"
	contact := "none"
	p, err := svc.Update(ctx, developer("dev-1", "launch"), "p-1", UpdateProjectRequest{
		Title:             &title,
		AccessLevel:       &level,
		ContactVisibility: &contact,
		Tags:              []string{"waterfront"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Harbour View", p.Title)
	assert.Equal(t, access.LevelInvestorOnly, p.AccessLevel)
	assert.Equal(t, ContactHidden, p.ContactVisibility)
	assert.Equal(t, StringList{"waterfront"}, p.Tags)

	_, err = svc.Update(ctx, developer("dev-2", "launch"), "p-1", UpdateProjectRequest{})
	assert.ErrorIs(t, err, core.ErrForbidden)

	_, err = svc.Update(ctx, developer("dev-1", "launch"), "nope", UpdateProjectRequest{})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestBoostMonotonic(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, nil, quietLogger())
	ctx := context.Background()
	admin := &access.Viewer{ID: "adm", Role: access.RoleAdmin}

	seed(repo, Project{ID: "p-1", DeveloperID: "dev-1", VisibilityScore: 10})

	p, err := svc.Boost(ctx, admin, "p-1", 25)
	require.NoError(t, err)
	assert.Equal(t, 35, p.VisibilityScore)

	_, err = svc.Boost(ctx, admin, "p-1", -5)
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = svc.Boost(ctx, developer("dev-1", "elite"), "p-1", 5)
	assert.ErrorIs(t, err, core.ErrForbidden)

	_, err = svc.Boost(ctx, admin, "missing", 5)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestPurgeIgnoresBlobFailures(t *testing.T) {
	repo := newStubRepo()
	repo.purgeKeys = []string{"projects/p-1/documents/a.pdf", "projects/p-1/documents/b.pdf"}
	blobs := &stubBlobs{err: errors.New("bucket unreachable")}
	svc := NewService(repo, blobs, quietLogger())
	ctx := context.Background()
	admin := &access.Viewer{ID: "adm", Role: access.RoleAdmin}

	seed(repo, Project{ID: "p-1", DeveloperID: "dev-1"})

	require.NoError(t, svc.Purge(ctx, admin, "p-1"))
	assert.Equal(t, repo.purgeKeys, blobs.deleted)
	assert.Equal(t, 1, repo.txCalls)

	err := svc.Purge(ctx, admin, "p-1")
	assert.ErrorIs(t, err, core.ErrNotFound)

	err = svc.Purge(ctx, developer("dev-1", "elite"), "p-1")
	assert.ErrorIs(t, err, core.ErrForbidden)
}

func TestMaskEmail(t *testing.T) {
	cases := map[string]string{
		"john@example.com": "j***n@example.com",
		"jo@example.com":   "j***@example.com",
		"j@example.com":    "j***@example.com",
		"broken":           "***",
	}
	for in, want := range cases {
		assert.Equal(t, want, MaskEmail(in), in)
	}
}

func TestToProjectResponseContact(t *testing.T) {
	email := "john@example.com"
	p := &Project{ID: "p-1", DeveloperEmail: &email}

	p.ContactVisibility = ContactMasked
	assert.Equal(t, "j***n@example.com", ToProjectResponse(p, false).DeveloperEmail)
	assert.Equal(t, email, ToProjectResponse(p, true).DeveloperEmail)

	p.ContactVisibility = ContactHidden
	assert.Empty(t, ToProjectResponse(p, false).DeveloperEmail)

	p.ContactVisibility = ContactFull
	assert.Equal(t, email, ToProjectResponse(p, false).DeveloperEmail)
	assert.NotNil(t, ToProjectResponse(p, false).Tags)
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusDraft.CanTransition(StatusPublished))
	assert.True(t, StatusPublished.CanTransition(StatusDraft))
	assert.False(t, StatusArchived.CanTransition(StatusDraft))
	assert.False(t, StatusArchived.CanTransition(StatusPublished))
}
