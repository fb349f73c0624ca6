// AngelaMos | 2026
// repository.go

package project

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/elyterrax/marketplace-api/internal/core"
)

const projectColumns = `
	p.id, p.developer_id, p.title, p.description, p.country, p.city,
	p.property_type, p.total_investment_required, p.roi_estimate,
	p.timeline_months, p.status, p.access_level, p.contact_visibility,
	p.visibility_score, p.tags, p.media_urls, p.published_at,
	p.created_at, p.updated_at,
	u.full_name AS developer_name, u.email AS developer_email`

const projectFrom = `
	FROM projects p
	LEFT JOIN users u ON u.id = p.developer_id`

type Repository interface {
	// InTx runs fn against a repository bound to a single transaction.
	InTx(ctx context.Context, fn func(Repository) error) error

	Create(ctx context.Context, p *Project) error
	GetByID(ctx context.Context, id string) (*Project, error)
	ListByDeveloper(ctx context.Context, developerID string) ([]Project, error)
	Search(
		ctx context.Context,
		params SearchParams,
		levels []string,
	) ([]Project, int, error)
	Update(ctx context.Context, p *Project) error
	UpdateStatus(ctx context.Context, id string, status Status) (*Project, error)
	IncrementVisibility(ctx context.Context, id string, amount int) (*Project, error)
	CountActiveByDeveloper(ctx context.Context, developerID string) (int, error)
	LockDeveloper(ctx context.Context, developerID string) error
	Purge(ctx context.Context, id string) ([]string, error)
}

type repository struct {
	root *sqlx.DB
	db   core.DBTX
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{root: db, db: db}
}

func (r *repository) InTx(
	ctx context.Context,
	fn func(Repository) error,
) error {
	if r.root == nil {
		return fn(r)
	}
	return core.InTx(ctx, r.root, func(tx *sqlx.Tx) error {
		return fn(&repository{db: tx})
	})
}

func (r *repository) Create(ctx context.Context, p *Project) error {
	query := `
		INSERT INTO projects (
			id, developer_id, title, description, country, city,
			property_type, total_investment_required, roi_estimate,
			timeline_months, status, access_level, contact_visibility,
			visibility_score, tags, media_urls
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
		)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		p.ID,
		p.DeveloperID,
		p.Title,
		p.Description,
		p.Country,
		p.City,
		p.PropertyType,
		p.InvestmentRequired,
		p.ROIEstimate,
		p.TimelineMonths,
		p.Status,
		p.AccessLevel,
		p.ContactVisibility,
		p.VisibilityScore,
		p.Tags,
		p.MediaURLs,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Project, error) {
	query := `SELECT ` + projectColumns + projectFrom + `
		WHERE p.id = $1`

	var p Project
	err := r.db.GetContext(ctx, &p, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get project: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}

	return &p, nil
}

func (r *repository) ListByDeveloper(
	ctx context.Context,
	developerID string,
) ([]Project, error) {
	query := `SELECT ` + projectColumns + projectFrom + `
		WHERE p.developer_id = $1
		ORDER BY p.created_at DESC`

	var projects []Project
	if err := r.db.SelectContext(ctx, &projects, query, developerID); err != nil {
		return nil, fmt.Errorf("list developer projects: %w", err)
	}

	return projects, nil
}

// Search filters by the caller's visible access levels in SQL so that
// LIMIT/OFFSET and the total count only ever see visible rows.
func (r *repository) Search(
	ctx context.Context,
	params SearchParams,
	levels []string,
) ([]Project, int, error) {
	params.Normalize()

	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, fmt.Sprintf("p.access_level = ANY($%d)", argIdx))
	args = append(args, levels)
	argIdx++

	conditions = append(conditions, fmt.Sprintf("p.status = $%d", argIdx))
	args = append(args, params.Status)
	argIdx++

	if params.Country != "" {
		conditions = append(conditions, fmt.Sprintf("p.country ILIKE $%d", argIdx))
		args = append(args, "%"+escapeLike(params.Country)+"%")
		argIdx++
	}

	if params.City != "" {
		conditions = append(conditions, fmt.Sprintf("p.city ILIKE $%d", argIdx))
		args = append(args, "%"+escapeLike(params.City)+"%")
		argIdx++
	}

	if params.PropertyType != "" {
		conditions = append(conditions, fmt.Sprintf("p.property_type = $%d", argIdx))
		args = append(args, params.PropertyType)
		argIdx++
	}

	if params.MinInvestment != nil {
		conditions = append(conditions, fmt.Sprintf(
			"p.total_investment_required >= $%d", argIdx))
		args = append(args, *params.MinInvestment)
		argIdx++
	}

	if params.MaxInvestment != nil {
		conditions = append(conditions, fmt.Sprintf(
			"p.total_investment_required <= $%d", argIdx))
		args = append(args, *params.MaxInvestment)
		argIdx++
	}

	if params.MinROI != nil {
		conditions = append(conditions, fmt.Sprintf("p.roi_estimate >= $%d", argIdx))
		args = append(args, *params.MinROI)
		argIdx++
	}

	if len(params.Tags) > 0 {
		conditions = append(conditions, fmt.Sprintf("p.tags ?| $%d", argIdx))
		args = append(args, params.Tags)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM projects p WHERE ` + whereClause
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count projects: %w", err)
	}

	orderBy := sortColumns[params.SortBy] + " " + strings.ToUpper(params.SortOrder)
	if params.SortBy == "roi_estimate" {
		orderBy += " NULLS LAST"
	}

	query := fmt.Sprintf(`
		SELECT `+projectColumns+projectFrom+`
		WHERE %s
		ORDER BY %s, p.id
		LIMIT $%d OFFSET $%d`,
		whereClause, orderBy, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var projects []Project
	if err := r.db.SelectContext(ctx, &projects, query, args...); err != nil {
		return nil, 0, fmt.Errorf("search projects: %w", err)
	}

	return projects, total, nil
}

func (r *repository) Update(ctx context.Context, p *Project) error {
	query := `
		UPDATE projects
		SET title = $2, description = $3, country = $4, city = $5,
		    property_type = $6, total_investment_required = $7,
		    roi_estimate = $8, timeline_months = $9, access_level = $10,
		    contact_visibility = $11, tags = $12, media_urls = $13,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &p.UpdatedAt, query,
		p.ID,
		p.Title,
		p.Description,
		p.Country,
		p.City,
		p.PropertyType,
		p.InvestmentRequired,
		p.ROIEstimate,
		p.TimelineMonths,
		p.AccessLevel,
		p.ContactVisibility,
		p.Tags,
		p.MediaURLs,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update project: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}

	return nil
}

// UpdateStatus stamps published_at the first time a project is published
// and never clears it.
func (r *repository) UpdateStatus(
	ctx context.Context,
	id string,
	status Status,
) (*Project, error) {
	query := `
		UPDATE projects
		SET status = $2,
		    published_at = CASE
		        WHEN $2 = 'published' THEN COALESCE(published_at, NOW())
		        ELSE published_at
		    END,
		    updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return nil, fmt.Errorf("update project status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update project status: %w", err)
	}
	if rows == 0 {
		return nil, fmt.Errorf("update project status: %w", core.ErrNotFound)
	}

	return r.GetByID(ctx, id)
}

func (r *repository) IncrementVisibility(
	ctx context.Context,
	id string,
	amount int,
) (*Project, error) {
	query := `
		UPDATE projects
		SET visibility_score = visibility_score + $2, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, amount)
	if err != nil {
		return nil, fmt.Errorf("boost project: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("boost project: %w", err)
	}
	if rows == 0 {
		return nil, fmt.Errorf("boost project: %w", core.ErrNotFound)
	}

	return r.GetByID(ctx, id)
}

func (r *repository) CountActiveByDeveloper(
	ctx context.Context,
	developerID string,
) (int, error) {
	query := `
		SELECT COUNT(*) FROM projects
		WHERE developer_id = $1 AND status <> 'archived'`

	var count int
	if err := r.db.GetContext(ctx, &count, query, developerID); err != nil {
		return 0, fmt.Errorf("count active projects: %w", err)
	}

	return count, nil
}

// LockDeveloper serializes concurrent creations by the same developer for
// the rest of the transaction.
func (r *repository) LockDeveloper(ctx context.Context, developerID string) error {
	return core.AdvisoryXactLock(ctx, r.db, "project_quota:"+developerID)
}

// Purge hard-deletes a project and everything hanging off it, children
// first. It returns the blob keys of the removed documents so the caller
// can clean up storage after commit.
func (r *repository) Purge(ctx context.Context, id string) ([]string, error) {
	steps := []struct {
		name  string
		query string
	}{
		{"messages", `
			DELETE FROM messages
			WHERE lead_id IN (SELECT id FROM leads WHERE project_id = $1)`},
		{"deal tranches", `
			DELETE FROM deal_tranches
			WHERE deal_id IN (
				SELECT d.id FROM deals d
				JOIN leads l ON l.id = d.lead_id
				WHERE l.project_id = $1
			)`},
		{"deals", `
			DELETE FROM deals
			WHERE lead_id IN (SELECT id FROM leads WHERE project_id = $1)`},
		{"leads", `DELETE FROM leads WHERE project_id = $1`},
	}

	for _, step := range steps {
		if _, err := r.db.ExecContext(ctx, step.query, id); err != nil {
			return nil, fmt.Errorf("purge project %s: %w", step.name, err)
		}
	}

	var keys []string
	if err := r.db.SelectContext(ctx, &keys, `
		DELETE FROM project_documents
		WHERE project_id = $1
		RETURNING storage_key`, id,
	); err != nil {
		return nil, fmt.Errorf("purge project documents: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("purge project: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("purge project: %w", err)
	}
	if rows == 0 {
		return nil, fmt.Errorf("purge project: %w", core.ErrNotFound)
	}

	return keys, nil
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
