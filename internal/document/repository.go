// AngelaMos | 2026
// repository.go

package document

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/elyterrax/marketplace-api/internal/core"
)

const documentColumns = `
	id, project_id, uploaded_by, doc_type, access_level, description,
	file_name, file_size, content_type, storage_key, file_url, checksum,
	created_at`

type Repository interface {
	Create(ctx context.Context, doc *Document) error
	GetByID(ctx context.Context, id string) (*Document, error)
	ListByProject(
		ctx context.Context,
		projectID string,
		levels []string,
	) ([]Document, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, doc *Document) error {
	query := `
		INSERT INTO project_documents (
			id, project_id, uploaded_by, doc_type, access_level, description,
			file_name, file_size, content_type, storage_key, file_url, checksum
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
		RETURNING created_at`

	err := r.db.QueryRowxContext(ctx, query,
		doc.ID,
		doc.ProjectID,
		doc.UploadedBy,
		doc.DocType,
		doc.AccessLevel,
		doc.Description,
		doc.FileName,
		doc.FileSize,
		doc.ContentType,
		doc.StorageKey,
		doc.FileURL,
		doc.Checksum,
	).Scan(&doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Document, error) {
	query := `SELECT ` + documentColumns + `
		FROM project_documents
		WHERE id = $1`

	var doc Document
	err := r.db.GetContext(ctx, &doc, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get document: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}

	return &doc, nil
}

func (r *repository) ListByProject(
	ctx context.Context,
	projectID string,
	levels []string,
) ([]Document, error) {
	query := `SELECT ` + documentColumns + `
		FROM project_documents
		WHERE project_id = $1 AND access_level = ANY($2)
		ORDER BY created_at DESC`

	docs := []Document{}
	if err := r.db.SelectContext(ctx, &docs, query, projectID, levels); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	return docs, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM project_documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete document: %w", core.ErrNotFound)
	}

	return nil
}
