// AngelaMos | 2026
// service.go

package document

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"go.opentelemetry.io/otel/attribute"

	"github.com/elyterrax/marketplace-api/internal/access"
	"github.com/elyterrax/marketplace-api/internal/core"
	"github.com/elyterrax/marketplace-api/internal/metrics"
	"github.com/elyterrax/marketplace-api/internal/project"
	"github.com/elyterrax/marketplace-api/internal/storage"
)

type ProjectFinder interface {
	GetByID(ctx context.Context, id string) (*project.Project, error)
}

// BlobStore is the subset of storage.S3Store documents need.
type BlobStore interface {
	Put(
		ctx context.Context,
		key string,
		body io.Reader,
		size int64,
		contentType string,
	) error
	Delete(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
	URL(key string) string
}

type Service struct {
	repo     Repository
	projects ProjectFinder
	blobs    BlobStore
	policy   *storage.Policy
	urlTTL   time.Duration
	logger   *slog.Logger
}

func NewService(
	repo Repository,
	projects ProjectFinder,
	blobs BlobStore,
	policy *storage.Policy,
	urlTTL time.Duration,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		projects: projects,
		blobs:    blobs,
		policy:   policy,
		urlTTL:   urlTTL,
		logger:   logger,
	}
}

func (s *Service) Upload(
	ctx context.Context,
	viewer *access.Viewer,
	projectID string,
	in Upload,
) (*SignedDocument, error) {
	ctx, end := core.StartSpan(ctx, "document.upload",
		attribute.String("project.id", projectID),
		attribute.Int64("document.size", in.Size),
	)
	out, err := s.upload(ctx, viewer, projectID, in)
	end(err)
	return out, err
}

func (s *Service) upload(
	ctx context.Context,
	viewer *access.Viewer,
	projectID string,
	in Upload,
) (*SignedDocument, error) {
	if viewer == nil {
		return nil, core.UnauthorizedError("")
	}

	p, err := s.project(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !viewer.Is(p.DeveloperID) {
		return nil, core.ForbiddenError(
			"You can only upload documents to your own projects",
		)
	}

	ext, err := s.policy.Extension(in.FileName)
	if err != nil {
		return nil, err
	}
	if err := s.policy.CheckSize(in.Size); err != nil {
		return nil, err
	}

	level := access.DocPublic
	if in.AccessLevel != "" {
		level, err = access.ParseDocumentAccessLevel(in.AccessLevel)
		if err != nil {
			return nil, core.BadRequestError("invalid access_level")
		}
	}

	checksum, err := checksumOf(in.Body)
	if err != nil {
		return nil, fmt.Errorf("checksum upload: %w", err)
	}

	contentType := in.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	doc := &Document{
		ID:          uuid.New().String(),
		ProjectID:   p.ID,
		UploadedBy:  viewer.ID,
		DocType:     DocType(in.DocType),
		AccessLevel: level,
		FileName:    in.FileName,
		FileSize:    in.Size,
		ContentType: contentType,
		Checksum:    checksum,
	}
	if d := strings.TrimSpace(in.Description); d != "" {
		doc.Description = &d
	}
	doc.StorageKey = storage.DocumentKey(p.ID, doc.ID, ext)
	doc.FileURL = s.blobs.URL(doc.StorageKey)

	if err := s.blobs.Put(ctx, doc.StorageKey, in.Body, in.Size, contentType); err != nil {
		return nil, fmt.Errorf("upload document: %w", err)
	}

	if err := s.repo.Create(ctx, doc); err != nil {
		if delErr := s.blobs.Delete(ctx, doc.StorageKey); delErr != nil {
			s.logger.WarnContext(ctx, "orphaned document object",
				"key", doc.StorageKey,
				"error", delErr,
			)
		}
		return nil, err
	}

	metrics.DocumentBytesUploaded.Add(float64(doc.FileSize))
	s.logger.InfoContext(ctx, "document uploaded",
		"document_id", doc.ID,
		"project_id", doc.ProjectID,
		"size", doc.FileSize,
	)

	return s.sign(ctx, doc)
}

// Get resolves the owning project to judge access, then signs a download
// URL.
func (s *Service) Get(
	ctx context.Context,
	viewer *access.Viewer,
	id string,
) (*SignedDocument, error) {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("Document")
		}
		return nil, err
	}

	p, err := s.project(ctx, doc.ProjectID)
	if err != nil {
		return nil, err
	}

	if !access.CanAccessDocument(viewer, p.DeveloperID, doc.AccessLevel) {
		metrics.AccessDenialsTotal.WithLabelValues("document").Inc()
		return nil, core.ForbiddenError(
			"You don't have permission to access this document",
		)
	}

	return s.sign(ctx, doc)
}

func (s *Service) List(
	ctx context.Context,
	viewer *access.Viewer,
	projectID string,
) ([]Document, error) {
	p, err := s.project(ctx, projectID)
	if err != nil {
		return nil, err
	}

	levels := access.Strings(access.DocumentLevels(viewer, p.DeveloperID))
	return s.repo.ListByProject(ctx, p.ID, levels)
}

// Delete removes the record. A failing object delete is logged and does
// not block it.
func (s *Service) Delete(
	ctx context.Context,
	viewer *access.Viewer,
	id string,
) error {
	if viewer == nil {
		return core.UnauthorizedError("")
	}

	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.NotFoundError("Document")
		}
		return err
	}

	p, err := s.project(ctx, doc.ProjectID)
	if err != nil {
		return err
	}
	if !viewer.Is(p.DeveloperID) {
		return core.ForbiddenError("You can only delete documents from your own projects")
	}

	if err := s.blobs.Delete(ctx, doc.StorageKey); err != nil {
		s.logger.WarnContext(ctx, "document object delete failed",
			"document_id", doc.ID,
			"key", doc.StorageKey,
			"error", err,
		)
	}

	return s.repo.Delete(ctx, doc.ID)
}

func (s *Service) project(ctx context.Context, id string) (*project.Project, error) {
	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("Project")
		}
		return nil, err
	}
	return p, nil
}

func (s *Service) sign(ctx context.Context, doc *Document) (*SignedDocument, error) {
	url, err := s.blobs.PresignGet(ctx, doc.StorageKey, s.urlTTL)
	if err != nil {
		return nil, fmt.Errorf("sign document url: %w", err)
	}
	return &SignedDocument{
		Document:  doc,
		URL:       url,
		ExpiresAt: time.Now().Add(s.urlTTL).UTC(),
	}, nil
}

func checksumOf(body io.ReadSeeker) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, body); err != nil {
		return "", err
	}
	if _, err := body.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
