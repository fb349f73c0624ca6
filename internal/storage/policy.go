// AngelaMos | 2026
// policy.go

package storage

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/elyterrax/marketplace-api/internal/config"
	"github.com/elyterrax/marketplace-api/internal/core"
)

// Policy decides which uploads are accepted.
type Policy struct {
	maxBytes   int64
	maxSizeMB  int
	extensions map[string]struct{}
}

func NewPolicy(cfg config.DocumentsConfig) *Policy {
	exts := make(map[string]struct{}, len(cfg.AllowedExtensions))
	for _, e := range cfg.AllowedExtensions {
		exts[strings.ToLower(strings.TrimPrefix(e, "."))] = struct{}{}
	}

	return &Policy{
		maxBytes:   cfg.MaxSizeBytes(),
		maxSizeMB:  cfg.MaxSizeMB,
		extensions: exts,
	}
}

func (p *Policy) MaxBytes() int64 {
	return p.maxBytes
}

// Extension returns the lowercased extension of filename if it is allowed.
func (p *Policy) Extension(filename string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		return "", core.BadRequestError("file has no extension")
	}
	if _, ok := p.extensions[ext]; !ok {
		return "", core.BadRequestError(
			fmt.Sprintf("file type .%s is not allowed", ext),
		)
	}
	return ext, nil
}

func (p *Policy) CheckSize(size int64) error {
	if size <= 0 {
		return core.BadRequestError("file is empty")
	}
	if size > p.maxBytes {
		return core.TooLargeError(fmt.Sprintf(
			"File size exceeds maximum allowed (%dMB)",
			p.maxSizeMB,
		))
	}
	return nil
}

func DocumentKey(projectID, documentID, ext string) string {
	return fmt.Sprintf("projects/%s/documents/%s.%s", projectID, documentID, ext)
}
