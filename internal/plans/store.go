// Package plans resolves a (company, plan file) pair to the price table
// stored on disk under <root>/<company>/<planFileName><ext>.
package plans

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"premium-service/internal/common/config"
	"premium-service/internal/common/errors"
	"premium-service/internal/common/logger"
	"premium-service/internal/common/metrics"
	"premium-service/internal/models"
)

// Store loads price tables. Implementations must not cache between calls.
type Store interface {
	Load(ctx context.Context, company, planFileName string) (models.PriceTable, error)
}

// FileStore reads price tables from a directory tree.
type FileStore struct {
	root      string
	extension string
	logger    logger.Logger
}

func NewFileStore(cfg config.PlansConfig, log logger.Logger) (*FileStore, error) {
	root, err := filepath.Abs(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("resolve plans.data_dir %q: %w", cfg.DataDir, err)
	}
	ext := cfg.Extension
	if ext == "" {
		ext = ".json"
	}
	return &FileStore{
		root:      root,
		extension: ext,
		logger:    log.WithFields(map[string]interface{}{"component": "plan-store"}),
	}, nil
}

// Root returns the absolute data directory.
func (s *FileStore) Root() string { return s.root }

// Ready reports whether the data directory is present.
func (s *FileStore) Ready() error { return DirReady(s.root) }

// DirReady checks that dir exists and is a directory.
func DirReady(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("plans data dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("plans data dir %s is not a directory", dir)
	}
	return nil
}

// Load reads and decodes one plan file. Every call hits the disk.
func (s *FileStore) Load(ctx context.Context, company, planFileName string) (models.PriceTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.resolve(company, planFileName)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	table, err := s.read(path)
	outcome := "ok"
	if err != nil {
		outcome = string(errors.AsStandardError(err).Code)
	}
	metrics.PlanLoadDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())

	if err != nil {
		s.logger.Error("plan load failed", map[string]interface{}{
			"path":  path,
			"error": err,
		})
		return nil, err
	}

	s.logger.Debug("plan loaded", map[string]interface{}{
		"path":        path,
		"planOptions": len(table),
	})
	return table, nil
}

func (s *FileStore) read(path string) (models.PriceTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.NewPlanDataNotFoundError(s.relative(path))
		}
		return nil, errors.NewPlanDataUnreadableError(s.relative(path), err)
	}

	var table models.PriceTable
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, errors.NewPlanDataCorruptError(s.relative(path), err)
	}
	if table == nil {
		// The document was the literal null.
		return nil, errors.NewPlanDataCorruptError(s.relative(path), fmt.Errorf("document is null"))
	}
	return table, nil
}

// resolve builds the file path and refuses anything that would leave root.
func (s *FileStore) resolve(company, planFileName string) (string, error) {
	if err := checkPathElement("company", company); err != nil {
		return "", err
	}
	if err := checkPathElement("planFileName", planFileName); err != nil {
		return "", err
	}

	path := filepath.Clean(filepath.Join(s.root, company, planFileName+s.extension))
	rel, err := filepath.Rel(s.root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || rel == ".." {
		return "", errors.NewInvalidParametersError(fmt.Sprintf("plan path escapes data directory: %s/%s", company, planFileName))
	}
	return path, nil
}

func (s *FileStore) relative(path string) string {
	if rel, err := filepath.Rel(s.root, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return path
}

// checkPathElement allows a single, non-hidden path element.
func checkPathElement(field, value string) error {
	switch {
	case strings.TrimSpace(value) == "":
		return errors.NewInvalidParametersError(fmt.Sprintf("%s must not be empty", field))
	case value == "." || value == "..":
		return errors.NewInvalidParametersError(fmt.Sprintf("%s must not be a relative directory", field))
	case strings.HasPrefix(value, "."):
		return errors.NewInvalidParametersError(fmt.Sprintf("%s must not start with '.'", field))
	case strings.ContainsAny(value, `/\`+"\x00"):
		return errors.NewInvalidParametersError(fmt.Sprintf("%s must not contain path separators", field))
	case filepath.VolumeName(value) != "":
		return errors.NewInvalidParametersError(fmt.Sprintf("%s must not name a volume", field))
	}
	return nil
}
