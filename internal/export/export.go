// Package export writes deployable 404 bundles: the compiled 404.html plus
// per-host wiring snippets and a manifest, and re-exports stored pages on a
// schedule.
package export

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fourohfour/monetizer/internal/analytics"
	"github.com/fourohfour/monetizer/internal/document"
	apperrors "github.com/fourohfour/monetizer/internal/errors"
	"github.com/fourohfour/monetizer/internal/logging"
	"github.com/fourohfour/monetizer/internal/page"
)

// ManifestName is the bundle manifest file.
const ManifestName = "manifest.json"

// PlanSource resolves the plan of a page owner.
type PlanSource interface {
	PlanFor(ctx context.Context, userID string) (analytics.Plan, error)
}

// Artifact is one written file.
type Artifact struct {
	Host Host   `json:"host,omitempty"`
	Path string `json:"path"`
	Size int64  `json:"size"`
	Hash string `json:"hash"`
}

// Manifest describes a written bundle.
type Manifest struct {
	PageID      string         `json:"page_id"`
	Plan        analytics.Plan `json:"plan"`
	Analytics   bool           `json:"analytics"`
	Blocks      []page.Kind    `json:"blocks"`
	GeneratedAt time.Time      `json:"generated_at"`
	Artifacts   []Artifact     `json:"artifacts"`
}

// Exporter compiles pages and writes bundles below a root directory.
type Exporter struct {
	outDir      string
	render      document.Options
	defaultPlan analytics.Plan
	plans       PlanSource
	cache       *document.Cache
	logger      logging.Logger
	now         func() time.Time
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithPlans resolves owner plans through src instead of defaultPlan.
func WithPlans(src PlanSource) Option {
	return func(e *Exporter) { e.plans = src }
}

// WithCache compiles through a shared document cache.
func WithCache(c *document.Cache) Option {
	return func(e *Exporter) { e.cache = c }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(e *Exporter) { e.logger = l.WithComponent("export") }
}

// NewExporter creates an exporter writing below outDir. render carries the
// endpoint and custom code policies; its Plan is used for pages without a
// resolvable owner.
func NewExporter(outDir string, render document.Options, opts ...Option) *Exporter {
	e := &Exporter{
		outDir:      outDir,
		render:      render,
		defaultPlan: render.Plan,
		logger:      logging.Nop(),
		now:         time.Now,
	}
	if e.defaultPlan == "" {
		e.defaultPlan = analytics.PlanFree
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// PageDir is the bundle directory of a page.
func (e *Exporter) PageDir(pageID string) string {
	return filepath.Join(e.outDir, page.RootID(pageID))
}

// Export compiles cfg and writes its bundle to PageDir(cfg.ID).
func (e *Exporter) Export(ctx context.Context, cfg *page.Config, hosts []Host) (*Manifest, error) {
	return e.ExportTo(ctx, e.PageDir(cfg.ID), cfg, hosts)
}

// ExportTo compiles cfg and writes its bundle to dir.
func (e *Exporter) ExportTo(ctx context.Context, dir string, cfg *page.Config, hosts []Host) (*Manifest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(dir) == "" {
		return nil, apperrors.ErrInvalidPath(dir, fmt.Errorf("empty export directory"))
	}

	opts := e.render
	opts.Plan = e.planFor(ctx, cfg.UserID)
	opts.LiveReloadURL = ""
	opts.Now = e.now()

	doc, err := e.cache.Compile(cfg, opts)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperrors.NewIOError(apperrors.ErrCodeExportFailed, "create export directory", err).WithFile(dir)
	}

	m := &Manifest{
		PageID:      cfg.ID,
		Plan:        opts.Plan,
		Analytics:   opts.Plan.HasAnalytics(),
		Blocks:      cfg.Features.Enabled(),
		GeneratedAt: opts.Now.UTC(),
		Artifacts:   []Artifact{},
	}

	a, err := writeFile(dir, DocumentName, doc)
	if err != nil {
		return nil, err
	}
	m.Artifacts = append(m.Artifacts, a)

	for _, h := range hosts {
		snippet, err := Snippet(h, doc)
		if err != nil {
			return nil, err
		}
		a, err := writeFile(dir, h.Filename(), snippet)
		if err != nil {
			return nil, err
		}
		a.Host = h
		m.Artifacts = append(m.Artifacts, a)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, apperrors.NewInternalError(apperrors.ErrCodeExportFailed, "encode manifest", err)
	}
	if _, err := writeFile(dir, ManifestName, string(data)+"\n"); err != nil {
		return nil, err
	}

	e.logger.Info(ctx, "Exported page", "page_id", cfg.ID, "dir", dir, "files", len(m.Artifacts), "plan", opts.Plan)
	return m, nil
}

func (e *Exporter) planFor(ctx context.Context, userID string) analytics.Plan {
	if e.plans == nil || userID == "" {
		return e.defaultPlan
	}
	p, err := e.plans.PlanFor(ctx, userID)
	if err != nil {
		e.logger.Warn(ctx, err, "Plan lookup failed, using default", "user_id", userID)
		return e.defaultPlan
	}
	return p
}

// writeFile replaces dir/name atomically.
func writeFile(dir, name, content string) (Artifact, error) {
	path := filepath.Join(dir, name)
	tmp, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return Artifact{}, apperrors.NewIOError(apperrors.ErrCodeExportFailed, "create temp file", err).WithFile(path)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return Artifact{}, apperrors.NewIOError(apperrors.ErrCodeExportFailed, "write file", err).WithFile(path)
	}
	if err := tmp.Close(); err != nil {
		return Artifact{}, apperrors.NewIOError(apperrors.ErrCodeExportFailed, "close file", err).WithFile(path)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return Artifact{}, apperrors.NewIOError(apperrors.ErrCodeExportFailed, "chmod file", err).WithFile(path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return Artifact{}, apperrors.NewIOError(apperrors.ErrCodeExportFailed, "rename file", err).WithFile(path)
	}

	sum := sha256.Sum256([]byte(content))
	return Artifact{Path: name, Size: int64(len(content)), Hash: hex.EncodeToString(sum[:])}, nil
}
