package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/fourohfour/monetizer/internal/logging"
	"github.com/fourohfour/monetizer/internal/page"
)

// PageSaver persists a decoded page.
type PageSaver interface {
	Save(ctx context.Context, cfg *page.Config) error
}

// Notifier is told which page changed. "*" means all pages.
type Notifier interface {
	NotifyReload(pageID string)
}

// PageIDFromPath derives the page ID used when a page file has no id of
// its own: the file name without extension.
func PageIDFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// LoadPageFile decodes a page file and fills in its ID from the file name
// when absent.
func LoadPageFile(path string) (*page.Config, page.Diagnostics, error) {
	cfg, diags, err := page.DecodeFile(path)
	if err != nil {
		return nil, nil, err
	}
	if strings.TrimSpace(cfg.ID) == "" {
		cfg.ID = PageIDFromPath(path)
	}
	return cfg, diags, nil
}

// PageSync returns a handler that upserts changed page files into saver
// and notifies n. Deleted files only trigger a notification; stored pages
// are removed explicitly through the API or CLI.
func PageSync(saver PageSaver, n Notifier, logger logging.Logger) ChangeHandler {
	if logger == nil {
		logger = logging.Nop()
	}
	logger = logger.WithComponent("page_sync")

	return func(ctx context.Context, events []ChangeEvent) error {
		var errs []error
		for _, ev := range events {
			if ev.Type.Gone() {
				logger.Info(ctx, "Page file removed", "path", ev.Path)
				if n != nil {
					n.NotifyReload(PageIDFromPath(ev.Path))
				}
				continue
			}

			id, err := syncFile(ctx, saver, ev.Path, logger)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if n != nil {
				n.NotifyReload(id)
			}
		}
		return errors.Join(errs...)
	}
}

func syncFile(ctx context.Context, saver PageSaver, path string, logger logging.Logger) (string, error) {
	cfg, diags, err := LoadPageFile(path)
	if err != nil {
		return "", err
	}
	for _, d := range diags {
		logger.Warn(ctx, d.Err, "Page field replaced by defaults", "path", path, "field", logging.SanitizeForLog(d.Field))
	}
	if err := saver.Save(ctx, cfg); err != nil {
		return "", err
	}
	logger.Info(ctx, "Page synced", "path", path, "page_id", cfg.ID,
		"title", logging.SanitizeForLog(cfg.Title), "features", len(cfg.Features.Enabled()))
	return cfg.ID, nil
}

// SyncDir imports every page file below dir. It returns the synced page
// IDs; files that fail to load are logged and skipped.
func SyncDir(ctx context.Context, dir string, saver PageSaver, logger logging.Logger) ([]string, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	logger = logger.WithComponent("page_sync")

	ids := []string{}
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !PageFilter(path) || !NoHiddenFilter(path) {
			return nil
		}
		id, err := syncFile(ctx, saver, path, logger)
		if err != nil {
			logger.Warn(ctx, err, "Skipping page file", "path", path)
			return nil
		}
		ids = append(ids, id)
		return nil
	})
	return ids, err
}
