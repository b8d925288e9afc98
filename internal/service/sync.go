package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"je-feed-v2/internal/config"
	"je-feed-v2/internal/export"
	"je-feed-v2/internal/feed"
	"je-feed-v2/internal/logger"
	"je-feed-v2/internal/model"
	"je-feed-v2/internal/reconcile"
)

// Source produces today's scraped listings.
type Source interface {
	Listings(ctx context.Context) ([]model.Scraped, error)
}

// Uploader pushes the written feed to remote storage.
type Uploader interface {
	Upload(ctx context.Context, localPath, objectName string) (string, error)
}

// SyncService runs the full pipeline: scrape, reconcile, filter, serialize,
// write, and optionally upload.
type SyncService struct {
	source   Source
	engine   *reconcile.Engine
	uploader Uploader // nil when upload is not configured
	cfg      *config.Config
	log      *logger.Logger

	mu         sync.Mutex
	lastReport *model.RunReport
}

// NewSyncService wires the pipeline. uploader may be nil.
func NewSyncService(source Source, engine *reconcile.Engine, uploader Uploader, cfg *config.Config, log *logger.Logger) (*SyncService, error) {
	if source == nil || engine == nil {
		return nil, fmt.Errorf("source and engine are required")
	}
	// Fail the configuration precondition up front: a run that cannot
	// serialize must not get as far as mutating the store's run counters.
	if err := cfg.Dealer.Validate(); err != nil {
		return nil, err
	}
	return &SyncService{
		source:   source,
		engine:   engine,
		uploader: uploader,
		cfg:      cfg,
		log:      log,
	}, nil
}

// Run executes one pass and returns its report. A scrape failure aborts the
// run before the store is touched, so missing_runs counters are not inflated
// by infrastructure problems.
func (s *SyncService) Run(ctx context.Context) (*model.RunReport, error) {
	report := &model.RunReport{StartedAt: time.Now().UTC()}

	items, err := s.source.Listings(ctx)
	if err != nil {
		return nil, fmt.Errorf("scrape: %w", err)
	}
	report.Scraped = len(items)

	inv, err := s.engine.Run(ctx, items)
	if err != nil {
		return nil, fmt.Errorf("reconcile: %w", err)
	}
	report.Inventory = len(inv)

	records := export.Select(inv)
	report.Exported = len(records)

	xmlBytes, err := feed.Build(feed.Meta{
		Version:     s.cfg.Feed.Version,
		Reference:   s.cfg.Feed.Reference,
		Title:       s.cfg.Feed.Title,
		Description: s.cfg.Feed.Description,
		DealerID:    s.cfg.Dealer.ID,
		DealerName:  s.cfg.Dealer.Name,
		Now:         time.Now().UTC(),
	}, records)
	if err != nil {
		return nil, fmt.Errorf("serialize feed: %w", err)
	}

	filename, err := s.cfg.Dealer.OutputFilename()
	if err != nil {
		return nil, err
	}
	outPath := filepath.Join(s.cfg.App.OutputDir, filename)
	if err := os.WriteFile(outPath, xmlBytes, 0o644); err != nil {
		return nil, fmt.Errorf("write feed: %w", err)
	}
	report.FeedPath = outPath
	s.log.Info("wrote feed",
		"path", outPath, "adverts", report.Exported, "inventory", report.Inventory)

	if s.uploader != nil {
		url, err := s.uploader.Upload(ctx, outPath, filename)
		if err != nil {
			// Upload is best-effort, mirroring the feed file on disk stays
			// the source of truth.
			s.log.Warn("feed upload failed", "err", err)
		} else {
			report.UploadURL = url
			s.log.Info("uploaded feed", "url", url)
		}
	}

	report.FinishedAt = time.Now().UTC()
	s.mu.Lock()
	s.lastReport = report
	s.mu.Unlock()
	return report, nil
}

// LastReport returns the most recent run report, or nil before the first run.
func (s *SyncService) LastReport() *model.RunReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReport
}

// FeedPath returns where the feed file is written for this configuration.
func (s *SyncService) FeedPath() string {
	filename, err := s.cfg.Dealer.OutputFilename()
	if err != nil {
		return ""
	}
	return filepath.Join(s.cfg.App.OutputDir, filename)
}
