// Package service implements the analyze-or-reuse orchestration and the
// read/update operations over stored company profiles.
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/company-profiler/internal/apperr"
	"github.com/sells-group/company-profiler/internal/profile"
	"github.com/sells-group/company-profiler/internal/store"
)

// WebsiteFetcher retrieves a URL and returns its condensed text.
type WebsiteFetcher interface {
	FetchCondensed(ctx context.Context, url string) (string, error)
}

// ProfileExtractor turns condensed website text into a normalized profile.
type ProfileExtractor interface {
	Extract(ctx context.Context, url, websiteContent string) (profile.CompanyProfile, error)
}

// Service holds the collaborators for profile operations. It keeps no
// state of its own; lifecycle of the store and clients belongs to the
// process entry point.
type Service struct {
	store     store.Store
	fetcher   WebsiteFetcher
	extractor ProfileExtractor
}

// New creates a Service.
func New(st store.Store, fetcher WebsiteFetcher, extractor ProfileExtractor) *Service {
	return &Service{store: st, fetcher: fetcher, extractor: extractor}
}

// AnalyzeResult is the outcome of Analyze. Cached is true when an existing
// record was returned without fetching or calling the AI.
type AnalyzeResult struct {
	Record *store.Record
	Cached bool
}

// Analyze normalizes the URL, returns the existing record if one is stored
// under that normalized URL, and otherwise runs fetch → extract → insert.
// Repeated analysis of the same URL never re-spends the fetch or AI budget.
//
// Two concurrent analyses of one URL can both miss the lookup; the store's
// unique constraint arbitrates and the loser gets a conflict. No retry here:
// the caller re-fetches to observe the winner's data.
func (s *Service) Analyze(ctx context.Context, url string) (*AnalyzeResult, error) {
	normalizedURL, err := profile.NormalizeURL(url)
	if err != nil {
		return nil, err
	}
	originalURL := strings.TrimSpace(url)

	existing, err := s.store.GetByNormalizedURL(ctx, normalizedURL)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		zap.L().Info("analyze: cache hit", zap.String("normalized_url", normalizedURL))
		return &AnalyzeResult{Record: existing, Cached: true}, nil
	}

	content, err := s.fetcher.FetchCondensed(ctx, normalizedURL)
	if err != nil {
		return nil, err
	}

	p, err := s.extractor.Extract(ctx, normalizedURL, content)
	if err != nil {
		return nil, err
	}

	rec, err := s.store.Insert(ctx, originalURL, normalizedURL, p)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateURL) {
			return nil, apperr.Conflict("A profile already exists for this website.")
		}
		return nil, err
	}

	zap.L().Info("analyze: profile created",
		zap.String("id", rec.ID),
		zap.String("normalized_url", normalizedURL),
	)
	return &AnalyzeResult{Record: rec, Cached: false}, nil
}

// Get returns the record with the given id.
func (s *Service) Get(ctx context.Context, id string) (*store.Record, error) {
	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, apperr.NotFound("Profile not found.")
	}
	return rec, nil
}

// List returns the most recently created records, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]store.Record, error) {
	return s.store.List(ctx, limit)
}

// Update rewrites a stored record. A non-empty url replaces the stored
// original URL; the URL is always re-normalized before writing. rawProfile
// goes through the canonical normalizer; if it is not an object the stored
// payload is kept unchanged (the URL may still move).
func (s *Service) Update(ctx context.Context, id, url string, rawProfile any) (*store.Record, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	nextURL := existing.URL
	if trimmed := strings.TrimSpace(url); trimmed != "" {
		nextURL = trimmed
	}
	normalizedURL, err := profile.NormalizeURL(nextURL)
	if err != nil {
		return nil, err
	}

	payload := existing.Profile
	if p, ok := profile.Normalize(rawProfile); ok {
		payload = p
	}

	rec, err := s.store.Update(ctx, id, nextURL, normalizedURL, payload)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateURL) {
			return nil, apperr.Conflict("Another profile already exists for this website.")
		}
		return nil, err
	}
	if rec == nil {
		return nil, apperr.Internal(eris.Errorf("update: record %s vanished", id))
	}

	zap.L().Info("profile updated", zap.String("id", rec.ID))
	return rec, nil
}
