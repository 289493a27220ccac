package suggest

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/raushankrgupta/media-muse/models"
)

const (
	// NormalAttempts are retried until the catalog finds a match.
	NormalAttempts = 3
	// MaxAttempts includes the single final attempt.
	MaxAttempts = NormalAttempts + 1

	FallbackURL      = "https://open.spotify.com"
	PlaceholderTitle = "Unknown"
)

// Resolver turns a photo into exactly one song suggestion.
type Resolver struct {
	generator SongGenerator
	catalog   Catalog
	log       logrus.FieldLogger
}

// NewResolver creates a Resolver. A nil logger discards output.
func NewResolver(generator SongGenerator, catalog Catalog, logger logrus.FieldLogger) *Resolver {
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		logger = l
	}
	return &Resolver{
		generator: generator,
		catalog:   catalog,
		log:       logger.WithField("component", "resolver"),
	}
}

// Resolve runs up to NormalAttempts generate-then-lookup rounds, stopping at the
// first catalog match, then one final round. When nothing matches it returns a
// fallback result with the last generated title and FallbackURL.
//
// Catalog failures never surface. A generative model failure is returned as an
// error and no result is produced.
func (r *Resolver) Resolve(ctx context.Context, req models.SuggestionRequest) (*models.SuggestionResult, error) {
	log := r.log.WithFields(logrus.Fields{
		"locale":        req.Locale,
		"recency_token": recencyField(req.RecencyToken),
	})
	log.Info("Resolving song suggestion")

	var lastTitle string
	for attempt := 1; attempt <= NormalAttempts; attempt++ {
		title, match, err := r.attempt(ctx, log, req, attempt)
		if err != nil {
			return nil, err
		}
		if title != "" {
			lastTitle = title
		}
		if match != nil {
			return matchedResult(match, attempt), nil
		}
	}

	log.Info("All attempts exhausted, making final attempt")
	title, match, err := r.attempt(ctx, log, req, MaxAttempts)
	if err != nil {
		return nil, err
	}
	if title != "" {
		lastTitle = title
	}
	if match != nil {
		return matchedResult(match, MaxAttempts), nil
	}

	if lastTitle == "" {
		lastTitle = PlaceholderTitle
	}
	log.WithField("title", lastTitle).Warn("No catalog match, returning fallback")
	return &models.SuggestionResult{
		Title:    lastTitle,
		URL:      FallbackURL,
		Outcome:  models.OutcomeFallback,
		Attempts: MaxAttempts,
	}, nil
}

// attempt performs one generative call and at most one catalog lookup.
// It returns the trimmed candidate title ("" when none) and the match, if any.
func (r *Resolver) attempt(ctx context.Context, log logrus.FieldLogger, req models.SuggestionRequest, n int) (string, *models.CatalogMatch, error) {
	log = log.WithField("attempt", fmt.Sprintf("%d/%d", n, MaxAttempts))

	title, err := r.generator.SuggestTitle(ctx, req)
	if err != nil {
		return "", nil, fmt.Errorf("song suggestion attempt %d: %w", n, err)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		log.Warn("Model did not return a suggestion")
		return "", nil, nil
	}

	log = log.WithField("candidate", title)
	match, err := r.catalog.Search(ctx, title)
	if err != nil {
		log.WithError(err).Warn("Catalog lookup failed, treating as no match")
		return title, nil, nil
	}
	if match == nil || !isValidURL(match.URL) {
		log.Info("Not found in catalog")
		return title, nil, nil
	}

	if match.Title == "" {
		named := *match
		named.Title = title
		match = &named
	}

	log.WithFields(logrus.Fields{
		"match": match.Title,
		"url":   match.URL,
	}).Info("Found in catalog")
	return title, match, nil
}

func matchedResult(match *models.CatalogMatch, attempts int) *models.SuggestionResult {
	return &models.SuggestionResult{
		Title:    match.Title,
		URL:      match.URL,
		Outcome:  models.OutcomeMatched,
		Attempts: attempts,
	}
}

func isValidURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}

func recencyField(token *int64) interface{} {
	if token == nil {
		return nil
	}
	return *token
}
