package suggest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raushankrgupta/media-muse/models"
)

// scriptedGenerator returns titles in order; the last entry repeats.
type scriptedGenerator struct {
	mu      sync.Mutex
	titles  []string
	errAt   map[int]error
	calls   int
	prompts []models.SuggestionRequest
}

func (g *scriptedGenerator) SuggestTitle(_ context.Context, req models.SuggestionRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.prompts = append(g.prompts, req)
	if err, ok := g.errAt[g.calls]; ok {
		return "", err
	}
	if len(g.titles) == 0 {
		return "", nil
	}
	idx := g.calls - 1
	if idx >= len(g.titles) {
		idx = len(g.titles) - 1
	}
	return g.titles[idx], nil
}

// scriptedCatalog matches only the titles in matches; errors on lookups listed in errAt.
type scriptedCatalog struct {
	mu      sync.Mutex
	matches map[string]*models.CatalogMatch
	errAt   map[int]error
	calls   int
	queries []string
}

func (c *scriptedCatalog) Search(_ context.Context, query string) (*models.CatalogMatch, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.queries = append(c.queries, query)
	if err, ok := c.errAt[c.calls]; ok {
		return nil, err
	}
	return c.matches[query], nil
}

func newRequest() models.SuggestionRequest {
	return models.SuggestionRequest{
		Photo:  models.Photo{MIMEType: "image/jpeg", Data: []byte{0xff, 0xd8}},
		Locale: "Kerala (malayalam songs)",
	}
}

func TestResolve_FirstAttemptMatch(t *testing.T) {
	gen := &scriptedGenerator{titles: []string{"Butta Bomma - Armaan Malik"}}
	cat := &scriptedCatalog{matches: map[string]*models.CatalogMatch{
		"Butta Bomma - Armaan Malik": {Title: "Butta Bomma", URL: "https://open.spotify.com/track/abc123"},
	}}

	res, err := NewResolver(gen, cat, nil).Resolve(context.Background(), newRequest())
	require.NoError(t, err)

	assert.Equal(t, "Butta Bomma", res.Title)
	assert.Equal(t, "https://open.spotify.com/track/abc123", res.URL)
	assert.Equal(t, models.OutcomeMatched, res.Outcome)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, 1, cat.calls)
}

func TestResolve_SecondAttemptMatchUsesCatalogTitle(t *testing.T) {
	gen := &scriptedGenerator{titles: []string{"Nonexistent Song", "kaavaalaa anirudh"}}
	cat := &scriptedCatalog{matches: map[string]*models.CatalogMatch{
		"kaavaalaa anirudh": {Title: "Kaavaalaa", URL: "https://open.spotify.com/track/k4v"},
	}}

	res, err := NewResolver(gen, cat, nil).Resolve(context.Background(), newRequest())
	require.NoError(t, err)

	assert.Equal(t, "Kaavaalaa", res.Title, "catalog title supersedes the model text")
	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, 2, gen.calls, "loop stops at the first match")
	assert.Equal(t, 2, cat.calls)
}

func TestResolve_ThirdAttemptMatchStopsLoop(t *testing.T) {
	gen := &scriptedGenerator{titles: []string{"a", "b", "c"}}
	cat := &scriptedCatalog{matches: map[string]*models.CatalogMatch{
		"c": {Title: "C", URL: "https://open.spotify.com/track/c"},
	}}

	res, err := NewResolver(gen, cat, nil).Resolve(context.Background(), newRequest())
	require.NoError(t, err)

	assert.Equal(t, 3, gen.calls)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, models.OutcomeMatched, res.Outcome)
}

func TestResolve_FinalAttemptMatch(t *testing.T) {
	gen := &scriptedGenerator{titles: []string{"a", "b", "c", "d"}}
	cat := &scriptedCatalog{matches: map[string]*models.CatalogMatch{
		"d": {Title: "Delta", URL: "https://open.spotify.com/track/d"},
	}}

	res, err := NewResolver(gen, cat, nil).Resolve(context.Background(), newRequest())
	require.NoError(t, err)

	assert.Equal(t, "Delta", res.Title)
	assert.Equal(t, models.OutcomeMatched, res.Outcome)
	assert.Equal(t, MaxAttempts, res.Attempts)
	assert.Equal(t, 4, gen.calls)
	assert.Equal(t, 4, cat.calls)
}

func TestResolve_NeverMatchedFallsBackToLastTitle(t *testing.T) {
	gen := &scriptedGenerator{titles: []string{"first", "second", "third", "fourth"}}
	cat := &scriptedCatalog{}

	res, err := NewResolver(gen, cat, nil).Resolve(context.Background(), newRequest())
	require.NoError(t, err)

	assert.Equal(t, "fourth", res.Title)
	assert.Equal(t, FallbackURL, res.URL)
	assert.Equal(t, models.OutcomeFallback, res.Outcome)
	assert.Equal(t, 4, gen.calls)
	assert.Equal(t, 4, cat.calls)
}

func TestResolve_FinalAttemptWithoutTitleKeepsEarlierTitle(t *testing.T) {
	gen := &scriptedGenerator{titles: []string{"first", "second", "third", "  "}}
	cat := &scriptedCatalog{}

	res, err := NewResolver(gen, cat, nil).Resolve(context.Background(), newRequest())
	require.NoError(t, err)

	assert.Equal(t, "third", res.Title)
	assert.Equal(t, FallbackURL, res.URL)
	assert.Equal(t, 3, cat.calls, "no lookup for an empty candidate")
}

func TestResolve_NoTitleEverUsesPlaceholder(t *testing.T) {
	gen := &scriptedGenerator{}
	cat := &scriptedCatalog{}

	res, err := NewResolver(gen, cat, nil).Resolve(context.Background(), newRequest())
	require.NoError(t, err)

	assert.Equal(t, PlaceholderTitle, res.Title)
	assert.Equal(t, FallbackURL, res.URL)
	assert.Equal(t, 4, gen.calls)
	assert.Zero(t, cat.calls)
}

func TestResolve_CatalogAuthFailureIsSwallowed(t *testing.T) {
	gen := &scriptedGenerator{titles: []string{"one", "two"}}
	cat := &scriptedCatalog{
		errAt: map[int]error{1: errors.New("oauth2: cannot fetch token: 401 Unauthorized")},
		matches: map[string]*models.CatalogMatch{
			"one": {Title: "One", URL: "https://open.spotify.com/track/1"},
			"two": {Title: "Two", URL: "https://open.spotify.com/track/2"},
		},
	}

	res, err := NewResolver(gen, cat, nil).Resolve(context.Background(), newRequest())
	require.NoError(t, err)

	assert.Equal(t, "Two", res.Title)
	assert.Equal(t, 2, gen.calls, "attempt 2 still runs after an auth failure")
	assert.Equal(t, 2, cat.calls, "no retry within the failed attempt")
}

func TestResolve_InvalidMatchURLCountsAsNoMatch(t *testing.T) {
	gen := &scriptedGenerator{titles: []string{"one", "two"}}
	cat := &scriptedCatalog{matches: map[string]*models.CatalogMatch{
		"one": {Title: "One", URL: "not a url"},
		"two": {Title: "Two", URL: "https://open.spotify.com/track/2"},
	}}

	res, err := NewResolver(gen, cat, nil).Resolve(context.Background(), newRequest())
	require.NoError(t, err)
	assert.Equal(t, "Two", res.Title)
	assert.Equal(t, 2, res.Attempts)
}

func TestResolve_EmptyCatalogTitleKeepsCandidate(t *testing.T) {
	gen := &scriptedGenerator{titles: []string{"Oo Antava - Indravathi Chauhan"}}
	cat := &scriptedCatalog{matches: map[string]*models.CatalogMatch{
		"Oo Antava - Indravathi Chauhan": {URL: "https://open.spotify.com/track/oo"},
	}}

	res, err := NewResolver(gen, cat, nil).Resolve(context.Background(), newRequest())
	require.NoError(t, err)
	assert.Equal(t, "Oo Antava - Indravathi Chauhan", res.Title)
}

func TestResolve_GeneratorFailurePropagates(t *testing.T) {
	upstream := errors.New("rpc error: code = Unavailable")

	t.Run("normal attempt", func(t *testing.T) {
		gen := &scriptedGenerator{titles: []string{"a"}, errAt: map[int]error{2: upstream}}
		cat := &scriptedCatalog{}

		res, err := NewResolver(gen, cat, nil).Resolve(context.Background(), newRequest())
		require.Error(t, err)
		assert.ErrorIs(t, err, upstream)
		assert.Nil(t, res)
		assert.Equal(t, 2, gen.calls)
	})

	t.Run("final attempt", func(t *testing.T) {
		gen := &scriptedGenerator{titles: []string{"a"}, errAt: map[int]error{4: upstream}}
		cat := &scriptedCatalog{}

		res, err := NewResolver(gen, cat, nil).Resolve(context.Background(), newRequest())
		assert.ErrorIs(t, err, upstream)
		assert.Nil(t, res)
		assert.Equal(t, 3, cat.calls)
	})
}

func TestResolve_PassesRequestThrough(t *testing.T) {
	token := int64(1718000000000)
	req := newRequest()
	req.RecencyToken = &token
	req.Description = "sunset at the beach"

	gen := &scriptedGenerator{titles: []string{"x"}}
	cat := &scriptedCatalog{matches: map[string]*models.CatalogMatch{
		"x": {Title: "X", URL: "https://open.spotify.com/track/x"},
	}}

	_, err := NewResolver(gen, cat, nil).Resolve(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, gen.prompts, 1)
	assert.Equal(t, "Kerala (malayalam songs)", gen.prompts[0].Locale)
	assert.Equal(t, "sunset at the beach", gen.prompts[0].Description)
	require.NotNil(t, gen.prompts[0].RecencyToken)
	assert.Equal(t, token, *gen.prompts[0].RecencyToken)
	assert.Equal(t, []string{"x"}, cat.queries)
}

// descriptionGenerator echoes the description so each request has its own titles.
type descriptionGenerator struct{}

func (descriptionGenerator) SuggestTitle(_ context.Context, req models.SuggestionRequest) (string, error) {
	return "song for " + req.Description, nil
}

type prefixCatalog struct{}

func (prefixCatalog) Search(_ context.Context, query string) (*models.CatalogMatch, error) {
	if strings.HasSuffix(query, "-miss") {
		return nil, nil
	}
	return &models.CatalogMatch{Title: strings.ToUpper(query), URL: "https://open.spotify.com/track/" + strings.ReplaceAll(query, " ", "")}, nil
}

func TestResolve_ConcurrentRequestsAreIndependent(t *testing.T) {
	resolver := NewResolver(descriptionGenerator{}, prefixCatalog{}, nil)

	const n = 32
	results := make([]*models.SuggestionResult, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := newRequest()
			req.Description = fmt.Sprintf("photo-%d", i)
			if i%2 == 1 {
				req.Description += "-miss"
			}
			results[i], errs[i] = resolver.Resolve(context.Background(), req)
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		if i%2 == 1 {
			assert.Equal(t, fmt.Sprintf("song for photo-%d-miss", i), results[i].Title)
			assert.Equal(t, FallbackURL, results[i].URL)
			assert.Equal(t, MaxAttempts, results[i].Attempts)
			continue
		}
		assert.Equal(t, strings.ToUpper(fmt.Sprintf("song for photo-%d", i)), results[i].Title)
		assert.Equal(t, 1, results[i].Attempts)
	}
}
