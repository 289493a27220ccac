package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/raushankrgupta/media-muse/models"
)

const (
	SpotifyTokenURL   = "https://accounts.spotify.com/api/token"
	SpotifyAPIBaseURL = "https://api.spotify.com"
	SpotifyHomeURL    = "https://open.spotify.com"

	spotifyTimeout = 15 * time.Second
)

var spotifyTrackIDPattern = regexp.MustCompile(`/track/([a-zA-Z0-9]+)`)

// SpotifyOptions configures a SpotifyCatalog. Empty URLs use the public endpoints.
type SpotifyOptions struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	APIBaseURL   string
	Timeout      time.Duration
}

// SpotifyCatalog searches Spotify tracks with an app-level access token.
// The token is fetched through the client credentials grant and reused until it expires.
type SpotifyCatalog struct {
	client  *http.Client
	baseURL string
	log     logrus.FieldLogger
}

type spotifySearchResponse struct {
	Tracks struct {
		Items []spotifyTrack `json:"items"`
	} `json:"tracks"`
}

type spotifyTrack struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
}

// NewSpotifyCatalog creates a catalog client. It never contacts Spotify until the first search.
func NewSpotifyCatalog(opts SpotifyOptions, logger logrus.FieldLogger) *SpotifyCatalog {
	if opts.TokenURL == "" {
		opts.TokenURL = SpotifyTokenURL
	}
	if opts.APIBaseURL == "" {
		opts.APIBaseURL = SpotifyAPIBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = spotifyTimeout
	}

	creds := &clientcredentials.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		TokenURL:     opts.TokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	// The token exchange uses this client; the search client wraps it with the token source.
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: opts.Timeout})
	client := oauth2.NewClient(tokenCtx, creds.TokenSource(tokenCtx))
	client.Timeout = opts.Timeout

	return &SpotifyCatalog{
		client:  client,
		baseURL: strings.TrimSuffix(opts.APIBaseURL, "/"),
		log:     withComponent(logger, "spotify"),
	}
}

// Search returns the top track for query, or nil when Spotify has no result.
// Token and transport failures are returned as errors.
func (s *SpotifyCatalog) Search(ctx context.Context, query string) (*models.CatalogMatch, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/v1/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build spotify search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("spotify search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("spotify search returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload spotifySearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode spotify search response: %w", err)
	}

	if len(payload.Tracks.Items) == 0 {
		s.log.WithField("query", query).Debug("No tracks found")
		return nil, nil
	}

	track := payload.Tracks.Items[0]
	match := &models.CatalogMatch{
		Title:   track.Name,
		URL:     track.ExternalURLs.Spotify,
		TrackID: track.ID,
	}
	for _, a := range track.Artists {
		match.Artists = append(match.Artists, a.Name)
	}
	return match, nil
}

// SpotifyTrackID extracts the track id from an open.spotify.com track URL.
func SpotifyTrackID(spotifyURL string) string {
	m := spotifyTrackIDPattern.FindStringSubmatch(spotifyURL)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// SpotifyEmbedURL returns the embeddable player URL for a track URL, or "" for anything else.
func SpotifyEmbedURL(spotifyURL string) string {
	id := SpotifyTrackID(spotifyURL)
	if id == "" {
		return ""
	}
	return SpotifyHomeURL + "/embed/track/" + id
}
