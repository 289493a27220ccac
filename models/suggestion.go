package models

// Photo is an uploaded image, decoded from its data URI.
type Photo struct {
	MIMEType string
	Data     []byte
}

// SuggestionRequest carries everything the song suggestion flow needs for one user action.
type SuggestionRequest struct {
	Photo       Photo
	Description string
	// RecencyToken varies the model output between calls for the same photo.
	RecencyToken *int64
	// Locale is free text such as "Kerala (malayalam songs)".
	Locale string
}

// CatalogMatch is the top search result for a candidate title.
type CatalogMatch struct {
	Title   string   `json:"title"`
	URL     string   `json:"url"`
	TrackID string   `json:"track_id,omitempty"`
	Artists []string `json:"artists,omitempty"`
}

// Outcome records whether a result came from the catalog or from the fallback policy.
type Outcome string

const (
	OutcomeMatched  Outcome = "matched"
	OutcomeFallback Outcome = "fallback"
)

// SuggestionResult is the song returned to the caller. URL is always set.
type SuggestionResult struct {
	Title    string  `json:"song_title"`
	URL      string  `json:"spotify_url"`
	EmbedURL string  `json:"embed_url,omitempty"`
	Outcome  Outcome `json:"outcome"`
	Attempts int     `json:"attempts"`
}
