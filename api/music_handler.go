package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/raushankrgupta/media-muse/location"
	"github.com/raushankrgupta/media-muse/models"
	"github.com/raushankrgupta/media-muse/utils"
)

const (
	MusicErrorMessage   = "Failed to suggest music. Please try again."
	CaptionErrorMessage = "Failed to generate caption. Please try again."
	QuotaErrorMessage   = "Quota exceeded. Please try again later."

	// generationTimeout bounds one user action, all model attempts included.
	generationTimeout = 2 * time.Minute
)

// MusicRequest represents the request body for a song suggestion
type MusicRequest struct {
	PhotoDataURI string `json:"photo_data_uri"`
	Description  string `json:"description,omitempty"`
	Location     string `json:"location,omitempty"`
	// Language is combined with Location as "<location> (<language> songs)".
	Language  string `json:"language,omitempty"`
	Timestamp *int64 `json:"timestamp,omitempty"`
}

func (m MusicRequest) toSuggestionRequest() (models.SuggestionRequest, error) {
	photo, err := utils.ParseDataURI(m.PhotoDataURI)
	if err != nil {
		return models.SuggestionRequest{}, err
	}
	return models.SuggestionRequest{
		Photo:        photo,
		Description:  strings.TrimSpace(m.Description),
		RecencyToken: m.Timestamp,
		Locale:       location.WithLanguage(m.Location, m.Language),
	}, nil
}

// MusicSuggestionHandler suggests one song for the uploaded photo
func MusicSuggestionHandler(resolver SongResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var logMessageBuilder strings.Builder
		defer func() {
			utils.FlushLogMessage(GetRequestIDFromContext(r.Context()), &logMessageBuilder)
		}()
		utils.AddToLogMessage(&logMessageBuilder, "[Music Suggestion API]")

		var req MusicRequest
		if err := utils.DecodeJSONBody(w, r, &req); err != nil {
			utils.RespondError(w, &logMessageBuilder, err.Error(), http.StatusBadRequest)
			return
		}

		suggestionReq, err := req.toSuggestionRequest()
		if err != nil {
			utils.RespondError(w, &logMessageBuilder, err.Error(), http.StatusBadRequest)
			return
		}
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Suggestion Request: Locale=%q, MIME=%s, Size=%d", suggestionReq.Locale, suggestionReq.Photo.MIMEType, len(suggestionReq.Photo.Data)))

		ctx, cancel := context.WithTimeout(r.Context(), generationTimeout)
		defer cancel()

		result, err := resolver.Resolve(ctx, suggestionReq)
		if err != nil {
			respondGenerationError(w, &logMessageBuilder, err, MusicErrorMessage)
			return
		}
		result.EmbedURL = utils.SpotifyEmbedURL(result.URL)

		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Suggested %q (%s after %d attempts)", result.Title, result.Outcome, result.Attempts))
		utils.RespondJSON(w, http.StatusOK, result)
	}
}

// respondGenerationError hides upstream details behind the user-facing retry message.
func respondGenerationError(w http.ResponseWriter, logMessageBuilder *strings.Builder, err error, userMessage string) {
	utils.AddToLogMessage(logMessageBuilder, fmt.Sprintf("Generation failed: %v", err))
	if utils.IsQuotaError(err) {
		utils.RespondError(w, logMessageBuilder, QuotaErrorMessage, http.StatusTooManyRequests)
		return
	}
	utils.RespondError(w, logMessageBuilder, userMessage, http.StatusInternalServerError)
}
