package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/raushankrgupta/media-muse/models"
	"github.com/raushankrgupta/media-muse/utils"
)

// MuseResponse carries both halves of a combined request.
type MuseResponse struct {
	Caption string                   `json:"caption"`
	Music   *models.SuggestionResult `json:"music"`
}

// generationError remembers which user-facing message applies to a failure.
type generationError struct {
	userMessage string
	err         error
}

func (e *generationError) Error() string { return e.err.Error() }
func (e *generationError) Unwrap() error { return e.err }

// MuseHandler generates the caption and the song for one photo concurrently.
func MuseHandler(captioner Captioner, resolver SongResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var logMessageBuilder strings.Builder
		defer func() {
			utils.FlushLogMessage(GetRequestIDFromContext(r.Context()), &logMessageBuilder)
		}()
		utils.AddToLogMessage(&logMessageBuilder, "[Muse API]")

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

		ctx, cancel := context.WithTimeout(r.Context(), generationTimeout)
		defer cancel()

		var resp MuseResponse
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			caption, err := captioner.GenerateCaption(gctx, suggestionReq.Photo)
			if err != nil {
				return &generationError{userMessage: CaptionErrorMessage, err: err}
			}
			resp.Caption = caption
			return nil
		})
		g.Go(func() error {
			result, err := resolver.Resolve(gctx, suggestionReq)
			if err != nil {
				return &generationError{userMessage: MusicErrorMessage, err: err}
			}
			result.EmbedURL = utils.SpotifyEmbedURL(result.URL)
			resp.Music = result
			return nil
		})

		if err := g.Wait(); err != nil {
			message := MusicErrorMessage
			var genErr *generationError
			if errors.As(err, &genErr) {
				message = genErr.userMessage
			}
			respondGenerationError(w, &logMessageBuilder, err, message)
			return
		}

		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Muse complete: song %q (%s)", resp.Music.Title, resp.Music.Outcome))
		utils.RespondJSON(w, http.StatusOK, resp)
	}
}
