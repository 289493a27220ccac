package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/raushankrgupta/media-muse/utils"
)

// CaptionRequest represents the request body for caption generation
type CaptionRequest struct {
	PhotoDataURI string `json:"photo_data_uri"`
}

// CaptionHandler generates a caption for the uploaded photo
func CaptionHandler(captioner Captioner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var logMessageBuilder strings.Builder
		defer func() {
			utils.FlushLogMessage(GetRequestIDFromContext(r.Context()), &logMessageBuilder)
		}()
		utils.AddToLogMessage(&logMessageBuilder, "[Caption API]")

		var req CaptionRequest
		if err := utils.DecodeJSONBody(w, r, &req); err != nil {
			utils.RespondError(w, &logMessageBuilder, err.Error(), http.StatusBadRequest)
			return
		}

		photo, err := utils.ParseDataURI(req.PhotoDataURI)
		if err != nil {
			utils.RespondError(w, &logMessageBuilder, err.Error(), http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), generationTimeout)
		defer cancel()

		caption, err := captioner.GenerateCaption(ctx, photo)
		if err != nil {
			respondGenerationError(w, &logMessageBuilder, err, CaptionErrorMessage)
			return
		}

		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Caption generated (%d chars)", len(caption)))
		utils.RespondJSON(w, http.StatusOK, map[string]string{"caption": caption})
	}
}
