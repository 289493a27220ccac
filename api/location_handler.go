package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/raushankrgupta/media-muse/location"
	"github.com/raushankrgupta/media-muse/models"
	"github.com/raushankrgupta/media-muse/utils"
)

// LocationResponse is the detected region plus its language options.
type LocationResponse struct {
	models.Location
	Error     string                  `json:"error,omitempty"`
	Languages []models.LanguageOption `json:"languages"`
}

// LocationHandler reverse geocodes ?lat=&lon= into a region label.
// A geocoding failure still answers 200 with the "India" fallback and an error message.
func LocationHandler(geocoder ReverseGeocoder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var logMessageBuilder strings.Builder
		defer func() {
			utils.FlushLogMessage(GetRequestIDFromContext(r.Context()), &logMessageBuilder)
		}()
		utils.AddToLogMessage(&logMessageBuilder, "[Location API]")

		lat, latErr := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
		lon, lonErr := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
		if latErr != nil || lonErr != nil || !utils.ValidCoordinates(lat, lon) {
			utils.RespondError(w, &logMessageBuilder, "lat and lon query parameters are required", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
		defer cancel()

		var resp LocationResponse
		addr, err := geocoder.ReverseGeocode(ctx, lat, lon)
		if err != nil {
			utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Reverse geocoding error: %v", err))
			resp.Location = models.Location{Region: location.India}
			resp.Error = "Could not determine location name"
		} else {
			resp.Location = location.Detect(*addr)
		}
		resp.Languages = location.LanguageOptions(resp.Region)

		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Detected location: %s", resp.Region))
		utils.RespondJSON(w, http.StatusOK, resp)
	}
}

// LanguagesHandler lists song languages for ?location=.
func LanguagesHandler(w http.ResponseWriter, r *http.Request) {
	region := strings.TrimSpace(r.URL.Query().Get("location"))
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"location":  region,
		"languages": location.LanguageOptions(region),
	})
}
