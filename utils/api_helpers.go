package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// MaxRequestBodyBytes bounds JSON bodies, which carry base64 photos.
const MaxRequestBodyBytes = 10 << 20

// RespondJSON sends a JSON response with the given status code and payload.
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		Log.WithError(err).Error("Error encoding JSON response")
	}
}

// RespondError sends a JSON error response and records the message in the request log.
// If logger is nil, the message goes straight to Log.
func RespondError(w http.ResponseWriter, logger *strings.Builder, message string, status int) {
	if logger != nil {
		AddToLogMessage(logger, message)
	} else {
		Log.WithField("status", status).Warn(message)
	}
	RespondJSON(w, status, map[string]string{"error": message})
}

// DecodeJSONBody decodes a size-limited JSON request body into dst.
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("request body exceeds %d bytes", maxErr.Limit)
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// LatencyMiddleware logs the duration of each request
func LatencyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		Log.WithField("duration", time.Since(start).String()).
			Debugf("[LATENCY] %s %s", r.Method, r.URL.Path)
	})
}
