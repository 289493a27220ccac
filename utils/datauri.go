package utils

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/raushankrgupta/media-muse/models"
)

var (
	ErrMissingPhoto    = errors.New("photo is required")
	ErrInvalidDataURI  = errors.New("photo must be a base64 data URI with a MIME type")
	ErrUnsupportedType = errors.New("photo must be an image")
)

// ParseDataURI decodes 'data:<mimetype>;base64,<encoded_data>' into a Photo.
func ParseDataURI(dataURI string) (models.Photo, error) {
	dataURI = strings.TrimSpace(dataURI)
	if dataURI == "" {
		return models.Photo{}, ErrMissingPhoto
	}

	rest, ok := strings.CutPrefix(dataURI, "data:")
	if !ok {
		return models.Photo{}, ErrInvalidDataURI
	}
	meta, encoded, ok := strings.Cut(rest, ",")
	if !ok {
		return models.Photo{}, ErrInvalidDataURI
	}
	mimeType, ok := strings.CutSuffix(meta, ";base64")
	if !ok || mimeType == "" {
		return models.Photo{}, ErrInvalidDataURI
	}
	// Parameters such as ";charset=" are not meaningful for images.
	mimeType, _, _ = strings.Cut(mimeType, ";")
	mimeType = strings.ToLower(mimeType)
	if !strings.HasPrefix(mimeType, "image/") {
		return models.Photo{}, ErrUnsupportedType
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return models.Photo{}, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	if len(data) == 0 {
		return models.Photo{}, ErrMissingPhoto
	}

	return models.Photo{MIMEType: mimeType, Data: data}, nil
}

// PhotoFromBytes sniffs the MIME type of raw image bytes, as read from a file.
func PhotoFromBytes(data []byte) (models.Photo, error) {
	if len(data) == 0 {
		return models.Photo{}, ErrMissingPhoto
	}
	mimeType := http.DetectContentType(data)
	mimeType, _, _ = strings.Cut(mimeType, ";")
	if !strings.HasPrefix(mimeType, "image/") {
		return models.Photo{}, fmt.Errorf("%w: detected %s", ErrUnsupportedType, mimeType)
	}
	return models.Photo{MIMEType: mimeType, Data: data}, nil
}
