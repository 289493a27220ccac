package utils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/raushankrgupta/media-muse/models"
)

// maxImageBytes matches the API body limit.
const maxImageBytes = MaxRequestBodyBytes

// FetchImage loads a photo from a local path or an http(s) URL.
func FetchImage(ctx context.Context, pathOrURL string) (models.Photo, error) {
	if !strings.HasPrefix(pathOrURL, "http://") && !strings.HasPrefix(pathOrURL, "https://") {
		data, err := os.ReadFile(pathOrURL)
		if err != nil {
			return models.Photo{}, fmt.Errorf("failed to read image: %w", err)
		}
		return PhotoFromBytes(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pathOrURL, nil)
	if err != nil {
		return models.Photo{}, err
	}
	req.Header.Set("User-Agent", userAgent)

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return models.Photo{}, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Photo{}, fmt.Errorf("failed to fetch image, status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return models.Photo{}, fmt.Errorf("failed to read image body: %w", err)
	}
	if len(data) > maxImageBytes {
		return models.Photo{}, fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}
	return PhotoFromBytes(data)
}
