package suggest

import (
	"context"

	"github.com/raushankrgupta/media-muse/models"
)

// SongGenerator asks a generative model for one song title.
type SongGenerator interface {
	// SuggestTitle returns "" when the model produced no usable title.
	// A non-nil error means the model call itself failed.
	SuggestTitle(ctx context.Context, req models.SuggestionRequest) (string, error)
}

// Catalog resolves a free-text title to a canonical, linkable track.
type Catalog interface {
	// Search returns the top-ranked match, or nil when nothing matched.
	Search(ctx context.Context, query string) (*models.CatalogMatch, error)
}
