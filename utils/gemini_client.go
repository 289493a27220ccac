package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"text/template"

	"github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/raushankrgupta/media-muse/models"
)

const (
	// DefaultTemperature is used when the caller did not ask for a fresh suggestion.
	DefaultTemperature float32 = 1.0
	// FreshTemperature pushes the model away from repeating earlier picks.
	FreshTemperature float32 = 1.8
	captionTemperature float32 = 0.9
)

var songTitleSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"songTitle": {
			Type:        genai.TypeString,
			Description: "The title of the suggested song, formatted as \"Song Title - Artist Name\".",
		},
	},
	Required: []string{"songTitle"},
}

var captionSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"caption": {
			Type:        genai.TypeString,
			Description: "A short, engaging caption for the image.",
		},
	},
	Required: []string{"caption"},
}

var songPromptTemplate = template.Must(template.New("song").Parse(
	`You are an AI assistant that suggests trending songs for images based on current online trends and user location preferences.

Based on the image (and the optional description), suggest ONE suitable trending song that fits the mood or theme of the image.
{{if .Location}}
LOCATION PREFERENCE: The user is from {{.Location}}.

LANGUAGE & REGIONAL PRIORITY:
- If the location contains a language preference in parentheses (e.g. "Tamil Nadu (tamil songs)", "Kerala (malayalam songs)"), you MUST suggest a song in that language, even if the region suggests otherwise.
- Telugu: Tollywood hits, composers such as Devi Sri Prasad, Thaman S and M.M. Keeravani.
- Tamil: Kollywood hits and indie Tamil artists, composers such as A.R. Rahman, Anirudh Ravichander and Yuvan Shankar Raja.
- Malayalam: Mollywood hits, composers such as Gopi Sundar, Sushin Shyam and Bijibal.
- Kannada: Sandalwood hits, composers such as V. Harikrishna and Arjun Janya.
- Hindi: Bollywood hits and indie Hindi artists.
- English: international pop, rock, indie and trending English music.
- A South Indian region WITHOUT a language preference should get South Indian songs in any of Tamil, Telugu, Malayalam or Kannada.
- Any other region should get songs popular in that region.
{{else}}
No location is specified. Give diverse recommendations, including South Indian songs along with other regional and international music.
{{end}}
{{- if .Timestamp}}
VARIETY REQUIREMENT: This is call number {{.Timestamp}}. Suggest a COMPLETELY DIFFERENT song than any previous suggestion for this image.
Vary the mood, genre, era, artist and film industry between calls.
{{end}}
Make sure the song is likely to be available on Spotify. Reply with the song title and artist name in the format "Song Title - Artist Name".
{{- if .Description}}

Description: {{.Description}}
{{- end}}
`))

type songPromptData struct {
	Location    string
	Timestamp   string
	Description string
}

// BuildSongPrompt renders the text half of the song prompt. The locale is embedded verbatim.
func BuildSongPrompt(req models.SuggestionRequest) (string, error) {
	data := songPromptData{
		Location:    strings.TrimSpace(req.Locale),
		Description: strings.TrimSpace(req.Description),
	}
	if req.RecencyToken != nil {
		data.Timestamp = strconv.FormatInt(*req.RecencyToken, 10)
	}

	var buf bytes.Buffer
	if err := songPromptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render song prompt: %w", err)
	}
	return buf.String(), nil
}

// SongTemperature picks the sampling temperature for a request.
func SongTemperature(req models.SuggestionRequest) float32 {
	if req.RecencyToken != nil {
		return FreshTemperature
	}
	return DefaultTemperature
}

// GeminiClient wraps a Gemini client for song and caption generation.
type GeminiClient struct {
	client *genai.Client
	model  string
	log    logrus.FieldLogger
}

// NewGeminiClient creates a Gemini client for the given model name. A nil logger discards output.
func NewGeminiClient(ctx context.Context, apiKey, model string, logger logrus.FieldLogger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		model:  model,
		log:    withComponent(logger, "gemini"),
	}, nil
}

// Close releases the underlying connection.
func (g *GeminiClient) Close() error {
	return g.client.Close()
}

// SuggestTitle asks the model for one song title. A reply without a usable
// songTitle field yields "" and no error.
func (g *GeminiClient) SuggestTitle(ctx context.Context, req models.SuggestionRequest) (string, error) {
	prompt, err := BuildSongPrompt(req)
	if err != nil {
		return "", err
	}

	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(SongTemperature(req))
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = songTitleSchema

	resp, err := model.GenerateContent(ctx,
		genai.Text(prompt),
		genai.Blob{MIMEType: req.Photo.MIMEType, Data: req.Photo.Data},
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate song suggestion: %w", err)
	}

	raw := responseText(resp)
	title := ParseSongTitle(raw)
	if title == "" {
		g.log.WithField("raw", raw).Debug("Response had no songTitle")
	}
	return title, nil
}

// GenerateCaption writes a short caption for the photo.
func (g *GeminiClient) GenerateCaption(ctx context.Context, photo models.Photo) (string, error) {
	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(captionTemperature)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = captionSchema

	prompt := `You are a social media expert. Write one short, engaging caption for this image.
Capture its mood and subject. You may add up to three relevant hashtags at the end.`

	resp, err := model.GenerateContent(ctx,
		genai.Text(prompt),
		genai.Blob{MIMEType: photo.MIMEType, Data: photo.Data},
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate caption: %w", err)
	}

	var out struct {
		Caption string `json:"caption"`
	}
	if err := decodeModelJSON(responseText(resp), &out); err != nil || strings.TrimSpace(out.Caption) == "" {
		return "", fmt.Errorf("no caption generated")
	}
	return strings.TrimSpace(out.Caption), nil
}

// ParseSongTitle extracts songTitle from a JSON reply. Anything else yields "".
func ParseSongTitle(raw string) string {
	var out struct {
		SongTitle string `json:"songTitle"`
	}
	if err := decodeModelJSON(raw, &out); err != nil {
		return ""
	}
	return strings.TrimSpace(out.SongTitle)
}

// IsQuotaError reports whether err is the model rejecting a request for rate or quota reasons.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota")
}

func decodeModelJSON(raw string, dst interface{}) error {
	raw = strings.TrimSpace(raw)
	// Some models wrap JSON in a markdown fence despite the response MIME type.
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return errors.New("empty response")
	}
	return json.Unmarshal([]byte(raw), dst)
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
		if sb.Len() > 0 {
			break
		}
	}
	return sb.String()
}
