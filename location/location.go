// Package location turns a geocoded address into the region label and song
// languages offered to the user.
package location

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/raushankrgupta/media-muse/models"
)

const (
	SouthIndia = "South India"
	India      = "India"
	Global     = "Global"
)

var southIndianStates = []string{
	"Tamil Nadu",
	"Kerala",
	"Karnataka",
	"Andhra Pradesh",
	"Telangana",
	"Puducherry",
}

var labelOverrides = map[string]string{
	"korean":   "Korean (K-pop)",
	"japanese": "Japanese (J-pop)",
}

// Detect picks the region label for an address.
func Detect(addr models.Address) models.Location {
	state := strings.TrimSpace(addr.State)
	if state == "" {
		state = strings.TrimSpace(addr.Region)
	}
	country := strings.TrimSpace(addr.Country)

	loc := models.Location{State: state, Country: country}
	switch {
	case containsAny(state, southIndianStates):
		loc.Region = state
		loc.IsSouthIndia = true
	case country == India:
		loc.Region = state
		if loc.Region == "" {
			loc.Region = India
		}
	default:
		loc.Region = country
		if loc.Region == "" {
			loc.Region = Global
		}
	}
	return loc
}

// IsSouthIndia reports whether a region label refers to South India.
func IsSouthIndia(region string) bool {
	return strings.Contains(region, SouthIndia) || containsAny(region, southIndianStates)
}

// LanguageOptions lists the song languages for a region, preferred first.
func LanguageOptions(region string) []models.LanguageOption {
	var values []string
	switch {
	case strings.Contains(region, "Tamil Nadu"):
		values = []string{"tamil", "telugu", "english", "hindi"}
	case strings.Contains(region, "Kerala"):
		values = []string{"malayalam", "tamil", "english", "hindi"}
	case strings.Contains(region, "Karnataka"):
		values = []string{"kannada", "tamil", "english", "hindi"}
	case strings.Contains(region, "Andhra Pradesh"), strings.Contains(region, "Telangana"):
		values = []string{"telugu", "tamil", "english", "hindi"}
	case IsSouthIndia(region):
		values = []string{"tamil", "telugu", "malayalam", "kannada", "english", "hindi"}
	case strings.Contains(region, India):
		values = []string{"hindi", "english", "tamil", "telugu", "punjabi", "bengali"}
	default:
		values = []string{"english", "spanish", "french", "korean", "japanese"}
	}

	opts := make([]models.LanguageOption, 0, len(values))
	for _, v := range values {
		opts = append(opts, models.LanguageOption{Value: v, Label: Label(v)})
	}
	return opts
}

// Label is the display name for a language value.
func Label(value string) string {
	if l, ok := labelOverrides[value]; ok {
		return l
	}
	// Casers carry state, so one is built per call.
	return cases.Title(language.English).String(value)
}

// WithLanguage appends a language directive to a region: "Kerala (malayalam songs)".
func WithLanguage(region, lang string) string {
	region = strings.TrimSpace(region)
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		return region
	}
	if region == "" {
		return "(" + lang + " songs)"
	}
	return region + " (" + lang + " songs)"
}

func containsAny(s string, candidates []string) bool {
	for _, c := range candidates {
		if strings.Contains(s, c) {
			return true
		}
	}
	return false
}
