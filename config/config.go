package config

import (
	"errors"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	Port                string
	AllowedOrigin       string
	GeminiAPIKey        string
	GeminiModel         string
	SpotifyClientID     string
	SpotifyClientSecret string
	LogLevel            string
	LogFormat           string
	RateLimitRPS        float64
	RateLimitBurst      int
	// TrustProxy honours X-Forwarded-For and X-Real-IP for client addresses.
	TrustProxy bool
)

// LoadConfig loads environment variables from the .env file, then layers an
// optional config.yaml underneath the process environment.
func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using default values or system environment variables")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Printf("Error reading config file, ignoring it: %v", err)
		}
	}

	Port = v.GetString("PORT")
	AllowedOrigin = v.GetString("ALLOWED_ORIGIN")
	GeminiAPIKey = v.GetString("GEMINI_API_KEY")
	GeminiModel = v.GetString("GEMINI_MODEL")
	SpotifyClientID = v.GetString("SPOTIFY_CLIENT_ID")
	SpotifyClientSecret = v.GetString("SPOTIFY_CLIENT_SECRET")
	LogLevel = v.GetString("LOG_LEVEL")
	LogFormat = v.GetString("LOG_FORMAT")
	RateLimitRPS = v.GetFloat64("RATE_LIMIT_RPS")
	RateLimitBurst = v.GetInt("RATE_LIMIT_BURST")
	TrustProxy = v.GetBool("TRUST_PROXY")

	if SpotifyClientID == "" || SpotifyClientSecret == "" {
		log.Println("SPOTIFY_CLIENT_ID or SPOTIFY_CLIENT_SECRET is not set, catalog lookups will fail")
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ALLOWED_ORIGIN", "*")
	v.SetDefault("GEMINI_MODEL", "gemini-2.0-flash")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("RATE_LIMIT_RPS", 2.0)
	v.SetDefault("RATE_LIMIT_BURST", 5)
	v.SetDefault("TRUST_PROXY", false)
	// Registered so AutomaticEnv picks them up through Unmarshal-style lookups.
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("SPOTIFY_CLIENT_ID", "")
	v.SetDefault("SPOTIFY_CLIENT_SECRET", "")
}
