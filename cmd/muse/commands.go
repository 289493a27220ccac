package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/raushankrgupta/media-muse/config"
	"github.com/raushankrgupta/media-muse/location"
	"github.com/raushankrgupta/media-muse/models"
	"github.com/raushankrgupta/media-muse/suggest"
	"github.com/raushankrgupta/media-muse/utils"
)

type suggestOptions struct {
	location    string
	language    string
	description string
	fresh       bool
}

func newRootCommand() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:           "muse",
		Short:         "Caption a photo and find a song for it",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadConfig()
			level := config.LogLevel
			if verbose {
				level = "debug"
			} else if level == "info" {
				level = "warn"
			}
			utils.InitLogger(level, config.LogFormat)
			utils.Log.SetOutput(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every attempt")

	root.AddCommand(newSuggestCommand(), newCaptionCommand())
	return root
}

func newSuggestCommand() *cobra.Command {
	var opts suggestOptions
	cmd := &cobra.Command{
		Use:   "suggest <image path or URL>",
		Short: "Suggest a trending song for an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			photo, err := utils.FetchImage(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			req := models.SuggestionRequest{
				Photo:       photo,
				Description: opts.description,
				Locale:      location.WithLanguage(opts.location, opts.language),
			}
			if opts.fresh {
				ts := time.Now().UnixMilli()
				req.RecencyToken = &ts
			}

			ctx := cmd.Context()
			gemini, err := utils.NewGeminiClient(ctx, config.GeminiAPIKey, config.GeminiModel, utils.Log)
			if err != nil {
				return err
			}
			defer gemini.Close()

			catalog := utils.NewSpotifyCatalog(utils.SpotifyOptions{
				ClientID:     config.SpotifyClientID,
				ClientSecret: config.SpotifyClientSecret,
			}, utils.Log)

			result, err := suggest.NewResolver(gemini, catalog, utils.Log).Resolve(ctx, req)
			if err != nil {
				return fmt.Errorf("failed to suggest music: %w", err)
			}
			result.EmbedURL = utils.SpotifyEmbedURL(result.URL)

			renderSuggestion(cmd.OutOrStdout(), req.Locale, result)
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.location, "location", "l", "", "region, e.g. \"Tamil Nadu\"")
	cmd.Flags().StringVar(&opts.language, "language", "", "preferred song language, e.g. tamil")
	cmd.Flags().StringVarP(&opts.description, "description", "d", "", "optional description of the image")
	cmd.Flags().BoolVar(&opts.fresh, "fresh", false, "ask for a different song than last time")
	return cmd
}

func newCaptionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "caption <image path or URL>",
		Short: "Generate a caption for an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			photo, err := utils.FetchImage(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			gemini, err := utils.NewGeminiClient(ctx, config.GeminiAPIKey, config.GeminiModel, utils.Log)
			if err != nil {
				return err
			}
			defer gemini.Close()

			caption, err := gemini.GenerateCaption(ctx, photo)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), caption)
			return nil
		},
	}
}

func renderSuggestion(w io.Writer, locale string, result *models.SuggestionResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendRow(table.Row{"Song", result.Title})
	t.AppendRow(table.Row{"Spotify", result.URL})
	if result.EmbedURL != "" {
		t.AppendRow(table.Row{"Embed", result.EmbedURL})
	}
	if locale != "" {
		t.AppendRow(table.Row{"Locale", locale})
	}
	t.AppendRow(table.Row{"Outcome", fmt.Sprintf("%s after %d attempt(s)", result.Outcome, result.Attempts)})
	t.Render()
}
