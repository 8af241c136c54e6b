package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/unisima/ocr-extractor/internal/config"
)

type rootOptions struct {
	configPath string
	apiBase    string
	verbose    bool
}

// load resolves configuration with flags taking precedence over env and file
func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.apiBase != "" {
		cfg.APIBase = config.NormalizeBase(o.apiBase)
	}
	return cfg, nil
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "ocr-extractor",
		Short: "Image to text front end for a remote OCR backend",
		Long: `OCR Extractor turns images into editable text using a remote recognition backend.

Pick an image, run the print-text engines or the handwriting provider, edit the accumulated
text and save it as a .txt file through the backend.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			level := slog.LevelInfo
			if opts.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.apiBase, "api-base", "", "Backend base URL (overrides OCR_API_BASE)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose logging")

	// Add subcommands
	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newExtractCmd(opts))

	return cmd
}
