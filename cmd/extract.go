package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/unisima/ocr-extractor/internal/api"
	"github.com/unisima/ocr-extractor/internal/controller"
	"github.com/unisima/ocr-extractor/internal/images"
	"github.com/unisima/ocr-extractor/internal/models"
)

func newExtractCmd(opts *rootOptions) *cobra.Command {
	var cloud bool
	var save bool
	var outputDir string

	cmd := &cobra.Command{
		Use:   "extract FILE|URL...",
		Short: "Recognize images from the command line",
		Long: `Sends each image to the backend and prints the accumulated text.
Arguments are local files or http(s) URLs.

Images are processed one after another and merged the same way as in the web interface:
every image gets its own section, and repeating an image appends to its section.
With --save the text is stored on the backend and the resulting .txt is downloaded.`,
		Example: `  # Print text from two scans
  ocr-extractor extract page1.png page2.jpg

  # Handwriting, saved and downloaded to ./exports
  ocr-extractor extract --cloud --save --out ./exports notes.jpg`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			engine := controller.Local
			if cloud {
				engine = controller.Cloud
			}

			client := api.NewClient(cfg.APIBase, cfg.HTTPTimeout)
			return runExtract(cmd.Context(), client, cmd.OutOrStdout(), args, engine, save, outputDir)
		},
	}

	cmd.Flags().BoolVar(&cloud, "cloud", false, "Use the handwriting provider instead of the print-text engines")
	cmd.Flags().BoolVar(&save, "save", false, "Save the accumulated text on the backend and download it")
	cmd.Flags().StringVar(&outputDir, "out", ".", "Directory for the downloaded .txt when using --save")

	return cmd
}

type extractBackend interface {
	api.Recognizer
	api.Saver
	api.Downloader
}

func runExtract(ctx context.Context, backend extractBackend, out io.Writer, sources []string, engine controller.Engine, save bool, outputDir string) error {
	session := controller.New(backend, backend)
	defer session.Close()
	fetcher := images.NewFetcher()

	failures := 0
	for i, source := range sources {
		img, err := fetcher.Load(ctx, source)
		if err != nil {
			slog.Error("Skipping image", "source", source, "err", err)
			failures++
			continue
		}

		session.ChooseImage(img)
		err = session.Recognize(ctx, engine)
		status := session.Snapshot().Status
		slog.Info("Processed image", "progress", fmt.Sprintf("%d/%d", i+1, len(sources)), "name", img.Name, "status", status.String())
		if err != nil && !errors.Is(err, controller.ErrNoText) {
			failures++
		}
	}

	state := session.Snapshot()
	if _, err := fmt.Fprintln(out, state.Text); err != nil {
		return fmt.Errorf("failed to write text: %w", err)
	}

	if save {
		download, err := session.SaveAll(ctx)
		if err != nil {
			return fmt.Errorf("%s: %w", session.Snapshot().Status, err)
		}
		target, err := fetchDownload(ctx, backend, download, outputDir)
		if err != nil {
			return err
		}
		slog.Info("Saved text downloaded", "path", target, "mime_types", state.MIMETypes)
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d images failed", failures, len(sources))
	}
	return nil
}

func fetchDownload(ctx context.Context, backend api.Downloader, download *models.Download, outputDir string) (string, error) {
	body, _, err := backend.Download(ctx, download.Filename)
	if err != nil {
		return "", err
	}
	defer body.Close()

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	target := filepath.Join(outputDir, download.Filename)
	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", target, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, body); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", target, err)
	}
	return target, nil
}
