// Command catgallery-snapshot renders the gallery page after clicking its
// triggers, fetching images straight from the public API.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"catgallery-server-go/internal/domain/catapi"
	"catgallery-server-go/internal/gallery"
	"catgallery-server-go/internal/platform/config"
	"catgallery-server-go/internal/platform/logging"
	"catgallery-server-go/web"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML config file")
	out := flag.String("out", "-", "output file, - for stdout")
	hero := flag.Bool("hero", true, "click the hero trigger")
	grid := flag.Bool("gallery", true, "click the gallery trigger")
	timeout := flag.Duration("timeout", 15*time.Second, "overall deadline for the fetches")
	flag.Parse()

	if err := run(*configPath, *out, *hero, *grid, *timeout); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "catgallery-snapshot failed: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, out string, hero, grid bool, timeout time.Duration) error {
	result, err := config.NewLoader().WithPath(configPath).Load()
	if err != nil {
		return err
	}
	cfg := result.Config

	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Console: os.Stderr})
	if err != nil {
		return err
	}
	defer logger.Close()

	client := catapi.NewClient(catapi.Options{
		BaseURL:    cfg.Upstream.BaseURL,
		SearchPath: cfg.Upstream.SearchPath,
		APIKey:     cfg.Upstream.APIKey,
		UserAgent:  cfg.Upstream.UserAgent,
		Timeout:    cfg.Upstream.Timeout,
		Logger:     logger,
	})

	var buf bytes.Buffer
	if err := snapshot(context.Background(), client, logger, &buf, hero, grid, timeout); err != nil {
		return err
	}

	if out == "-" {
		_, err = os.Stdout.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return err
	}
	logger.InfoTag("Snapshot", "page written to %s", out)
	return nil
}

// snapshot clicks the selected triggers concurrently, waits for both and
// renders the page. Fetch failures only leave their part of the page as is.
func snapshot(ctx context.Context, source gallery.ImageSource, logger *logging.Logger, w io.Writer, hero, grid bool, timeout time.Duration) error {
	page, err := fs.ReadFile(web.Assets(), web.IndexFile)
	if err != nil {
		return err
	}
	doc, err := gallery.ParseHTML(bytes.NewReader(page))
	if err != nil {
		return err
	}
	g := gallery.New(doc, source, logger)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var pending []<-chan struct{}
	if hero {
		pending = append(pending, g.Click(ctx, gallery.HeroTriggerID))
	}
	if grid {
		pending = append(pending, g.Click(ctx, gallery.GalleryTriggerID))
	}
	for _, done := range pending {
		<-done
	}

	return doc.Render(w)
}
