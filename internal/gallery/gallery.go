package gallery

import (
	"context"
	"sort"

	"catgallery-server-go/internal/domain/catapi"
	"catgallery-server-go/internal/platform/errors"
	"catgallery-server-go/internal/platform/logging"
)

// Element ids the page must provide.
const (
	HeroTriggerID      = "heroCat"
	HeroImageID        = "heroCatImage"
	GalleryTriggerID   = "loadGallery"
	GalleryContainerID = "galleryContainer"
)

// Document is the part of a page the gallery writes to.
type Document interface {
	SetImageSource(id, src string) error
	ReplaceImages(containerID string, sources []string) error
}

// ImageSource searches the image API. The gallery talks to the public API
// itself; it does not go through the proxy service.
type ImageSource interface {
	Search(ctx context.Context, limit int) ([]catapi.Image, error)
}

// Gallery wires the two page triggers to image searches.
type Gallery struct {
	doc      Document
	source   ImageSource
	logger   *logging.Logger
	handlers map[string]func(context.Context) error
}

func New(doc Document, source ImageSource, logger *logging.Logger) *Gallery {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	g := &Gallery{doc: doc, source: source, logger: logger}
	g.handlers = map[string]func(context.Context) error{
		HeroTriggerID:    g.LoadHero,
		GalleryTriggerID: g.LoadGallery,
	}
	return g
}

// Triggers lists the element ids Click understands.
func (g *Gallery) Triggers() []string {
	ids := make([]string, 0, len(g.handlers))
	for id := range g.handlers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Click runs the handler bound to triggerID on its own goroutine and returns a
// channel closed when it finishes. Clicks are neither debounced nor cancelled
// by later clicks; whichever fetch completes last writes the page last.
func (g *Gallery) Click(ctx context.Context, triggerID string) <-chan struct{} {
	done := make(chan struct{})
	handler, ok := g.handlers[triggerID]
	if !ok {
		g.logger.WarnTag("Gallery", "no handler for #%s", triggerID)
		close(done)
		return done
	}

	go func() {
		defer close(done)
		_ = handler(ctx)
	}()
	return done
}

// LoadHero points the hero image at one random picture. Failures are logged
// and leave the page as it was.
func (g *Gallery) LoadHero(ctx context.Context) error {
	images, err := g.source.Search(ctx, 0)
	if err == nil && len(images) == 0 {
		err = errors.New(errors.KindUpstream, "gallery.hero", "empty image list")
	}
	if err == nil {
		err = g.doc.SetImageSource(HeroImageID, images[0].URL)
	}
	if err != nil {
		g.logger.ErrorTag("Gallery", "Erro ao carregar imagem: %v", err)
		return err
	}

	g.logger.DebugTag("Gallery", "hero image set to %s", images[0].URL)
	return nil
}

// LoadGallery replaces the gallery contents with a fresh set of pictures.
// On failure the previous contents stay.
func (g *Gallery) LoadGallery(ctx context.Context) error {
	images, err := g.source.Search(ctx, catapi.GallerySize)
	if err == nil {
		err = g.doc.ReplaceImages(GalleryContainerID, catapi.URLs(images))
	}
	if err != nil {
		g.logger.ErrorTag("Gallery", "Erro ao carregar galeria: %v", err)
		return err
	}

	g.logger.DebugTag("Gallery", "gallery loaded with %d images", len(images))
	return nil
}
