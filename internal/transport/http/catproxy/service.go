package catproxy

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"catgallery-server-go/internal/domain/catapi"
	"catgallery-server-go/internal/platform/errors"
	"catgallery-server-go/internal/platform/logging"
	httptransport "catgallery-server-go/internal/transport/http"
)

const (
	ImageErrorMessage   = "Erro ao buscar imagem"
	GalleryErrorMessage = "Erro ao buscar galeria"
)

// Upstream returns the raw search response for up to limit images.
type Upstream interface {
	FetchRaw(ctx context.Context, limit int) ([]byte, error)
}

// Service relays image searches to the upstream API.
type Service struct {
	upstream Upstream
	greeting string
	logger   *logging.Logger
}

func NewService(upstream Upstream, greeting string, logger *logging.Logger) (*Service, error) {
	if upstream == nil {
		return nil, errors.New(errors.KindConfig, "catproxy.new", "upstream client is required")
	}
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &Service{
		upstream: upstream,
		greeting: greeting,
		logger:   logger,
	}, nil
}

// Register mounts the greeting on the engine root and the image routes under /api.
func (s *Service) Register(router *httptransport.Router) {
	router.Engine.GET("/", s.handleRoot)
	router.API.GET("/cat", s.handleCat)
	router.API.GET("/cats", s.handleCats)

	s.logger.InfoTag("Proxy", "routes registered: /, /api/cat, /api/cats")
}

// handleRoot
// @Summary Liveness greeting
// @Tags Proxy
// @Produce plain
// @Success 200 {string} string "greeting"
// @Router / [get]
func (s *Service) handleRoot(c *gin.Context) {
	c.String(http.StatusOK, s.greeting)
}

// handleCat
// @Summary Random cat image
// @Tags Proxy
// @Produce json
// @Success 200 {array} catapi.Image
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /api/cat [get]
func (s *Service) handleCat(c *gin.Context) {
	s.relay(c, 0, ImageErrorMessage)
}

// handleCats
// @Summary Cat gallery
// @Tags Proxy
// @Produce json
// @Success 200 {array} catapi.Image
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /api/cats [get]
func (s *Service) handleCats(c *gin.Context) {
	s.relay(c, catapi.GallerySize, GalleryErrorMessage)
}

// relay forwards one search and copies the body back. The failure cause is
// logged only; callers always see the same message.
func (s *Service) relay(c *gin.Context, limit int, failure string) {
	body, err := s.upstream.FetchRaw(c.Request.Context(), limit)
	if err != nil {
		s.logger.ErrorTag("Proxy", "%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		_ = c.Error(err)
		httptransport.RespondError(c, http.StatusInternalServerError, failure)
		return
	}
	httptransport.RespondRawJSON(c, http.StatusOK, body)
}
