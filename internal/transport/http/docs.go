package httptransport

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/swaggo/swag"

	_ "catgallery-server-go/docs"
	"catgallery-server-go/internal/platform/logging"
)

const scalarHTML = `<!DOCTYPE html>
<html lang="pt-BR">
	<head>
		<meta charset="utf-8" />
		<title>Cat Gallery API Reference</title>
		<meta name="viewport" content="width=device-width, initial-scale=1" />
	</head>
	<body>
		<script
			id="api-reference"
			data-url="/openapi.json"
			data-layout="modern"
			src="https://cdn.jsdelivr.net/npm/@scalar/api-reference"
		></script>
	</body>
</html>`

// RegisterDocs exposes the registered OpenAPI document and a viewer for it.
func RegisterDocs(router *Router, logger *logging.Logger) {
	router.Engine.GET("/openapi.json", func(c *gin.Context) {
		doc, err := swag.ReadDoc()
		if err != nil {
			logger.ErrorTag("HTTP", "read OpenAPI document failed: %v", err)
			RespondError(c, http.StatusInternalServerError, "failed to generate openapi spec")
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
	})

	router.Engine.GET("/docs", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(scalarHTML))
	})
}
