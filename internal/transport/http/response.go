package httptransport

import "github.com/gin-gonic/gin"

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RespondError writes {"error": message}.
func RespondError(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, ErrorResponse{Error: message})
}

// RespondRawJSON writes an already encoded JSON document unchanged.
func RespondRawJSON(c *gin.Context, httpStatus int, body []byte) {
	c.Data(httpStatus, "application/json; charset=utf-8", body)
}
