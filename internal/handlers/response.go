package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/0unveiled/backend/internal/apperr"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": payload})
}

func respondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": payload})
}

// respondError maps service errors onto the envelope. Internal causes are not
// echoed to clients; the message comes from the apperr layer only.
func respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)

	message := "internal server error"
	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		message = appErr.Message
	}

	c.JSON(status, gin.H{
		"success": false,
		"error":   errorBody{Code: string(apperr.CodeOf(err)), Message: message},
	})
}

func respondValidation(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   errorBody{Code: string(apperr.CodeValidation), Message: message},
	})
}

// respondUnauthorized covers handlers reached without an authenticated user,
// which only happens if a route was wired outside the auth middleware.
func respondUnauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error":   errorBody{Code: string(apperr.CodeUnauthorized), Message: "authentication required"},
	})
}
