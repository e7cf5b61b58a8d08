package handlers

import (
	"errors"
	"net/http"

	"github.com/consultdesk/consultdesk/internal/apperr"
	"github.com/gin-gonic/gin"
)

// respondError writes err as a JSON message with the status of its class.
// Store and unclassified failures are logged and answered with fallback so
// internal detail never reaches the client.
func respondError(ctx *gin.Context, err error, fallback string) {
	var ae *apperr.Error

	if errors.As(err, &ae) {
		switch ae.Kind {
		case apperr.KindValidation, apperr.KindBusinessRule:
			ctx.JSON(http.StatusBadRequest, gin.H{"message": ae.Message})
			return
		case apperr.KindNotFound:
			ctx.JSON(http.StatusNotFound, gin.H{"message": ae.Message})
			return
		case apperr.KindConflict:
			body := gin.H{"message": ae.Message}
			if ae.Retryable {
				body["retryable"] = true
			}
			ctx.JSON(http.StatusConflict, body)
			return
		}
	}

	log.Errorf("%s: %v", fallback, err)
	_ = ctx.Error(err)
	ctx.JSON(http.StatusInternalServerError, gin.H{"message": fallback})
}

func respondBindError(ctx *gin.Context, err error, what string) {
	log.Debugf("Failed to bind %s: %v", what, err)
	ctx.JSON(http.StatusBadRequest, gin.H{"message": "Invalid " + what + " data"})
}

func respondBadParam(ctx *gin.Context, err error) {
	ctx.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
}
