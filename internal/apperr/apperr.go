package apperr

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Kind identifies a stable error category surfaced at the HTTP boundary.
type Kind string

const (
	KindBadRequest         Kind = "BadRequest"
	KindUnauthorized       Kind = "Unauthorized"
	KindTokenExpired       Kind = "TokenExpired"
	KindInvalidToken       Kind = "InvalidToken"
	KindInvalidCredentials Kind = "InvalidCredentials"
	KindForbidden          Kind = "Forbidden"
	KindNotFound           Kind = "NotFound"
	KindInvalidClient      Kind = "InvalidClient"
	KindInvalidAuthCode    Kind = "InvalidAuthCode"
	KindInvalidRedirectURI Kind = "InvalidRedirectUri"
	KindConflict           Kind = "Conflict"
	KindInternal           Kind = "Internal"
)

// Status maps an error kind to its HTTP status code.
func Status(k Kind) int {
	switch k {
	case KindBadRequest, KindInvalidAuthCode, KindInvalidRedirectURI:
		return http.StatusBadRequest
	case KindUnauthorized, KindTokenExpired, KindInvalidToken,
		KindInvalidCredentials, KindInvalidClient:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Response is the wire shape of every error payload.
type Response struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// JSON writes the error payload without aborting the handler chain.
func JSON(c *gin.Context, k Kind, message string) {
	c.JSON(Status(k), Response{Error: string(k), Message: message})
}

// Abort writes the error payload and stops middleware processing.
func Abort(c *gin.Context, k Kind, message string) {
	c.AbortWithStatusJSON(Status(k), Response{Error: string(k), Message: message})
}
