package handler

import (
	"errors"
	"net/http"

	"reception/internal/middleware"
	"reception/internal/service"
	"reception/pkg/apperr"
	"reception/pkg/response"

	"github.com/gin-gonic/gin"
)

// requestMeta bundles the resolved actor and client metadata for the services.
func requestMeta(c *gin.Context) service.RequestMeta {
	return service.RequestMeta{
		Actor:     middleware.GetActor(c),
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

// writeError maps the service error taxonomy onto HTTP statuses and the wire
// formats the frontend expects. Unknown errors surface as 500 with the
// message as-is (internal tool, not a public product).
func writeError(c *gin.Context, err error) {
	var fields apperr.FieldErrors
	if errors.As(err, &fields) {
		c.JSON(http.StatusBadRequest, response.Fields(fields))
		return
	}

	var invalid *apperr.InvalidError
	if errors.As(err, &invalid) {
		c.JSON(http.StatusBadRequest, response.Err(invalid.Msg))
		return
	}

	var conflict *apperr.ConflictError
	if errors.As(err, &conflict) {
		c.JSON(http.StatusBadRequest, response.Err(conflict.Msg))
		return
	}

	var notFound *apperr.NotFoundError
	if errors.As(err, &notFound) {
		c.JSON(http.StatusNotFound, response.Err(notFound.Msg))
		return
	}

	var auth *apperr.AuthError
	if errors.As(err, &auth) {
		c.JSON(http.StatusUnauthorized, response.Err(auth.Msg))
		return
	}

	c.JSON(http.StatusInternalServerError, response.Err(err.Error()))
}
