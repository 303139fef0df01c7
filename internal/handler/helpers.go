package handler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"backoffice/internal/apperr"
	"backoffice/internal/middleware"
	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError writes the envelope for err. Internal failures are logged with their cause and
// answered with a generic message.
func respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := kind.HTTPStatus()
	if kind == apperr.KindInternal {
		middleware.Logger(c).Error("request failed", zap.String("error", fmt.Sprintf("%+v", err)))
	}
	c.JSON(status, response.Error(status, apperr.PublicMessage(err)))
}

func badRequest(c *gin.Context, err error) {
	respondError(c, apperr.Validation("Invalid request payload: %s", err.Error()))
}

// parseID reads a positive numeric path parameter
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondError(c, apperr.Validation("invalid %s", name))
		return 0, false
	}
	return uint(id), true
}

// queryUint returns nil for an absent parameter and false for a malformed one.
func queryUint(c *gin.Context, name string) (*uint, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		respondError(c, apperr.Validation("invalid %s", name))
		return nil, false
	}
	id := uint(v)
	return &id, true
}

func queryBool(c *gin.Context, name string) (*bool, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		respondError(c, apperr.Validation("invalid %s", name))
		return nil, false
	}
	return &v, true
}

// queryDate parses a YYYY-MM-DD parameter in UTC.
func queryDate(c *gin.Context, name string) (*time.Time, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		respondError(c, apperr.Validation("%s must be YYYY-MM-DD", name))
		return nil, false
	}
	return &t, true
}

// queryEnum applies parse to a non-empty parameter.
func queryEnum[T any](c *gin.Context, name string, parse func(string) (T, error)) (*T, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	v, err := parse(raw)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return &v, true
}
