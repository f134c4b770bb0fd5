// Package handlers exposes the services over the /api/v1 REST contract.
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/justsurfingit/career-tracker/internal/apperrors"
	"github.com/justsurfingit/career-tracker/internal/validation"
	"go.uber.org/zap"
)

var bindingOnce sync.Once

// RegisterBinding installs the custom rules on gin's validator so request
// binding and the services agree on field names and the phone rule.
func RegisterBinding() {
	bindingOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			if err := validation.Register(v); err != nil {
				panic(err)
			}
		}
	})
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondError maps the error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	var verr *apperrors.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "fields": verr.Fields})
		return
	}

	status := http.StatusInternalServerError
	switch apperrors.TypeOf(err) {
	case apperrors.ErrTypeNotFound:
		status = http.StatusNotFound
	case apperrors.ErrTypeInvalidInput:
		status = http.StatusBadRequest
	case apperrors.ErrTypeConflict:
		status = http.StatusConflict
	case apperrors.ErrTypeUnavailable:
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		fields := []zap.Field{zap.Error(err), zap.String("path", c.FullPath())}
		var de *apperrors.DomainError
		if errors.As(err, &de) && len(de.Stack) > 0 {
			fields = append(fields, zap.ByteString("stack", de.Stack))
		}
		log.Error("request failed", fields...)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// bindJSON decodes the body into dst and answers 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		verr := validation.Translate(err).(*apperrors.ValidationError)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + verr.Error(), "fields": verr.Fields})
		return false
	}
	return true
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// pageParams reads page and limit; services clamp the values.
func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	return page, limit
}

// exportFormat accepts only csv; PDF export is not offered.
func exportFormat(c *gin.Context) bool {
	if f := c.DefaultQuery("format", "csv"); f != "csv" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported export format " + strconv.Quote(f)})
		return false
	}
	return true
}
