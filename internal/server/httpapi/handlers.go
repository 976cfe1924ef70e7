package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/nowstatus/internal/common"
	"github.com/dmitrijs2005/nowstatus/internal/server/models"
	"github.com/dmitrijs2005/nowstatus/internal/server/services"
	"github.com/gin-gonic/gin"
)

// MaxBodyBytes bounds a publish request body: twice the largest image, since
// encoders may escape "/" as "\/", plus room for the other fields and JSON
// framing.
const MaxBodyBytes = 2*models.MaxImageLen + 64<<10

func (s *Server) handlePublish(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.metrics.published(resultTooLarge)
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "request body too large"})
			return
		}
		s.metrics.published(resultBadRequest)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	var req services.PublishRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.metrics.published(resultBadRequest)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := s.statuses.Publish(c.Request.Context(), req); err != nil {
		switch {
		case errors.Is(err, common.ErrorUnauthorized):
			s.metrics.published(resultUnauthorized)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		case errors.Is(err, common.ErrorValidation):
			s.metrics.published(resultInvalid)
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			s.metrics.published(resultError)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	s.metrics.published(resultOK)
	c.Status(http.StatusOK)
}

func (s *Server) handleView(c *gin.Context) {
	role := c.Query("role")

	page, effective := s.statuses.View(c.Request.Context(), role, c.Query("session"))
	s.metrics.viewed(services.RequestedSegment(role), effective)

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
