package server

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/apikey"
	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/models"
	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/monitoring"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// requireAdmin guards the key management surface with the configured shared
// token. This surface is for platform operators, not integrators; it is not
// part of the public pipeline.
func (s *PublicServer) requireAdmin() gin.HandlerFunc {
	token := []byte(s.config.Gateway.AdminToken)
	return func(c *gin.Context) {
		supplied := []byte(c.GetHeader("X-Admin-Token"))
		if subtle.ConstantTimeCompare(token, supplied) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "UNAUTHORIZED",
				"message": "Invalid admin token",
			})
			return
		}
		c.Next()
	}
}

// issueKeyRequest is the admin request to issue an integrator key.
type issueKeyRequest struct {
	Name        string              `json:"name" binding:"required"`
	Permissions []models.Permission `json:"permissions" binding:"required"`
	RateCeiling int                 `json:"rate_ceiling,omitempty"`
	ExpiresAt   *time.Time          `json:"expires_at,omitempty"`
}

// issueKeyResponse carries the plaintext token; it is shown exactly once.
type issueKeyResponse struct {
	Key   *models.APIKey `json:"key"`
	Token string         `json:"token"`
}

func (s *PublicServer) handleIssueKey(c *gin.Context) {
	var req issueKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "VALIDATION_ERROR", "message": err.Error()})
		return
	}

	result, err := s.keys.Issue(c.Request.Context(), apikey.IssueRequest{
		Name:        req.Name,
		Permissions: req.Permissions,
		RateCeiling: req.RateCeiling,
		ExpiresAt:   req.ExpiresAt,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "VALIDATION_ERROR", "message": err.Error()})
		return
	}

	monitoring.RecordKeyIssued()
	c.JSON(http.StatusCreated, issueKeyResponse{Key: result.Key, Token: result.Token})
}

func (s *PublicServer) handleListKeys(c *gin.Context) {
	keys, err := s.keys.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "INTERNAL_ERROR", "message": "Failed to list keys"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"keys": keys, "total": len(keys)})
}

func (s *PublicServer) handleRevokeKey(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "VALIDATION_ERROR", "message": "Invalid key id"})
		return
	}

	if err := s.keys.Revoke(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "KEY_NOT_FOUND", "message": "API key not found"})
		return
	}

	monitoring.RecordKeyRevoked()
	c.JSON(http.StatusOK, gin.H{"revoked": id})
}

func (s *PublicServer) handleKeyUsage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "VALIDATION_ERROR", "message": "Invalid key id"})
		return
	}

	// Resolve first so revoked keys still report their history.
	if _, err := s.keys.Get(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "KEY_NOT_FOUND", "message": "API key not found"})
		return
	}

	stats, _ := s.gateway.Usage(id.String())
	c.JSON(http.StatusOK, gin.H{"key_id": id, "usage": stats})
}
