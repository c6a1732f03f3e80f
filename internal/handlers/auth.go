package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sheikhmaazraheel/MYR-Backend/internal/auth"
)

type AuthHandler struct {
	Auth     *auth.Authenticator
	Sessions *auth.Sessions
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// 🔐 POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "username and password are required"})
		return
	}
	if !h.Auth.Verify(req.Username, req.Password) {
		zap.L().Warn("admin login rejected", zap.String("ip", c.ClientIP()))
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials"})
		return
	}
	if err := h.Sessions.Login(c.Writer, c.Request, req.Username); err != nil {
		zap.L().Error("❌ session save failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "could not start session"})
		return
	}
	zap.L().Info("✅ admin logged in", zap.String("username", req.Username))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// POST /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.Sessions.Logout(c.Writer, c.Request); err != nil {
		zap.L().Error("❌ session destroy failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "could not end session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GET /check-auth
func (h *AuthHandler) CheckAuth(c *gin.Context) {
	p, ok := h.Sessions.Principal(c.Request)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": true, "username": p.Username})
}
