package api

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"facility-logbook-backend/internal/bridge"
	"facility-logbook-backend/internal/model"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/login. Credentials come from the locally cached
// user list, so sign-in keeps working while the bridge is unreachable.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}
	user, err := h.store.UserByUsername(c.Request.Context(), req.Username)
	if err != nil || user == nil || user.Password != req.Password {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	c.JSON(http.StatusOK, user.Sanitized())
}

// ListUsers handles GET /api/users. Admin only, passwords never leave the
// server.
func (h *Handler) ListUsers(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}
	users, err := h.store.Users(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}
	out := make([]model.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Sanitized())
	}
	c.JSON(http.StatusOK, out)
}

type addUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// AddUser handles POST /api/users. The account is stored locally first and
// mirrored to the sheet best effort.
func (h *Handler) AddUser(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}
	var req addUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}
	role := model.UserRole(strings.ToUpper(req.Role))
	if role != model.RoleAdmin {
		role = model.RoleUser
	}
	name := req.Name
	if name == "" {
		name = req.Username
	}
	user := model.User{
		Username: req.Username,
		Password: req.Password,
		Name:     name,
		Role:     role,
	}
	if err := h.store.UpsertUser(c.Request.Context(), user); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to save user"})
		return
	}
	if h.cloud != nil {
		go func(u model.User) {
			row := bridge.UserRow{Username: u.Username, Password: u.Password, Name: u.Name, Role: string(u.Role)}
			if err := h.cloud.AddUser(context.Background(), row); err != nil {
				log.Printf("user %s not mirrored to sheet: %v", u.Username, err)
			}
		}(user)
	}
	c.JSON(http.StatusCreated, user.Sanitized())
}

// DeleteUser handles DELETE /api/users/:username. The built-in administrator
// cannot be removed.
func (h *Handler) DeleteUser(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}
	username := c.Param("username")
	if strings.EqualFold(username, model.DefaultAdminUsername) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "the default administrator cannot be deleted"})
		return
	}
	if err := h.store.DeleteUser(c.Request.Context(), username); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}
	if h.cloud != nil {
		go func() {
			if err := h.cloud.DeleteUser(context.Background(), username); err != nil {
				log.Printf("user %s not removed from sheet: %v", username, err)
			}
		}()
	}
	c.Status(http.StatusNoContent)
}
