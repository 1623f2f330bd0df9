package auth

import (
	"errors"
	"fmt"
	"time"

	"go_auction/internal/auth"
	"go_auction/internal/config"
	"go_auction/internal/httpx"
	"go_auction/internal/member"

	"github.com/gin-gonic/gin"
)

// LoginRequest represents login request body
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents login response data
type LoginResponse struct {
	Token    string   `json:"token"`
	ExpireAt string   `json:"expireAt"`
	User     UserInfo `json:"user"`
}

// UserInfo represents user information in response
type UserInfo struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

// RegisterRequest represents registration request body
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

// Handler serves login and registration.
type Handler struct {
	members *member.Service
	lockout *auth.Lockout
	cfg     *config.Config
}

// NewHandler creates a new auth handler
func NewHandler(members *member.Service, lockout *auth.Lockout, cfg *config.Config) *Handler {
	return &Handler{members: members, lockout: lockout, cfg: cfg}
}

// Login handles user login with per-username lockout.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid request body"))
		return
	}

	if locked, remaining := h.lockout.Locked(req.Username); locked {
		httpx.FailErr(c, httpx.ErrLockedOut(
			fmt.Sprintf("account locked, retry in %d seconds", int(remaining.Seconds()))))
		return
	}

	m, err := h.members.GetByUsername(c.Request.Context(), req.Username)
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("database error", err))
		return
	}
	if m == nil {
		// Unknown username and wrong password look identical, and both
		// count toward the lockout.
		h.lockout.Failure(req.Username)
		httpx.FailErr(c, httpx.ErrUnauthorized("invalid credentials"))
		return
	}

	if m.Status == member.StatusPending {
		httpx.FailErr(c, httpx.ErrForbidden("account pending confirmation"))
		return
	}

	ok, _ := auth.VerifyPassword(m.Password, req.Password)
	if !ok {
		h.lockout.Failure(req.Username)
		httpx.FailErr(c, httpx.ErrUnauthorized("invalid credentials"))
		return
	}
	h.lockout.Success(req.Username)

	expireAt := time.Now().Add(time.Duration(h.cfg.JWT.ExpireMinutes) * time.Minute)
	token, err := auth.GenerateToken(m.ID, m.Username, m.IsAdmin, expireAt, h.cfg.JWT.Issuer)
	if err != nil {
		httpx.FailErr(c, httpx.ErrInternalError("failed to generate token", err))
		return
	}

	httpx.OK(c, LoginResponse{
		Token:    token,
		ExpireAt: expireAt.Format(time.RFC3339),
		User: UserInfo{
			ID:       m.ID,
			Username: m.Username,
			IsAdmin:  m.IsAdmin,
		},
	})
}

// Register handles new member registration.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid request body"))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		httpx.FailErr(c, httpx.ErrInternalError("failed to hash password", err))
		return
	}

	id, err := h.members.Create(c.Request.Context(), req.Username, hash, req.Name, req.Email)
	if err != nil {
		if errors.Is(err, member.ErrUsernameTaken) {
			httpx.FailErr(c, httpx.ErrAlreadyExists("username already taken"))
			return
		}
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to create member", err))
		return
	}

	httpx.OK(c, gin.H{"id": id})
}
