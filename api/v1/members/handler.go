package members

import (
	"strconv"

	"go_auction/api/v1/middleware"
	"go_auction/internal/audit"
	"go_auction/internal/httpx"
	"go_auction/internal/member"

	"github.com/gin-gonic/gin"
)

// AdminRequest represents the grant/revoke admin request body
type AdminRequest struct {
	Admin bool `json:"admin"`
}

// Handler serves admin-only member management.
type Handler struct {
	members *member.Service
	audit   *audit.Recorder
}

// NewHandler creates a new members handler
func NewHandler(members *member.Service, rec *audit.Recorder) *Handler {
	return &Handler{members: members, audit: rec}
}

// List returns all members.
func (h *Handler) List(c *gin.Context) {
	all, err := h.members.GetAll(c.Request.Context())
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to list members", err))
		return
	}
	httpx.OK(c, all)
}

// Get returns one member by id.
func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid member id"))
		return
	}

	m, err := h.members.GetByID(c.Request.Context(), id)
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to load member", err))
		return
	}
	if m == nil {
		httpx.FailErr(c, httpx.ErrNotFound("member not found"))
		return
	}
	httpx.OK(c, m)
}

// Confirm flips a pending member to active.
func (h *Handler) Confirm(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid member id"))
		return
	}

	ok, err := h.members.Confirm(c.Request.Context(), id)
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to confirm member", err))
		return
	}
	if !ok {
		httpx.FailErr(c, httpx.ErrNotFound("member not found or schema has no status column"))
		return
	}

	h.audit.Record(middleware.UID(c), "member.confirm", id, nil)
	httpx.OK(c, gin.H{"confirmed": true})
}

// SetAdmin grants or revokes the admin flag.
func (h *Handler) SetAdmin(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid member id"))
		return
	}
	var req AdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid request body"))
		return
	}

	ok, err := h.members.SetAdmin(c.Request.Context(), id, req.Admin)
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to update admin flag", err))
		return
	}
	if !ok {
		httpx.FailErr(c, httpx.ErrNotFound("member not found"))
		return
	}

	action := "member.admin.revoke"
	if req.Admin {
		action = "member.admin.grant"
	}
	h.audit.Record(middleware.UID(c), action, id, nil)
	httpx.OK(c, gin.H{"admin": req.Admin})
}
