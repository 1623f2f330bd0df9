package auctions

import (
	"strconv"
	"time"

	"go_auction/api/v1/middleware"
	"go_auction/internal/audit"
	"go_auction/internal/auction"
	"go_auction/internal/httpx"
	"go_auction/internal/ws"

	"github.com/gin-gonic/gin"
)

// CreateRequest represents the create auction request body
type CreateRequest struct {
	Title         string  `json:"title" binding:"required"`
	Description   string  `json:"description"`
	StartingPrice float64 `json:"starting_price"`
	EndDate       string  `json:"end_date"`
	Category      string  `json:"category"`
	SubCategory   string  `json:"sub_category"`
	ImagePath     string  `json:"image_path"`
}

// BidRequest represents the place bid request body
type BidRequest struct {
	Amount float64 `json:"amount" binding:"required"`
}

// HousekeepingRequest represents the admin housekeeping request body
type HousekeepingRequest struct {
	Action  string `json:"action" binding:"required"`
	EndDate string `json:"end_date"`
	Days    *int   `json:"days"`
	Status  string `json:"status"`
}

// Handler serves auction reads and writes.
type Handler struct {
	auctions *auction.Service
	audit    *audit.Recorder
}

// NewHandler creates a new auctions handler
func NewHandler(auctions *auction.Service, rec *audit.Recorder) *Handler {
	return &Handler{auctions: auctions, audit: rec}
}

// List returns auctions, most recent first. ?limit caps the result.
func (h *Handler) List(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httpx.FailErr(c, httpx.ErrParamInvalid("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	items, err := h.auctions.List(c.Request.Context(), limit)
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to list auctions", err))
		return
	}
	httpx.OK(c, items)
}

// Get returns one auction.
func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid auction id"))
		return
	}

	a, err := h.auctions.Get(c.Request.Context(), id)
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to load auction", err))
		return
	}
	if a == nil {
		httpx.FailErr(c, httpx.ErrNotFound("auction not found"))
		return
	}
	httpx.OK(c, a)
}

// Create inserts an item and its auction for the authenticated seller.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid request body"))
		return
	}

	uid := middleware.UID(c)
	in := auction.CreateInput{
		Title:         req.Title,
		Description:   req.Description,
		SellerID:      &uid,
		StartingPrice: req.StartingPrice,
		Category:      req.Category,
		SubCategory:   req.SubCategory,
		ImagePath:     req.ImagePath,
	}
	if req.EndDate != "" {
		t, err := time.Parse(time.RFC3339, req.EndDate)
		if err != nil {
			httpx.FailErr(c, httpx.ErrParamInvalid("end_date must be RFC3339"))
			return
		}
		in.EndDate = &t
	}

	created, err := h.auctions.CreateItemAndAuction(c.Request.Context(), in)
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to create auction", err))
		return
	}
	if created == nil {
		httpx.FailErr(c, httpx.ErrInternalError("auction could not be created", nil))
		return
	}
	httpx.OK(c, created)
}

// Bid places a bid for the authenticated member.
func (h *Handler) Bid(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid auction id"))
		return
	}
	var req BidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid request body"))
		return
	}

	uid := middleware.UID(c)
	accepted, err := h.auctions.PlaceBid(c.Request.Context(), id, uid, req.Amount)
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to place bid", err))
		return
	}
	if !accepted {
		httpx.FailErr(c, httpx.ErrBidRejected("bid rejected: auction closed or amount not above current price"))
		return
	}

	ws.PublishBidAccepted(h.audit, id, uid, req.Amount)
	httpx.OK(c, gin.H{"accepted": true})
}

// Delete removes an auction and its bids. Admin only.
func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid auction id"))
		return
	}

	auctions, bids, err := h.auctions.DeleteAuctionAndBids(c.Request.Context(), id)
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to delete auction", err))
		return
	}
	if auctions == 0 {
		httpx.FailErr(c, httpx.ErrNotFound("auction not found"))
		return
	}

	h.audit.Record(middleware.UID(c), "auction.delete", id, map[string]interface{}{
		"auctions": auctions,
		"bids":     bids,
	})
	httpx.OK(c, gin.H{"auctions": auctions, "bids": bids})
}

// Housekeeping applies an admin lifecycle action to an auction.
func (h *Handler) Housekeeping(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid auction id"))
		return
	}
	var req HousekeepingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid request body"))
		return
	}

	params := auction.HousekeepingParams{Days: req.Days, Status: req.Status}
	if req.EndDate != "" {
		t, err := time.Parse(time.RFC3339, req.EndDate)
		if err != nil {
			httpx.FailErr(c, httpx.ErrParamInvalid("end_date must be RFC3339"))
			return
		}
		params.EndDate = &t
	}

	updated, err := h.auctions.UpdateHousekeeping(c.Request.Context(), id, req.Action, params)
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to update auction", err))
		return
	}
	if !updated {
		httpx.FailErr(c, httpx.ErrNotFound("no auction row was updated"))
		return
	}

	h.audit.Record(middleware.UID(c), "auction."+req.Action, id, map[string]interface{}{
		"end_date": req.EndDate,
		"days":     req.Days,
		"status":   req.Status,
	})
	httpx.OK(c, gin.H{"updated": true})
}
