package categories

import (
	"go_auction/internal/category"
	"go_auction/internal/httpx"

	"github.com/gin-gonic/gin"
)

// fallback is served when no category table shape matches. The browsing
// UI always needs something to render.
var fallback = []category.Category{
	{ID: 1, Name: "Antiques"},
	{ID: 2, Name: "Art"},
	{ID: 3, Name: "Books"},
	{ID: 4, Name: "Electronics"},
	{ID: 5, Name: "Fashion"},
	{ID: 6, Name: "Home"},
	{ID: 7, Name: "Jewellery"},
	{ID: 8, Name: "Toys"},
}

// Handler serves category reads.
type Handler struct {
	categories *category.Service
}

// NewHandler creates a new categories handler
func NewHandler(svc *category.Service) *Handler {
	return &Handler{categories: svc}
}

// List returns the browsing categories, falling back to the static list
// when the database offers none.
func (h *Handler) List(c *gin.Context) {
	cats, err := h.categories.List(c.Request.Context())
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to list categories", err))
		return
	}
	if len(cats) == 0 {
		cats = fallback
	}
	httpx.OK(c, cats)
}
