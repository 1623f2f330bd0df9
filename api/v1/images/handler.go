package images

import (
	"path/filepath"
	"strconv"
	"strings"

	"go_auction/internal/httpx"
	"go_auction/internal/images"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReorderRequest represents the gallery reorder request body
type ReorderRequest struct {
	ImageIDs []int `json:"image_ids" binding:"required"`
}

// Handler serves item gallery reads and writes.
type Handler struct {
	images     *images.Service
	uploadsDir string
}

// NewHandler creates a new images handler
func NewHandler(svc *images.Service, uploadsDir string) *Handler {
	return &Handler{images: svc, uploadsDir: uploadsDir}
}

// ListForItem returns the gallery of one item.
func (h *Handler) ListForItem(c *gin.Context) {
	itemID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid item id"))
		return
	}

	imgs, err := h.images.ListForItem(c.Request.Context(), itemID)
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to list images", err))
		return
	}
	httpx.OK(c, imgs)
}

// Upload stores an uploaded file under a uuid name and records the
// gallery row. A sort_order of 1 also mirrors the image onto the item
// row's inline image column.
func (h *Handler) Upload(c *gin.Context) {
	itemID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid item id"))
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing("file is required"))
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
	default:
		httpx.FailErr(c, httpx.ErrParamInvalid("unsupported image type"))
		return
	}

	sortOrder := 0
	if raw := c.PostForm("sort_order"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			sortOrder = n
		}
	}

	name := uuid.New().String() + ext
	if err := c.SaveUploadedFile(file, filepath.Join(h.uploadsDir, name)); err != nil {
		httpx.FailErr(c, httpx.ErrInternalError("failed to store file", err))
		return
	}
	url := "/static/uploads/" + name

	imgID, err := h.images.Add(c.Request.Context(), itemID, url, nil, sortOrder)
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to record image", err))
		return
	}
	if imgID == 0 {
		httpx.FailErr(c, httpx.ErrInternalError("image could not be recorded", nil))
		return
	}

	if sortOrder == 1 {
		if _, err := h.images.SetItemImage(c.Request.Context(), itemID, url); err != nil {
			httpx.FailErr(c, httpx.ErrDatabaseError("failed to mirror item image", err))
			return
		}
	}

	httpx.OK(c, gin.H{"img_id": imgID, "image_url": url})
}

// Reorder rewrites the gallery order of one item.
func (h *Handler) Reorder(c *gin.Context) {
	itemID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid item id"))
		return
	}
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid request body"))
		return
	}

	ok, err := h.images.Reorder(c.Request.Context(), itemID, req.ImageIDs)
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to reorder images", err))
		return
	}
	if !ok {
		httpx.FailErr(c, httpx.ErrNotFound("gallery could not be reordered"))
		return
	}
	httpx.OK(c, gin.H{"reordered": true})
}

// Delete removes a gallery row and its on-disk variants.
func (h *Handler) Delete(c *gin.Context) {
	imgID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid image id"))
		return
	}

	ok, err := h.images.Delete(c.Request.Context(), imgID)
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to delete image", err))
		return
	}
	if !ok {
		httpx.FailErr(c, httpx.ErrNotFound("image not found"))
		return
	}
	httpx.OK(c, gin.H{"deleted": true})
}
