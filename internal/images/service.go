// Package images manages the per-item image gallery: tolerant CRUD
// against the item_image table plus best-effort handling of the on-disk
// file variants (thumbnails, webp encodings) named by convention.
package images

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go_auction/internal/rowmap"
	"go_auction/internal/schema"

	"github.com/sirupsen/logrus"
)

// uploadsPrefix is the URL prefix under which gallery files are served.
const uploadsPrefix = "/static/uploads/"

// Image is one normalized gallery row.
type Image struct {
	ImgID     int               `json:"img_id"`
	ItemID    int               `json:"item_id"`
	ImageURL  string            `json:"image_url"`
	ThumbURL  *string           `json:"thumb_url"`
	SortOrder *int              `json:"sort_order"`
	Variants  map[string]string `json:"variants"`
}

// Service owns item image reads and writes.
type Service struct {
	pool       *sql.DB
	uploadsDir string
	logger     *logrus.Entry
}

// NewService creates a new image service
func NewService(pool *sql.DB, uploadsDir string, logger *logrus.Entry) *Service {
	return &Service{
		pool:       pool,
		uploadsDir: uploadsDir,
		logger:     logger.WithField("component", "images"),
	}
}

// ListForItem returns the gallery for an item ordered by sort_order then
// image id. Older tables without thumb/sort columns degrade to a reduced
// column set instead of failing.
func (s *Service) ListForItem(ctx context.Context, itemID int) ([]Image, error) {
	conn, err := s.pool.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire database connection: %w", err)
	}
	defer conn.Close()
	return s.listForItem(ctx, conn, itemID)
}

// ListForItemOn is ListForItem on an already-held connection, used by
// the auction read path to enrich rows without a second checkout.
func (s *Service) ListForItemOn(ctx context.Context, q schema.Querier, itemID int) []Image {
	imgs, err := s.listForItem(ctx, q, itemID)
	if err != nil {
		return nil
	}
	return imgs
}

func (s *Service) listForItem(ctx context.Context, q schema.Querier, itemID int) ([]Image, error) {
	type shape struct {
		stmt   string
		narrow bool
	}
	shapes := []shape{
		{"SELECT img_id, item_id, image_url, thumb_url, sort_order FROM item_image WHERE item_id = ? ORDER BY sort_order ASC, img_id ASC", false},
		{"SELECT img_id, item_id, image_url FROM item_image WHERE item_id = ? ORDER BY img_id ASC", true},
	}

	for _, sh := range shapes {
		rows, err := q.QueryContext(ctx, sh.stmt, itemID)
		if err != nil {
			continue
		}

		out := []Image{}
		scanFailed := false
		for rows.Next() {
			img := Image{}
			if sh.narrow {
				if err := rows.Scan(&img.ImgID, &img.ItemID, &img.ImageURL); err != nil {
					scanFailed = true
					break
				}
			} else {
				var thumb sql.NullString
				var order sql.NullInt32
				if err := rows.Scan(&img.ImgID, &img.ItemID, &img.ImageURL, &thumb, &order); err != nil {
					scanFailed = true
					break
				}
				if thumb.Valid {
					img.ThumbURL = &thumb.String
				}
				if order.Valid {
					v := int(order.Int32)
					img.SortOrder = &v
				}
			}
			img.Variants = s.diskVariants(img.ImageURL)
			out = append(out, img)
		}
		err = rows.Err()
		rows.Close()
		if scanFailed || err != nil {
			continue
		}
		return out, nil
	}
	return []Image{}, nil
}

// diskVariants reports which by-convention file variants exist on disk
// for an uploaded image: the webp re-encoding and the small/medium/large
// thumbnails in both encodings.
func (s *Service) diskVariants(imageURL string) map[string]string {
	variants := map[string]string{}
	if !strings.HasPrefix(imageURL, uploadsPrefix) {
		return variants
	}

	fname := filepath.Base(imageURL)
	ext := filepath.Ext(fname)
	base := strings.TrimSuffix(fname, ext)

	check := func(key, name string) {
		if _, err := os.Stat(filepath.Join(s.uploadsDir, name)); err == nil {
			variants[key] = uploadsPrefix + name
		}
	}

	check("webp", base+".webp")
	for _, size := range []string{"small", "medium", "large"} {
		check("thumb_"+size, fmt.Sprintf("%s_thumb_%s%s", base, size, ext))
		check("thumb_"+size+"_webp", fmt.Sprintf("%s_thumb_%s.webp", base, size))
	}
	return variants
}

// Add inserts a gallery row, trying the full shape then a reduced one.
// Returns the new image id, 0 when no shape accepted the insert.
func (s *Service) Add(ctx context.Context, itemID int, imageURL string, thumbURL *string, sortOrder int) (int, error) {
	conn, err := s.pool.Conn(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to acquire database connection: %w", err)
	}
	defer conn.Close()

	res, err := conn.ExecContext(ctx,
		"INSERT INTO item_image (item_id, image_url, thumb_url, sort_order) VALUES (?, ?, ?, ?)",
		itemID, imageURL, thumbURL, sortOrder)
	if err != nil {
		res, err = conn.ExecContext(ctx,
			"INSERT INTO item_image (item_id, image_url) VALUES (?, ?)",
			itemID, imageURL)
		if err != nil {
			s.logger.WithError(err).Warn("no item_image insert shape matched")
			return 0, nil
		}
	}

	// Native identity first, then its SELECT form, then a deterministic
	// lookup by the just-inserted values.
	if id, err := res.LastInsertId(); err == nil && id > 0 {
		return int(id), nil
	}
	var raw interface{}
	if err := conn.QueryRowContext(ctx, "SELECT LAST_INSERT_ID()").Scan(&raw); err == nil {
		if id, ok := rowmap.AsInt(raw); ok && id > 0 {
			return id, nil
		}
	}
	var id int
	err = conn.QueryRowContext(ctx,
		"SELECT img_id FROM item_image WHERE item_id = ? AND image_url = ? ORDER BY img_id DESC LIMIT 1",
		itemID, imageURL).Scan(&id)
	if err != nil {
		return 0, nil
	}
	return id, nil
}

// SetItemImage mirrors an image path onto the item row's inline image
// column, whichever of the known column names the schema has.
func (s *Service) SetItemImage(ctx context.Context, itemID int, imagePath string) (bool, error) {
	conn, err := s.pool.Conn(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to acquire database connection: %w", err)
	}
	defer conn.Close()

	cols, err := schema.Columns(ctx, conn, "item")
	if err != nil {
		return false, err
	}

	idCol, ok := cols.PickExisting("i_id", "item_id", "id")
	if !ok {
		for c := range cols {
			if strings.HasSuffix(c, "_id") {
				idCol = c
				ok = true
				break
			}
		}
	}
	if !ok {
		return false, nil
	}

	for _, ic := range []string{"image_url", "image", "img", "picture", "photo", "imagepath", "i_image"} {
		if !cols.Has(ic) {
			continue
		}
		stmt := fmt.Sprintf("UPDATE item SET %s = ? WHERE %s = ?", schema.QuoteIdent(ic), schema.QuoteIdent(idCol))
		res, err := conn.ExecContext(ctx, stmt, imagePath, itemID)
		if err != nil {
			continue
		}
		n, _ := res.RowsAffected()
		return n > 0, nil
	}
	return false, nil
}

// Reorder rewrites sort_order for an item's gallery following the given
// image id order, 1-based.
func (s *Service) Reorder(ctx context.Context, itemID int, orderedIDs []int) (bool, error) {
	conn, err := s.pool.Conn(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to acquire database connection: %w", err)
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}

	for idx, imgID := range orderedIDs {
		_, err := tx.ExecContext(ctx,
			"UPDATE item_image SET sort_order = ? WHERE img_id = ? AND item_id = ?",
			idx+1, imgID, itemID)
		if err != nil {
			tx.Rollback()
			return false, nil
		}
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit reorder: %w", err)
	}
	return true, nil
}

// Delete removes a gallery row and makes a best-effort attempt to remove
// the on-disk file variants. File removal failures are ignored; only the
// row delete decides the outcome.
func (s *Service) Delete(ctx context.Context, imgID int) (bool, error) {
	conn, err := s.pool.Conn(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to acquire database connection: %w", err)
	}
	defer conn.Close()

	var imageURL, thumbURL sql.NullString
	err = conn.QueryRowContext(ctx,
		"SELECT image_url, thumb_url FROM item_image WHERE img_id = ?", imgID).
		Scan(&imageURL, &thumbURL)
	if err != nil {
		// Narrow shape without thumb_url
		err = conn.QueryRowContext(ctx,
			"SELECT image_url FROM item_image WHERE img_id = ?", imgID).
			Scan(&imageURL)
		if err != nil {
			return false, nil
		}
	}

	s.removeFiles(imageURL.String, thumbURL.String)

	res, err := conn.ExecContext(ctx, "DELETE FROM item_image WHERE img_id = ?", imgID)
	if err != nil {
		return false, nil
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *Service) removeFiles(urls ...string) {
	for _, u := range urls {
		if u == "" || !strings.HasPrefix(u, uploadsPrefix) {
			continue
		}
		fname := filepath.Base(u)
		ext := filepath.Ext(fname)
		base := strings.TrimSuffix(fname, ext)

		targets := []string{fname}
		for _, suffix := range []string{
			"_thumb_small.webp", "_thumb_medium.webp", "_thumb_large.webp", ".webp",
			"_thumb_small" + ext, "_thumb_medium" + ext, "_thumb_large" + ext,
		} {
			targets = append(targets, base+suffix)
		}
		for _, t := range targets {
			if err := os.Remove(filepath.Join(s.uploadsDir, t)); err != nil && !os.IsNotExist(err) {
				s.logger.WithError(err).WithField("file", t).Debug("failed to remove image variant")
			}
		}
	}
}
