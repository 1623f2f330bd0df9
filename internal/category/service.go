// Package category lists browsing categories from whichever of the
// known table shapes the database has. Category data is tiny and nearly
// static, so results sit in Redis for a short TTL.
package category

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go_auction/internal/cache"
	"go_auction/internal/rowmap"

	"github.com/sirupsen/logrus"
)

const (
	cacheKey = "go_auction:categories"
	cacheTTL = 60 * time.Second
)

// Category is one browsing category.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Table shapes tried in order. The first statement that executes wins.
var listShapes = []string{
	"SELECT cat_id, cat_name FROM category ORDER BY cat_name ASC",
	"SELECT id, name FROM category ORDER BY name ASC",
	"SELECT c_id, c_name FROM category ORDER BY c_name ASC",
	"SELECT cat_id, cat_name FROM categories ORDER BY cat_name ASC",
}

// Service owns category reads.
type Service struct {
	pool   *sql.DB
	logger *logrus.Entry
}

// NewService creates a new category service
func NewService(pool *sql.DB, logger *logrus.Entry) *Service {
	return &Service{
		pool:   pool,
		logger: logger.WithField("component", "category"),
	}
}

// List returns all categories. Shape exhaustion yields an empty slice,
// never an error; callers render their own fallback list.
func (s *Service) List(ctx context.Context) ([]Category, error) {
	var cached []Category
	if cache.GetJSON(ctx, cacheKey, &cached) {
		return cached, nil
	}

	conn, err := s.pool.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire database connection: %w", err)
	}
	defer conn.Close()

	for _, stmt := range listShapes {
		rows, err := conn.QueryContext(ctx, stmt)
		if err != nil {
			continue
		}

		out := []Category{}
		scanFailed := false
		for rows.Next() {
			var rawID, rawName interface{}
			if err := rows.Scan(&rawID, &rawName); err != nil {
				scanFailed = true
				break
			}
			c := Category{Name: rowmap.AsString(rawName)}
			if id, ok := rowmap.AsInt(rawID); ok {
				c.ID = id
			}
			if c.Name != "" {
				out = append(out, c)
			}
		}
		err = rows.Err()
		rows.Close()
		if scanFailed || err != nil {
			continue
		}

		cache.SetJSON(ctx, cacheKey, out, cacheTTL)
		return out, nil
	}

	s.logger.Debug("no category table shape matched")
	return []Category{}, nil
}
