// Package auction implements the schema-adaptive read and write paths
// for auctions and bids. The physical table layout is not known at build
// time: every statement is assembled from a runtime schema probe plus
// ordered candidate-name lists, and each query shape that fails is
// abandoned in favor of the next.
package auction

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"go_auction/internal/images"
	"go_auction/internal/rowmap"
	"go_auction/internal/schema"

	"github.com/sirupsen/logrus"
)

// Service owns the auction repository and mutation engine. Every public
// method checks one connection out of the pool for its whole lifetime
// and releases it on all exit paths.
type Service struct {
	pool   *sql.DB
	images *images.Service
	logger *logrus.Entry
	now    func() time.Time
}

// NewService creates a new auction service
func NewService(pool *sql.DB, imgs *images.Service, logger *logrus.Entry) *Service {
	return &Service{
		pool:   pool,
		images: imgs,
		logger: logger.WithField("component", "auction"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// scanAll reads every row of rows into normalized column->value maps.
func scanAll(rows *sql.Rows) ([]map[string]interface{}, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []map[string]interface{}
	for rows.Next() {
		vals := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		out = append(out, rowmap.Normalize(cols, vals))
	}
	return out, rows.Err()
}

// pickTime resolves a candidate list to a timestamp, nil when absent or
// unparseable.
func pickTime(candidates []string, row map[string]interface{}) *time.Time {
	v, ok := rowmap.PickFirst(candidates, row)
	if !ok || v == nil {
		return nil
	}
	t, ok := rowmap.AsTime(v)
	if !ok {
		return nil
	}
	return &t
}

// pickInt resolves a candidate list to an int pointer.
func pickInt(candidates []string, row map[string]interface{}) *int {
	v, ok := rowmap.PickFirst(candidates, row)
	if !ok || v == nil {
		return nil
	}
	n, ok := rowmap.AsInt(v)
	if !ok {
		return nil
	}
	return &n
}

// deriveStatus applies the status reconciliation rule: an explicit,
// recognized status value wins; a custom string passes through as-is;
// with no status column the auction is closed iff its end date has
// passed.
func deriveStatus(raw interface{}, endTime *time.Time, now time.Time) string {
	if raw != nil {
		s := strings.TrimSpace(rowmap.AsString(raw))
		if s != "" {
			switch strings.ToLower(s) {
			case "closed", "c":
				return StatusClosed
			case "cancelled", "cancel":
				return StatusCancelled
			case "open", "o":
				return StatusOpen
			default:
				return s
			}
		}
	}
	if endTime != nil && !endTime.After(now) {
		return StatusClosed
	}
	return StatusOpen
}

// effectivePrice is the displayed current price: the highest accepted
// bid when one exists, the stored starting price otherwise.
func effectivePrice(highestBid float64, hasBid bool, storedPrice interface{}) *string {
	if hasBid && highestBid > 0 {
		return rowmap.FormatMoney(highestBid)
	}
	return rowmap.FormatMoney(storedPrice)
}

// highestBid resolves MAX(bid amount) for an auction, trying the two
// bid-table shapes seen in the wild. (0, false) when no shape matches or
// no bids exist.
func highestBid(ctx context.Context, q schema.Querier, auctionID int) (float64, bool) {
	shapes := []string{
		"SELECT MAX(b_amount) FROM bid WHERE b_a_id = ?",
		"SELECT MAX(amount) FROM bid WHERE auction_id = ?",
	}
	for _, stmt := range shapes {
		var raw interface{}
		row := q.QueryRowContext(ctx, stmt, auctionID)
		if err := row.Scan(&raw); err != nil {
			continue
		}
		if raw == nil {
			return 0, false
		}
		if f, ok := rowmap.AsFloat(raw); ok {
			return f, true
		}
		return 0, false
	}
	return 0, false
}
