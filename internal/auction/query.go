package auction

import (
	"context"
	"fmt"
	"strconv"

	"go_auction/internal/rowmap"
	"go_auction/internal/schema"
)

// Join strategies tried in order: common item foreign-key/primary-key
// pairings first, join-less auction-only query as the last resort. The
// first statement that executes without SQL error is used for the
// remainder of the call.
var listJoinStrategies = []string{
	"SELECT a.*, i.* FROM auction a LEFT JOIN item i ON i.item_id = a.a_item_id ORDER BY a.a_s_date DESC",
	"SELECT a.*, i.* FROM auction a LEFT JOIN item i ON i.i_id = a.a_item_id ORDER BY a.a_s_date DESC",
	"SELECT a.*, i.* FROM auction a LEFT JOIN item i ON i.id = a.a_item_id ORDER BY a.a_s_date DESC",
	"SELECT a.*, i.* FROM auction a LEFT JOIN item i ON i.i_id = a.item_id ORDER BY a.a_s_date DESC",
	"SELECT a.* FROM auction a ORDER BY a.a_s_date DESC",
}

var getJoinStrategies = []string{
	"SELECT a.*, i.* FROM auction a LEFT JOIN item i ON i.item_id = a.a_item_id WHERE a.a_id = ?",
	"SELECT a.*, i.* FROM auction a LEFT JOIN item i ON i.i_id = a.a_item_id WHERE a.a_id = ?",
	"SELECT a.*, i.* FROM auction a LEFT JOIN item i ON i.id = a.a_item_id WHERE a.a_id = ?",
	"SELECT a.*, i.* FROM auction a LEFT JOIN item i ON i.i_id = a.item_id WHERE a.a_id = ?",
	"SELECT a.* FROM auction a WHERE a.a_id = ?",
}

// List returns normalized auctions, most recent start date first. A
// limit <= 0 means unbounded. Query-shape failures are absorbed; total
// exhaustion yields an empty slice.
func (s *Service) List(ctx context.Context, limit int) ([]Auction, error) {
	conn, err := s.pool.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire database connection: %w", err)
	}
	defer conn.Close()

	var fetched []map[string]interface{}
	for _, stmt := range listJoinStrategies {
		rows, err := conn.QueryContext(ctx, stmt)
		if err != nil {
			continue
		}
		fetched, err = scanAll(rows)
		rows.Close()
		if err != nil {
			fetched = nil
			continue
		}
		break
	}
	if fetched == nil {
		return []Auction{}, nil
	}

	if limit > 0 && len(fetched) > limit {
		fetched = fetched[:limit]
	}

	out := make([]Auction, 0, len(fetched))
	for _, row := range fetched {
		out = append(out, s.buildAuction(ctx, conn, row, false))
	}
	return out, nil
}

// Get returns one normalized auction, nil when the id matches nothing
// under any query shape.
func (s *Service) Get(ctx context.Context, id int) (*Auction, error) {
	conn, err := s.pool.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire database connection: %w", err)
	}
	defer conn.Close()

	var row map[string]interface{}
	for _, stmt := range getJoinStrategies {
		rows, err := conn.QueryContext(ctx, stmt, id)
		if err != nil {
			continue
		}
		fetched, err := scanAll(rows)
		rows.Close()
		if err != nil {
			continue
		}
		if len(fetched) > 0 {
			row = fetched[0]
			break
		}
	}
	if row == nil {
		return nil, nil
	}

	a := s.buildAuction(ctx, conn, row, true)
	return &a, nil
}

// buildAuction turns one normalized row into the canonical Auction,
// independently resolving the gallery image and the highest current bid.
// detail selects the full image over the thumbnail, as the item view
// wants; the listing prefers the thumbnail.
func (s *Service) buildAuction(ctx context.Context, conn schema.Querier, row map[string]interface{}, detail bool) Auction {
	now := s.now()

	var a Auction
	if id, ok := rowmap.AsInt(row["a_id"]); ok {
		a.ID = id
	}
	a.ItemID = pickInt([]string{"a_item_id", "item_id"}, row)

	itemRef := a.ItemID
	if itemRef == nil {
		if id, ok := rowmap.AsInt(row["a_id"]); ok {
			itemRef = &id
		}
	}

	if v, ok := rowmap.PickFirst(titleCandidates, row); ok && v != nil {
		a.Title = rowmap.AsString(v)
	}
	if a.Title == "" && itemRef != nil {
		a.Title = fmt.Sprintf("Item %d", *itemRef)
	}
	if v, ok := rowmap.PickFirst(descCandidates, row); ok && v != nil {
		a.Description = rowmap.AsString(v)
	}

	a.ImageURL = PlaceholderImage
	if v, ok := rowmap.PickFirst(imageCandidates, row); ok && v != nil {
		if u := rowmap.AsString(v); u != "" {
			a.ImageURL = u
		}
	}
	// The gallery's first image overrides whatever the inline column held.
	if itemRef != nil && s.images != nil {
		if imgs := s.images.ListForItemOn(ctx, conn, *itemRef); len(imgs) > 0 {
			first := imgs[0]
			if detail {
				if first.ImageURL != "" {
					a.ImageURL = first.ImageURL
				} else if first.ThumbURL != nil && *first.ThumbURL != "" {
					a.ImageURL = *first.ThumbURL
				}
			} else {
				if first.ThumbURL != nil && *first.ThumbURL != "" {
					a.ImageURL = *first.ThumbURL
				} else if first.ImageURL != "" {
					a.ImageURL = first.ImageURL
				}
			}
		}
	}

	storedPrice, _ := rowmap.PickFirst(priceCandidates, row)
	bidRef := a.ID
	if bidRef == 0 && a.ItemID != nil {
		bidRef = *a.ItemID
	}
	high, hasBid := highestBid(ctx, conn, bidRef)
	a.CurrentBid = effectivePrice(high, hasBid, storedPrice)

	a.SellerID = pickInt([]string{"a_m_id", "seller_id"}, row)
	a.StartDate = pickTime([]string{"a_s_date", "start_date"}, row)
	a.EndTime = pickTime(endDateCandidates, row)
	a.Duration = rowmap.DurationDays(a.StartDate, a.EndTime, pickInt(durationCandidates, row))

	rawStatus, ok := rowmap.PickFirst(statusCandidates, row)
	if !ok {
		rawStatus = nil
	}
	a.Status = deriveStatus(rawStatus, a.EndTime, now)

	if a.ID != 0 {
		a.URL = "/auction/" + strconv.Itoa(a.ID)
	} else if itemRef != nil {
		a.URL = "/auction/" + strconv.Itoa(*itemRef)
	}
	return a
}
