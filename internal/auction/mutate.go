package auction

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go_auction/internal/rowmap"
	"go_auction/internal/schema"
)

// insertColumns accumulates a dynamic column list for an INSERT,
// deduplicating first-found-wins. Two candidate lists resolving to the
// same physical column must never produce a duplicate-column INSERT.
type insertColumns struct {
	cols []string
	vals []interface{}
	seen map[string]bool
}

func newInsertColumns() *insertColumns {
	return &insertColumns{seen: map[string]bool{}}
}

func (ic *insertColumns) add(col string, val interface{}) {
	col = strings.ToLower(col)
	if ic.seen[col] {
		return
	}
	ic.seen[col] = true
	ic.cols = append(ic.cols, col)
	ic.vals = append(ic.vals, val)
}

func (ic *insertColumns) statement(table string) string {
	quoted := make([]string, len(ic.cols))
	placeholders := make([]string, len(ic.cols))
	for i, c := range ic.cols {
		quoted[i] = schema.QuoteIdent(c)
		placeholders[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		schema.QuoteIdent(table), strings.Join(quoted, ", "), strings.Join(placeholders, ", "))
}

// resolveIdentity retrieves the id of a just-inserted row through the
// three-tier fallback: the driver's native LastInsertId, the server-side
// LAST_INSERT_ID() read, then a deterministic lookup by the row's
// distinguishing value ordered by primary key descending.
func resolveIdentity(ctx context.Context, q schema.Querier, res sql.Result, lookupStmt string, lookupArgs ...interface{}) int {
	if res != nil {
		if id, err := res.LastInsertId(); err == nil && id > 0 {
			return int(id)
		}
	}

	var raw interface{}
	if err := q.QueryRowContext(ctx, "SELECT LAST_INSERT_ID()").Scan(&raw); err == nil {
		if id, ok := rowmap.AsInt(raw); ok && id > 0 {
			return id
		}
	}

	if lookupStmt != "" {
		if err := q.QueryRowContext(ctx, lookupStmt, lookupArgs...).Scan(&raw); err == nil {
			if id, ok := rowmap.AsInt(raw); ok && id > 0 {
				return id
			}
		}
	}
	return 0
}

// CreateItemAndAuction inserts the item and its auction in a single
// transaction, adapting both column sets to the live schema. Optional
// fields with no recognizable column are dropped from the insert. Any
// failure to determine either generated id rolls back the whole
// transaction and returns nil.
func (s *Service) CreateItemAndAuction(ctx context.Context, in CreateInput) (*Created, error) {
	conn, err := s.pool.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire database connection: %w", err)
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	created, err := s.createInTx(ctx, tx, in)
	if err != nil || created == nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit item+auction insert: %w", err)
	}
	return created, nil
}

func (s *Service) createInTx(ctx context.Context, tx *sql.Tx, in CreateInput) (*Created, error) {
	itemCols, err := schema.Columns(ctx, tx, "item")
	if err != nil {
		itemCols = schema.ColumnSet{}
	}

	titleCol, ok := itemCols.PickExisting(itemTitleCandidates...)
	if !ok {
		titleCol = prefixedColumn(itemCols, "i_", "title", "name")
	}
	descCol, ok := itemCols.PickExisting(itemDescCandidates...)
	if !ok {
		descCol = prefixedColumn(itemCols, "i_", "desc", "detail")
	}

	sellerID := in.SellerID
	if sellerID == nil {
		// Schemas with a NOT NULL owner column need some member; borrow
		// the first one rather than failing the insert outright.
		if _, hasOwner := itemCols.PickExisting(itemOwnerCandidates...); hasOwner {
			var raw interface{}
			if err := tx.QueryRowContext(ctx, "SELECT m_id FROM member LIMIT 1").Scan(&raw); err == nil {
				if id, ok := rowmap.AsInt(raw); ok {
					sellerID = &id
				}
			}
		}
	}

	ins := newInsertColumns()
	if titleCol != "" {
		ins.add(titleCol, in.Title)
	}
	if sellerID != nil {
		if oc, ok := itemCols.PickExisting(itemOwnerCandidates...); ok {
			ins.add(oc, *sellerID)
		}
	}
	if descCol != "" {
		ins.add(descCol, in.Description)
	}
	addCoerced(ins, itemCols, itemCatCandidates, in.Category)
	addCoerced(ins, itemCols, itemSubCatCandidates, in.SubCategory)
	if in.ImagePath != "" {
		if ic, ok := itemCols.PickExisting(itemImageCandidates...); ok {
			ins.add(ic, in.ImagePath)
		}
	}

	var res sql.Result
	if len(ins.cols) > 0 {
		res, err = tx.ExecContext(ctx, ins.statement("item"), ins.vals...)
	} else {
		res, err = tx.ExecContext(ctx, "INSERT INTO item () VALUES ()")
	}
	if err != nil {
		s.logger.WithError(err).Error("item insert failed")
		return nil, nil
	}

	idCol, ok := itemCols.PickExisting(itemIDCandidates...)
	if !ok {
		idCol = suffixedColumn(itemCols, "_id")
	}
	lookupStmt := ""
	whereTitle := titleCol
	if whereTitle == "" {
		whereTitle = "title"
	}
	if idCol != "" {
		lookupStmt = fmt.Sprintf("SELECT %s FROM item WHERE %s = ? ORDER BY %s DESC LIMIT 1",
			schema.QuoteIdent(idCol), schema.QuoteIdent(whereTitle), schema.QuoteIdent(idCol))
	}
	itemID := resolveIdentity(ctx, tx, res, lookupStmt, in.Title)
	if itemID == 0 {
		s.logger.WithField("title", in.Title).Error("could not determine new item id")
		return nil, nil
	}

	auctionID := s.insertAuction(ctx, tx, itemID, sellerID, in)
	if auctionID == 0 {
		s.logger.WithField("item_id", itemID).Error("could not determine new auction id")
		return nil, nil
	}

	return &Created{AuctionID: auctionID, ItemID: itemID}, nil
}

func (s *Service) insertAuction(ctx context.Context, tx *sql.Tx, itemID int, sellerID *int, in CreateInput) int {
	aCols, err := schema.Columns(ctx, tx, "auction")
	if err != nil {
		aCols = schema.ColumnSet{}
	}

	ins := newInsertColumns()
	if len(aCols) > 0 {
		if c, ok := aCols.PickExisting(aItemCandidates...); ok {
			ins.add(c, itemID)
		}
		if c, ok := aCols.PickExisting(aMemberCandidates...); ok {
			ins.add(c, sellerID)
		}
		if c, ok := aCols.PickExisting(aStartPriceCandidates...); ok {
			ins.add(c, in.StartingPrice)
		}
		if c, ok := aCols.PickExisting(startCandidates...); ok {
			ins.add(c, s.now())
		}
		if in.EndDate != nil {
			if c, ok := aCols.PickExisting(endDateCandidates...); ok {
				ins.add(c, *in.EndDate)
			}
		}
	} else {
		// Probe failed entirely: fall back to the conventional layout.
		ins.add("a_item_id", itemID)
		ins.add("a_m_id", sellerID)
		ins.add("a_s_price", in.StartingPrice)
		ins.add("a_s_date", s.now())
		if in.EndDate != nil {
			ins.add("a_e_date", *in.EndDate)
		}
	}

	var res sql.Result
	if len(ins.cols) > 0 {
		res, err = tx.ExecContext(ctx, ins.statement("auction"), ins.vals...)
		if err != nil {
			s.logger.WithError(err).Error("auction insert failed")
			res = nil
		}
	}

	pkCol, ok := aCols.PickExisting(auctionPKCandidates...)
	if !ok {
		pkCol = "a_id"
	}
	fkCol, ok := aCols.PickExisting(aItemCandidates...)
	if !ok {
		fkCol = "a_item_id"
	}
	lookupStmt := fmt.Sprintf("SELECT %s FROM auction WHERE %s = ? ORDER BY %s DESC LIMIT 1",
		schema.QuoteIdent(pkCol), schema.QuoteIdent(fkCol), schema.QuoteIdent(pkCol))
	return resolveIdentity(ctx, tx, res, lookupStmt, itemID)
}

// addCoerced includes a candidate column, coercing the value to int when
// the column is integer-typed; an uncoercible value skips the column
// rather than erroring.
func addCoerced(ins *insertColumns, cols schema.ColumnSet, candidates []string, value string) {
	if value == "" {
		return
	}
	col, ok := cols.PickExisting(candidates...)
	if !ok {
		return
	}
	if cols.IsInteger(col) {
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return
		}
		ins.add(col, n)
		return
	}
	ins.add(col, value)
}

func prefixedColumn(cols schema.ColumnSet, prefix string, fragments ...string) string {
	for c := range cols {
		if !strings.HasPrefix(c, prefix) {
			continue
		}
		for _, f := range fragments {
			if strings.Contains(c, f) {
				return c
			}
		}
	}
	return ""
}

func suffixedColumn(cols schema.ColumnSet, suffix string) string {
	for c := range cols {
		if strings.HasSuffix(c, suffix) {
			return c
		}
	}
	return ""
}

// Bid insert shapes. Each guards against the race between two
// near-simultaneous bids: the row is only inserted while no equal or
// higher bid exists, so of two racing bids at the same amount at most
// one commits.
var bidInsertShapes = []string{
	"INSERT INTO bid (b_a_id, b_m_id, b_amount, b_time) SELECT ?, ?, ?, UTC_TIMESTAMP() FROM DUAL WHERE NOT EXISTS (SELECT 1 FROM bid b WHERE b.b_a_id = ? AND b.b_amount >= ?)",
	"INSERT INTO bid (auction_id, member_id, amount, created_at) SELECT ?, ?, ?, UTC_TIMESTAMP() FROM DUAL WHERE NOT EXISTS (SELECT 1 FROM bid b WHERE b.auction_id = ? AND b.amount >= ?)",
}

// bidAllowed evaluates the bid acceptance preconditions against a
// normalized auction row, in order: not ended (end date <= now takes no
// bids), not closed or cancelled, and the amount strictly above the
// effective price, max(highest existing bid, stored starting price).
func bidAllowed(row map[string]interface{}, highestBid float64, hasBid bool, amount float64, now time.Time) bool {
	if endTime := pickTime(endDateCandidates, row); endTime != nil && !endTime.After(now) {
		return false
	}
	if raw, ok := rowmap.PickFirst(statusCandidates, row); ok && raw != nil {
		switch strings.ToLower(strings.TrimSpace(rowmap.AsString(raw))) {
		case "closed", "c", "cancelled", "cancel":
			return false
		}
	}

	current := 0.0
	if hasBid {
		current = highestBid
	}
	if sp, ok := rowmap.PickFirst(priceCandidates, row); ok {
		if f, ok := rowmap.AsFloat(sp); ok && f > current {
			current = f
		}
	}
	return amount > current
}

// PlaceBid validates and records a bid. It returns true only when the
// auction exists, is neither ended nor closed/cancelled, and the amount
// strictly exceeds the current effective price. Every rejection path
// leaves the database unchanged. A schema with no insertable bid table
// rejects the bid; the stored starting price is never overwritten.
func (s *Service) PlaceBid(ctx context.Context, auctionID, bidderID int, amount float64) (bool, error) {
	conn, err := s.pool.Conn(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to acquire database connection: %w", err)
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// 1. The auction must exist. The first primary-key variant whose
	// query executes cleanly is authoritative.
	var arow map[string]interface{}
	matched := false
	for _, pk := range auctionPKCandidates {
		stmt := fmt.Sprintf("SELECT a.* FROM auction a WHERE a.%s = ?", schema.QuoteIdent(pk))
		rows, err := tx.QueryContext(ctx, stmt, auctionID)
		if err != nil {
			continue
		}
		fetched, err := scanAll(rows)
		rows.Close()
		if err != nil {
			continue
		}
		matched = true
		if len(fetched) > 0 {
			arow = fetched[0]
		}
		break
	}
	if !matched || arow == nil {
		return false, nil
	}

	// 2./3. Lifecycle and price preconditions against the loaded row.
	high, hasBid := highestBid(ctx, tx, auctionID)
	if !bidAllowed(arow, high, hasBid, amount, s.now()) {
		return false, nil
	}

	// 4. Insert under the race guard, first accepting shape wins.
	for _, stmt := range bidInsertShapes {
		res, err := tx.ExecContext(ctx, stmt, auctionID, bidderID, amount, auctionID, amount)
		if err != nil {
			continue
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			// A concurrent bid got there first.
			return false, nil
		}
		if err := tx.Commit(); err != nil {
			return false, fmt.Errorf("failed to commit bid: %w", err)
		}
		return true, nil
	}

	// No bid table shape was insertable: reject rather than destroy the
	// auction's price history.
	s.logger.WithField("auction_id", auctionID).Error("no bid table shape accepted the insert; check the bid table configuration")
	return false, nil
}

// DeleteAuctionAndBids removes an auction and its bids in one
// transaction. Bids go first, using the first foreign-key variant whose
// delete executes; auction rows are summed across all key variants that
// succeed, to tolerate redundant or aliased key columns. Zero auction
// rows deleted rolls everything back.
func (s *Service) DeleteAuctionAndBids(ctx context.Context, auctionID int) (int, int, error) {
	conn, err := s.pool.Conn(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to acquire database connection: %w", err)
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	deletedBids := 0
	for _, fk := range bidFKCandidates {
		stmt := fmt.Sprintf("DELETE FROM bid WHERE %s = ?", schema.QuoteIdent(fk))
		res, err := tx.ExecContext(ctx, stmt, auctionID)
		if err != nil {
			continue
		}
		if n, err := res.RowsAffected(); err == nil && n >= 0 {
			deletedBids = int(n)
		}
		break
	}

	deletedAuctions := 0
	for _, pk := range auctionPKCandidates {
		stmt := fmt.Sprintf("DELETE FROM auction WHERE %s = ?", schema.QuoteIdent(pk))
		res, err := tx.ExecContext(ctx, stmt, auctionID)
		if err != nil {
			continue
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			deletedAuctions += int(n)
		}
	}

	if deletedAuctions == 0 {
		// The rollback restores the bids: a zero-row auction delete must
		// never leave them orphaned-deleted.
		return 0, deletedBids, nil
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit auction delete: %w", err)
	}
	return deletedAuctions, deletedBids, nil
}

// UpdateHousekeeping performs an admin lifecycle action on an auction:
// close, reopen, set_end_date, extend_days, cancel or set_status.
// set_status bypasses the state machine on purpose, for schemas with
// custom status vocabularies. Returns true when any row was updated.
func (s *Service) UpdateHousekeeping(ctx context.Context, auctionID int, action string, params HousekeepingParams) (bool, error) {
	conn, err := s.pool.Conn(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to acquire database connection: %w", err)
	}
	defer conn.Close()

	cols, err := schema.Columns(ctx, conn, "auction")
	if err != nil {
		return false, err
	}

	endCol, _ := cols.PickExisting(endDateCandidates...)
	statusCol, _ := cols.PickExisting(statusCandidates...)
	pkCol, ok := cols.PickExisting(auctionPKCandidates...)
	if !ok {
		pkCol = "a_id"
	}

	// Cancel and set_status need somewhere durable to write the status.
	// MySQL DDL commits implicitly, so this runs before the update
	// transaction; failure is tolerated and the existing shapes are used.
	if statusCol == "" && (action == ActionCancel || action == ActionSetStatus) {
		if schema.EnsureColumn(ctx, conn, s.logger, "auction", "a_status", "VARCHAR(64) NULL") {
			statusCol = "a_status"
		}
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	updated := 0
	update := func(col string, val interface{}) error {
		stmt := fmt.Sprintf("UPDATE auction SET %s = ? WHERE %s = ?", schema.QuoteIdent(col), schema.QuoteIdent(pkCol))
		res, err := tx.ExecContext(ctx, stmt, val, auctionID)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			updated += int(n)
		}
		return nil
	}

	now := s.now()
	switch action {
	case ActionClose:
		if endCol != "" {
			if err := update(endCol, now); err != nil {
				return false, nil
			}
		}
		if statusCol != "" {
			if err := update(statusCol, StatusClosed); err != nil {
				return false, nil
			}
		}

	case ActionReopen:
		if endCol != "" {
			if err := update(endCol, nil); err != nil {
				return false, nil
			}
		}
		if statusCol != "" {
			if err := update(statusCol, StatusOpen); err != nil {
				return false, nil
			}
		}

	case ActionSetEndDate:
		if params.EndDate == nil || endCol == "" {
			return false, nil
		}
		if err := update(endCol, *params.EndDate); err != nil {
			return false, nil
		}

	case ActionExtendDays:
		if params.Days == nil || endCol == "" {
			return false, nil
		}
		base, ok := s.extendBase(ctx, tx, cols, pkCol, endCol, auctionID)
		if !ok {
			return false, nil
		}
		if err := update(endCol, base.Add(time.Duration(*params.Days)*24*time.Hour)); err != nil {
			return false, nil
		}

	case ActionCancel:
		if statusCol != "" {
			if err := update(statusCol, StatusCancelled); err != nil {
				return false, nil
			}
		}
		if endCol != "" {
			if err := update(endCol, now); err != nil {
				return false, nil
			}
		}

	case ActionSetStatus:
		if params.Status == "" || statusCol == "" {
			return false, nil
		}
		if err := update(statusCol, params.Status); err != nil {
			return false, nil
		}

	default:
		return false, nil
	}

	if updated == 0 {
		return false, nil
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit housekeeping update: %w", err)
	}
	return true, nil
}

// extendBase resolves the date an extension counts from: the current end
// date, or the start date when no end is set.
func (s *Service) extendBase(ctx context.Context, q schema.Querier, cols schema.ColumnSet, pkCol, endCol string, auctionID int) (time.Time, bool) {
	startCol, _ := cols.PickExisting(startCandidates...)

	sel := []string{}
	if startCol != "" {
		sel = append(sel, schema.QuoteIdent(startCol))
	}
	sel = append(sel, schema.QuoteIdent(endCol))
	stmt := fmt.Sprintf("SELECT %s FROM auction WHERE %s = ?", strings.Join(sel, ", "), schema.QuoteIdent(pkCol))

	rows, err := q.QueryContext(ctx, stmt, auctionID)
	if err != nil {
		return time.Time{}, false
	}
	fetched, err := scanAll(rows)
	rows.Close()
	if err != nil || len(fetched) == 0 {
		return time.Time{}, false
	}

	row := fetched[0]
	if endCol != "" {
		if t := pickTime([]string{endCol}, row); t != nil {
			return *t, true
		}
	}
	if startCol != "" {
		if t := pickTime([]string{startCol}, row); t != nil {
			return *t, true
		}
	}
	return time.Time{}, false
}
