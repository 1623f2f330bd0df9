// Package member implements schema-adaptive reads and writes for the
// member account table. Like the auction paths, nothing about the
// physical layout is assumed: the live column set is probed per call and
// candidate-name lists resolve the logical fields.
package member

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go_auction/internal/rowmap"
	"go_auction/internal/schema"

	"github.com/sirupsen/logrus"
)

// ErrUsernameTaken reports a registration against an existing username.
var ErrUsernameTaken = errors.New("username already taken")

// Member statuses. New registrations are pending until confirmed.
const (
	StatusPending = "P"
	StatusActive  = "A"
)

// Member is the normalized view of one account row.
type Member struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Password string `json:"-"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Status   string `json:"status"`
	IsAdmin  bool   `json:"is_admin"`
}

// Tables tried in order for account storage.
var memberTables = []string{"member", "users"}

// Candidate column names for the logical account fields.
var (
	pkCandidates       = []string{"m_id", "id", "member_id", "user_id"}
	usernameCandidates = []string{"m_userid", "username", "user_name", "m_username", "login"}
	passwordCandidates = []string{"m_password", "password", "password_hash", "pass", "pwd"}
	nameCandidates     = []string{"m_name", "name", "full_name", "display_name"}
	emailCandidates    = []string{"m_email", "email", "mail"}
	statusCandidates   = []string{"m_status", "status", "state"}
	adminCandidates    = []string{"m_is_admin", "is_admin", "admin", "isadmin"}
	roleCandidates     = []string{"role", "m_role"}
)

// Service owns member reads and writes.
type Service struct {
	pool   *sql.DB
	logger *logrus.Entry
	now    func() time.Time
}

// NewService creates a new member service
func NewService(pool *sql.DB, logger *logrus.Entry) *Service {
	return &Service{
		pool:   pool,
		logger: logger.WithField("component", "member"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

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

// buildMember maps a normalized row onto the canonical Member.
func buildMember(row map[string]interface{}) Member {
	var m Member
	if v, ok := rowmap.PickFirst(pkCandidates, row); ok {
		if id, ok := rowmap.AsInt(v); ok {
			m.ID = id
		}
	}
	if v, ok := rowmap.PickFirst(usernameCandidates, row); ok && v != nil {
		m.Username = rowmap.AsString(v)
	}
	if v, ok := rowmap.PickFirst(passwordCandidates, row); ok && v != nil {
		m.Password = rowmap.AsString(v)
	}
	if v, ok := rowmap.PickFirst(nameCandidates, row); ok && v != nil {
		m.Name = rowmap.AsString(v)
	}
	if v, ok := rowmap.PickFirst(emailCandidates, row); ok && v != nil {
		m.Email = rowmap.AsString(v)
	}
	if v, ok := rowmap.PickFirst(statusCandidates, row); ok && v != nil {
		m.Status = strings.ToUpper(strings.TrimSpace(rowmap.AsString(v)))
	}
	if v, ok := rowmap.PickFirst(adminCandidates, row); ok {
		m.IsAdmin = adminTruthy(v)
	}
	if !m.IsAdmin {
		if v, ok := rowmap.PickFirst(roleCandidates, row); ok {
			m.IsAdmin = adminTruthy(v)
		}
	}
	return m
}

// adminTruthy decides whether a flag or role value grants admin. Role
// schemas store a string like "admin" or "administrator"; flag schemas
// store a boolean or an integer.
func adminTruthy(v interface{}) bool {
	if v == nil {
		return false
	}
	s := strings.ToLower(strings.TrimSpace(rowmap.AsString(v)))
	if strings.Contains(s, "admin") {
		return true
	}
	return rowmap.AsBool(v)
}

// locate finds the first account table whose probe yields a column set
// containing a username column. Returns table, its columns, the username
// and primary-key column names.
func locate(ctx context.Context, q schema.Querier) (string, schema.ColumnSet, string, string, bool) {
	for _, table := range memberTables {
		cols, err := schema.Columns(ctx, q, table)
		if err != nil || len(cols) == 0 {
			continue
		}
		userCol, ok := cols.PickExisting(usernameCandidates...)
		if !ok {
			continue
		}
		pkCol, ok := cols.PickExisting(pkCandidates...)
		if !ok {
			pkCol = "m_id"
		}
		return table, cols, userCol, pkCol, true
	}
	return "", nil, "", "", false
}

// GetByUsername returns the account for a username, nil when no account
// table matches or the username is unknown.
func (s *Service) GetByUsername(ctx context.Context, username string) (*Member, error) {
	conn, err := s.pool.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire database connection: %w", err)
	}
	defer conn.Close()

	table, _, userCol, _, ok := locate(ctx, conn)
	if !ok {
		return nil, nil
	}

	stmt := fmt.Sprintf("SELECT * FROM %s WHERE %s = ?", schema.QuoteIdent(table), schema.QuoteIdent(userCol))
	rows, err := conn.QueryContext(ctx, stmt, username)
	if err != nil {
		return nil, nil
	}
	fetched, err := scanAll(rows)
	rows.Close()
	if err != nil || len(fetched) == 0 {
		return nil, nil
	}
	m := buildMember(fetched[0])
	return &m, nil
}

// GetByID returns the account for an id, nil when unknown.
func (s *Service) GetByID(ctx context.Context, id int) (*Member, error) {
	conn, err := s.pool.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire database connection: %w", err)
	}
	defer conn.Close()

	table, _, _, pkCol, ok := locate(ctx, conn)
	if !ok {
		return nil, nil
	}

	stmt := fmt.Sprintf("SELECT * FROM %s WHERE %s = ?", schema.QuoteIdent(table), schema.QuoteIdent(pkCol))
	rows, err := conn.QueryContext(ctx, stmt, id)
	if err != nil {
		return nil, nil
	}
	fetched, err := scanAll(rows)
	rows.Close()
	if err != nil || len(fetched) == 0 {
		return nil, nil
	}
	m := buildMember(fetched[0])
	return &m, nil
}

// GetAll lists every account, ordered by primary key.
func (s *Service) GetAll(ctx context.Context) ([]Member, error) {
	conn, err := s.pool.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire database connection: %w", err)
	}
	defer conn.Close()

	table, _, _, pkCol, ok := locate(ctx, conn)
	if !ok {
		return []Member{}, nil
	}

	stmt := fmt.Sprintf("SELECT * FROM %s ORDER BY %s ASC", schema.QuoteIdent(table), schema.QuoteIdent(pkCol))
	rows, err := conn.QueryContext(ctx, stmt)
	if err != nil {
		return []Member{}, nil
	}
	fetched, err := scanAll(rows)
	rows.Close()
	if err != nil {
		return []Member{}, nil
	}

	out := make([]Member, 0, len(fetched))
	for _, row := range fetched {
		out = append(out, buildMember(row))
	}
	return out, nil
}

// Create registers an account with a pre-hashed password. New accounts
// are pending when the schema tracks a status, active implicitly when it
// does not. Returns the new id, or ErrUsernameTaken.
func (s *Service) Create(ctx context.Context, username, passwordHash, name, email string) (int, error) {
	conn, err := s.pool.Conn(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to acquire database connection: %w", err)
	}
	defer conn.Close()

	table, cols, userCol, pkCol, ok := locate(ctx, conn)
	if !ok {
		return 0, fmt.Errorf("no account table found")
	}

	var existing interface{}
	dupStmt := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? LIMIT 1",
		schema.QuoteIdent(pkCol), schema.QuoteIdent(table), schema.QuoteIdent(userCol))
	if err := conn.QueryRowContext(ctx, dupStmt, username).Scan(&existing); err == nil {
		return 0, ErrUsernameTaken
	}

	insCols := []string{userCol}
	insVals := []interface{}{username}
	add := func(candidates []string, val interface{}) {
		if c, ok := cols.PickExisting(candidates...); ok && c != userCol {
			insCols = append(insCols, c)
			insVals = append(insVals, val)
		}
	}
	add(passwordCandidates, passwordHash)
	add(nameCandidates, name)
	add(emailCandidates, email)
	// No email means no confirmation mail can be sent, so the account
	// starts active instead of pending.
	status := StatusPending
	if email == "" {
		status = StatusActive
	}
	add(statusCandidates, status)

	quoted := make([]string, len(insCols))
	placeholders := make([]string, len(insCols))
	for i, c := range insCols {
		quoted[i] = schema.QuoteIdent(c)
		placeholders[i] = "?"
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		schema.QuoteIdent(table), strings.Join(quoted, ", "), strings.Join(placeholders, ", "))

	res, err := conn.ExecContext(ctx, stmt, insVals...)
	if err != nil {
		s.logger.WithError(err).WithField("table", table).Error("member insert failed")
		return 0, fmt.Errorf("failed to create member: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil && id > 0 {
		return int(id), nil
	}
	var raw interface{}
	if err := conn.QueryRowContext(ctx, "SELECT LAST_INSERT_ID()").Scan(&raw); err == nil {
		if id, ok := rowmap.AsInt(raw); ok && id > 0 {
			return id, nil
		}
	}
	lookup := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? ORDER BY %s DESC LIMIT 1",
		schema.QuoteIdent(pkCol), schema.QuoteIdent(table), schema.QuoteIdent(userCol), schema.QuoteIdent(pkCol))
	if err := conn.QueryRowContext(ctx, lookup, username).Scan(&raw); err == nil {
		if id, ok := rowmap.AsInt(raw); ok && id > 0 {
			return id, nil
		}
	}
	return 0, fmt.Errorf("could not determine new member id")
}

// Confirm flips a pending account to active. False when the schema has
// no status column or the id matches nothing.
func (s *Service) Confirm(ctx context.Context, id int) (bool, error) {
	conn, err := s.pool.Conn(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to acquire database connection: %w", err)
	}
	defer conn.Close()

	table, cols, _, pkCol, ok := locate(ctx, conn)
	if !ok {
		return false, nil
	}
	statusCol, ok := cols.PickExisting(statusCandidates...)
	if !ok {
		return false, nil
	}

	stmt := fmt.Sprintf("UPDATE %s SET %s = ? WHERE %s = ?",
		schema.QuoteIdent(table), schema.QuoteIdent(statusCol), schema.QuoteIdent(pkCol))
	res, err := conn.ExecContext(ctx, stmt, StatusActive, id)
	if err != nil {
		return false, nil
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// SetAdmin grants or revokes the admin flag, adding the flag column to
// legacy schemas on first use.
func (s *Service) SetAdmin(ctx context.Context, id int, admin bool) (bool, error) {
	conn, err := s.pool.Conn(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to acquire database connection: %w", err)
	}
	defer conn.Close()

	table, cols, _, pkCol, ok := locate(ctx, conn)
	if !ok {
		return false, nil
	}

	hasFlag := cols.Has("m_is_admin") || cols.Has("is_admin")
	if _, hasRole := cols.PickExisting(roleCandidates...); !hasFlag && !hasRole {
		if schema.EnsureColumn(ctx, conn, s.logger, table, "m_is_admin", "BIT(1) NOT NULL DEFAULT 0") {
			cols["m_is_admin"] = "bit"
		}
	}

	for _, sh := range adminUpdateShapes(cols, admin) {
		stmt := fmt.Sprintf("UPDATE %s SET %s = ? WHERE %s = ?",
			schema.QuoteIdent(table), schema.QuoteIdent(sh.col), schema.QuoteIdent(pkCol))
		res, err := conn.ExecContext(ctx, stmt, sh.val, id)
		if err != nil {
			continue
		}
		if n, _ := res.RowsAffected(); n > 0 {
			return true, nil
		}
	}
	return false, nil
}

type adminShape struct {
	col string
	val interface{}
}

// adminUpdateShapes builds the update shapes SetAdmin tries in order:
// the boolean flag columns with 1/0, then the role-string columns with
// "admin" on grant and NULL on revoke. Only columns the live schema has
// are emitted.
func adminUpdateShapes(cols schema.ColumnSet, admin bool) []adminShape {
	flag := 0
	var roleVal interface{}
	if admin {
		flag = 1
		roleVal = "admin"
	}

	shapes := []adminShape{}
	for _, c := range []string{"m_is_admin", "is_admin"} {
		if cols.Has(c) {
			shapes = append(shapes, adminShape{c, flag})
		}
	}
	for _, c := range roleCandidates {
		if cols.Has(c) {
			shapes = append(shapes, adminShape{c, roleVal})
		}
	}
	return shapes
}
