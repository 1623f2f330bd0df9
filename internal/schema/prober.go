package schema

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Querier is the subset of database/sql used by the prober and the
// dynamic query builders. Both *sql.Conn and *sql.Tx satisfy it.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// ColumnSet maps lower-cased column names to their lower-cased data type
// as reported by the information schema.
type ColumnSet map[string]string

// Has reports whether the column exists.
func (cs ColumnSet) Has(name string) bool {
	_, ok := cs[strings.ToLower(name)]
	return ok
}

// PickExisting returns the first candidate present in the set.
func (cs ColumnSet) PickExisting(candidates ...string) (string, bool) {
	for _, c := range candidates {
		if cs.Has(c) {
			return strings.ToLower(c), true
		}
	}
	return "", false
}

// IsInteger reports whether the column has an integer-like type.
func (cs ColumnSet) IsInteger(name string) bool {
	switch cs[strings.ToLower(name)] {
	case "int", "bigint", "smallint", "tinyint", "mediumint":
		return true
	}
	return false
}

// Columns probes INFORMATION_SCHEMA for the live column set of a table
// in the current database. A missing table yields an empty set and no
// error; only connection-level failures propagate.
func Columns(ctx context.Context, q Querier, table string) (ColumnSet, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT COLUMN_NAME, DATA_TYPE FROM INFORMATION_SCHEMA.COLUMNS WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?",
		table)
	if err != nil {
		return nil, fmt.Errorf("failed to probe columns of %s: %w", table, err)
	}
	defer rows.Close()

	cols := ColumnSet{}
	for rows.Next() {
		var name, dtype string
		if err := rows.Scan(&name, &dtype); err != nil {
			return nil, fmt.Errorf("failed to scan column probe row: %w", err)
		}
		cols[strings.ToLower(name)] = strings.ToLower(dtype)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read column probe rows: %w", err)
	}
	return cols, nil
}

// EnsureColumn makes a best-effort attempt to add a column when it is
// absent. Returns true when the column exists afterwards. DDL failures
// (permissions, locks, concurrent DDL) are logged and swallowed; the
// caller falls back to whatever shapes already exist.
func EnsureColumn(ctx context.Context, q Querier, logger *logrus.Entry, table, column, definition string) bool {
	cols, err := Columns(ctx, q, table)
	if err != nil {
		return false
	}
	if cols.Has(column) {
		return true
	}

	stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", QuoteIdent(table), QuoteIdent(column), definition)
	if _, err := q.ExecContext(ctx, stmt); err != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"table":  table,
			"column": column,
		}).Debug("best-effort ADD COLUMN failed")
		return false
	}

	logger.WithFields(logrus.Fields{
		"table":  table,
		"column": column,
	}).Info("added missing column")
	return true
}

// QuoteIdent backtick-quotes an identifier that originated from a probe
// or a candidate-name list. Identifiers containing backticks are never
// legitimate here.
func QuoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "") + "`"
}
