// Package rowmap normalizes rows fetched from a schema whose column
// names are only known at runtime. It maps raw column/value pairs into a
// lookup-friendly form and extracts best-guess logical fields through
// ordered candidate-name lists.
package rowmap

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	symbolMu sync.RWMutex
	symbol   = "HK$"
)

// SetCurrencySymbol sets the process-wide currency prefix used by
// FormatMoney.
func SetCurrencySymbol(s string) {
	symbolMu.Lock()
	symbol = s
	symbolMu.Unlock()
}

// CurrencySymbol returns the configured currency prefix.
func CurrencySymbol() string {
	symbolMu.RLock()
	defer symbolMu.RUnlock()
	return symbol
}

// Normalize zips a column list and a value slice into a map. Keys keep
// their original casing; lookups through PickFirst are case-insensitive.
// Byte slices (the MySQL text protocol's string form) are decoded to
// strings so downstream coercions see one representation.
func Normalize(cols []string, vals []interface{}) map[string]interface{} {
	row := make(map[string]interface{}, len(cols))
	for i, col := range cols {
		if i >= len(vals) {
			break
		}
		v := vals[i]
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		row[col] = v
	}
	return row
}

// PickFirst looks a value up by trying candidate names in priority
// order: first as exact case-insensitive matches, then as
// case-insensitive substring matches against all keys. The two phases
// are separate so an exact match is never shadowed by a looser substring
// match occurring earlier in the candidate list.
func PickFirst(candidates []string, row map[string]interface{}) (interface{}, bool) {
	for _, cand := range candidates {
		for key, val := range row {
			if strings.EqualFold(key, cand) {
				return val, true
			}
		}
	}

	// Substring fallback over sorted keys so the result is stable
	// regardless of map iteration order.
	keys := make([]string, 0, len(row))
	for key := range row {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, cand := range candidates {
		lc := strings.ToLower(cand)
		for _, key := range keys {
			if strings.Contains(strings.ToLower(key), lc) {
				return row[key], true
			}
		}
	}
	return nil, false
}

// FormatMoney renders a numeric value as "<symbol><value>" with exactly
// two decimal places. A nil input yields nil, not a placeholder string.
func FormatMoney(v interface{}) *string {
	if v == nil {
		return nil
	}
	f, ok := AsFloat(v)
	if !ok {
		s := fmt.Sprintf("%v", v)
		return &s
	}
	s := fmt.Sprintf("%s%.2f", CurrencySymbol(), f)
	return &s
}

// DurationDays reconciles an auction duration in days. When both
// timestamps are known the computed value is authoritative: any nonzero
// remainder rounds up a full day, and the result is never negative.
// Only when either timestamp is missing does the explicit stored
// duration apply.
func DurationDays(start, end *time.Time, storedDays *int) *int {
	if start != nil && end != nil {
		d := int(math.Ceil(end.Sub(*start).Seconds() / 86400))
		if d < 0 {
			d = 0
		}
		return &d
	}
	if storedDays != nil {
		d := *storedDays
		return &d
	}
	return nil
}

// AsInt coerces a row value to int.
func AsInt(v interface{}) (int, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case int:
		return x, true
	case int32:
		return int(x), true
	case int64:
		return int(x), true
	case uint64:
		return int(x), true
	case float64:
		return int(x), true
	case []byte:
		return parseInt(string(x))
	case string:
		return parseInt(x)
	}
	return 0, false
}

func parseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	// Durations sometimes arrive as "7.0" from decimal columns
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f), true
	}
	return 0, false
}

// AsFloat coerces a row value to float64.
func AsFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case []byte:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(x)), 64)
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	}
	return 0, false
}

// AsTime coerces a row value to time.Time. String forms cover drivers
// that return DATETIME columns unparsed.
func AsTime(v interface{}) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, true
	case *time.Time:
		if x != nil {
			return *x, true
		}
	case []byte:
		return parseTime(string(x))
	case string:
		return parseTime(x)
	}
	return time.Time{}, false
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// AsBool coerces the admin-flag representations seen in the wild:
// booleans, numeric flags, BIT columns returned as bytes, and truthy
// strings.
func AsBool(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case int:
		return x != 0
	case int32:
		return x != 0
	case int64:
		return x != 0
	case float64:
		return x != 0
	case []byte:
		// BIT(1) arrives as a single raw byte, "0"/"1" as ASCII
		if len(x) == 1 {
			return x[0] != 0 && x[0] != '0'
		}
		return AsBool(string(x))
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "1", "true", "t", "yes", "y":
			return true
		}
		return false
	}
	return false
}

// AsString coerces a row value to its string form, empty when nil.
func AsString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	}
	return fmt.Sprintf("%v", v)
}
