package auction

import (
	"testing"
	"time"

	"go_auction/internal/rowmap"
	"go_auction/internal/schema"
)

func TestDeriveStatus_ExplicitWins(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)

	cases := []struct {
		raw  interface{}
		want string
	}{
		{"closed", StatusClosed},
		{"C", StatusClosed},
		{"cancelled", StatusCancelled},
		{"cancel", StatusCancelled},
		{"open", StatusOpen},
		{"O", StatusOpen},
		{"archived", "archived"},
		{"  closed  ", StatusClosed},
	}
	for _, tc := range cases {
		// The end date is in the future on purpose: an explicit status
		// must win over the date-based derivation.
		got := deriveStatus(tc.raw, &future, now)
		if got != tc.want {
			t.Errorf("deriveStatus(%v) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestDeriveStatus_DateFallback(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	if got := deriveStatus(nil, &past, now); got != StatusClosed {
		t.Errorf("past end date: got %q, want %q", got, StatusClosed)
	}
	if got := deriveStatus(nil, &now, now); got != StatusClosed {
		t.Errorf("end date == now: got %q, want %q", got, StatusClosed)
	}
	if got := deriveStatus(nil, &future, now); got != StatusOpen {
		t.Errorf("future end date: got %q, want %q", got, StatusOpen)
	}
	if got := deriveStatus(nil, nil, now); got != StatusOpen {
		t.Errorf("no end date: got %q, want %q", got, StatusOpen)
	}
	if got := deriveStatus("   ", &past, now); got != StatusClosed {
		t.Errorf("blank status falls back to date: got %q, want %q", got, StatusClosed)
	}
}

func TestEffectivePrice(t *testing.T) {
	rowmap.SetCurrencySymbol("HK$")

	if got := effectivePrice(150, true, "100"); got == nil || *got != "HK$150.00" {
		t.Errorf("bid wins: got %v", got)
	}
	if got := effectivePrice(0, false, "100"); got == nil || *got != "HK$100.00" {
		t.Errorf("stored price: got %v", got)
	}
	if got := effectivePrice(0, false, nil); got != nil {
		t.Errorf("no price at all: got %v, want nil", *got)
	}
}

func TestBidAllowed(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)
	past := now.Add(-time.Hour)

	cases := []struct {
		name    string
		row     map[string]interface{}
		highest float64
		hasBid  bool
		amount  float64
		want    bool
	}{
		{
			name: "accepted above starting price",
			row:  map[string]interface{}{"a_e_date": future, "a_s_price": "100"},
			amount: 150, want: true,
		},
		{
			name:    "accepted above highest bid",
			row:     map[string]interface{}{"a_e_date": future, "a_s_price": "100"},
			highest: 200, hasBid: true,
			amount: 250, want: true,
		},
		{
			name: "ended auction takes no bids",
			row:  map[string]interface{}{"a_e_date": past, "a_s_price": "100"},
			amount: 999, want: false,
		},
		{
			name: "end date exactly now takes no bids",
			row:  map[string]interface{}{"a_e_date": now, "a_s_price": "100"},
			amount: 999, want: false,
		},
		{
			name: "closed status takes no bids",
			row:  map[string]interface{}{"a_e_date": future, "a_status": "closed", "a_s_price": "100"},
			amount: 999, want: false,
		},
		{
			name: "cancelled status takes no bids",
			row:  map[string]interface{}{"a_e_date": future, "a_status": "Cancelled", "a_s_price": "100"},
			amount: 999, want: false,
		},
		{
			name: "equal to starting price is not enough",
			row:  map[string]interface{}{"a_e_date": future, "a_s_price": "100"},
			amount: 100, want: false,
		},
		{
			name:    "equal to highest bid is not enough",
			row:     map[string]interface{}{"a_e_date": future, "a_s_price": "100"},
			highest: 200, hasBid: true,
			amount: 200, want: false,
		},
		{
			name:    "above starting price but below highest bid",
			row:     map[string]interface{}{"a_e_date": future, "a_s_price": "100"},
			highest: 300, hasBid: true,
			amount: 150, want: false,
		},
		{
			name: "no end date and no status stays open",
			row:  map[string]interface{}{"a_s_price": "100"},
			amount: 101, want: true,
		},
	}
	for _, tc := range cases {
		got := bidAllowed(tc.row, tc.highest, tc.hasBid, tc.amount, now)
		if got != tc.want {
			t.Errorf("%s: bidAllowed = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestInsertColumns_Dedup(t *testing.T) {
	ins := newInsertColumns()
	ins.add("title", "first")
	ins.add("Title", "second")
	ins.add("i_m_id", 7)

	if len(ins.cols) != 2 {
		t.Fatalf("expected 2 columns, got %d: %v", len(ins.cols), ins.cols)
	}
	if ins.vals[0] != "first" {
		t.Errorf("first value must win, got %v", ins.vals[0])
	}

	stmt := ins.statement("item")
	want := "INSERT INTO `item` (`title`, `i_m_id`) VALUES (?, ?)"
	if stmt != want {
		t.Errorf("statement = %q, want %q", stmt, want)
	}
}

func TestAddCoerced(t *testing.T) {
	cols := schema.ColumnSet{"i_cat": "int", "category": "varchar"}

	ins := newInsertColumns()
	addCoerced(ins, cols, []string{"i_cat", "cat", "category"}, "12")
	if len(ins.cols) != 1 || ins.cols[0] != "i_cat" || ins.vals[0] != 12 {
		t.Errorf("integer column must receive an int: %v %v", ins.cols, ins.vals)
	}

	ins = newInsertColumns()
	addCoerced(ins, cols, []string{"i_cat"}, "Antiques")
	if len(ins.cols) != 0 {
		t.Errorf("uncoercible value must skip the column, got %v", ins.cols)
	}

	ins = newInsertColumns()
	addCoerced(ins, cols, []string{"category"}, "Antiques")
	if len(ins.cols) != 1 || ins.vals[0] != "Antiques" {
		t.Errorf("text column takes the string as-is: %v %v", ins.cols, ins.vals)
	}

	ins = newInsertColumns()
	addCoerced(ins, cols, []string{"i_cat"}, "")
	if len(ins.cols) != 0 {
		t.Errorf("empty value adds nothing, got %v", ins.cols)
	}
}

func TestPrefixedAndSuffixedColumn(t *testing.T) {
	cols := schema.ColumnSet{"i_name": "varchar", "i_detail": "text", "thing_id": "int"}

	if got := prefixedColumn(cols, "i_", "title", "name"); got != "i_name" {
		t.Errorf("prefixedColumn = %q, want i_name", got)
	}
	if got := prefixedColumn(cols, "x_", "title"); got != "" {
		t.Errorf("no match must return empty, got %q", got)
	}
	if got := suffixedColumn(cols, "_id"); got != "thing_id" {
		t.Errorf("suffixedColumn = %q, want thing_id", got)
	}
}

func TestPickTimeAndPickInt(t *testing.T) {
	row := map[string]interface{}{
		"a_e_date": "2025-06-01 12:00:00",
		"duration": "7",
		"garbage":  "not a date",
	}

	tm := pickTime([]string{"a_e_date"}, row)
	if tm == nil || tm.Year() != 2025 || tm.Month() != 6 {
		t.Errorf("pickTime = %v", tm)
	}
	if pickTime([]string{"garbage"}, row) != nil {
		t.Error("unparseable time must yield nil")
	}
	if pickTime([]string{"missing"}, row) != nil {
		t.Error("missing column must yield nil")
	}

	n := pickInt([]string{"duration"}, row)
	if n == nil || *n != 7 {
		t.Errorf("pickInt = %v", n)
	}
	if pickInt([]string{"missing"}, row) != nil {
		t.Error("missing int must yield nil")
	}
}
