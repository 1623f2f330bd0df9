package schema

import "testing"

func TestColumnSet_PickExisting(t *testing.T) {
	cs := ColumnSet{"a_id": "int", "a_s_price": "decimal", "title": "varchar"}

	col, ok := cs.PickExisting("id", "a_id", "auction_id")
	if !ok || col != "a_id" {
		t.Errorf("Expected a_id, got %q (ok=%v)", col, ok)
	}

	// First candidate present must win even when later ones also exist
	col, ok = cs.PickExisting("title", "a_id")
	if !ok || col != "title" {
		t.Errorf("Expected title, got %q (ok=%v)", col, ok)
	}

	if _, ok := cs.PickExisting("end_date", "a_e_date"); ok {
		t.Error("Expected no match for absent columns")
	}
}

func TestColumnSet_Has_CaseInsensitive(t *testing.T) {
	cs := ColumnSet{"m_is_admin": "bit"}
	if !cs.Has("M_IS_ADMIN") {
		t.Error("Has should be case-insensitive")
	}
}

func TestColumnSet_IsInteger(t *testing.T) {
	cs := ColumnSet{"i_cat": "int", "i_title": "varchar", "days": "tinyint"}
	if !cs.IsInteger("i_cat") || !cs.IsInteger("days") {
		t.Error("int/tinyint columns should report integer-like")
	}
	if cs.IsInteger("i_title") {
		t.Error("varchar column should not report integer-like")
	}
	if cs.IsInteger("missing") {
		t.Error("absent column should not report integer-like")
	}
}

func TestQuoteIdent(t *testing.T) {
	if got := QuoteIdent("a_id"); got != "`a_id`" {
		t.Errorf("QuoteIdent = %q", got)
	}
	if got := QuoteIdent("a`id"); got != "`aid`" {
		t.Errorf("QuoteIdent should strip backticks, got %q", got)
	}
}
