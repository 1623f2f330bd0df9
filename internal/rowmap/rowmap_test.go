package rowmap

import (
	"testing"
	"time"
)

func TestNormalize(t *testing.T) {
	cols := []string{"a_id", "a_s_price", "Title"}
	vals := []interface{}{int64(7), []byte("10.50"), []byte("Old Clock")}

	row := Normalize(cols, vals)

	if row["a_id"] != int64(7) {
		t.Errorf("Expected a_id 7, got %v", row["a_id"])
	}
	if row["a_s_price"] != "10.50" {
		t.Errorf("Byte slices should decode to strings, got %v", row["a_s_price"])
	}
	if row["Title"] != "Old Clock" {
		t.Errorf("Expected Title preserved with casing, got %v", row["Title"])
	}
}

func TestPickFirst_ExactBeatsSubstring(t *testing.T) {
	// "a" matches key "A" exactly (case-insensitive) and must win over the
	// substring match on "ab", whatever the map order.
	row := map[string]interface{}{"A": 1, "ab": 2}

	for i := 0; i < 50; i++ {
		v, ok := PickFirst([]string{"a", "b"}, row)
		if !ok || v != 1 {
			t.Fatalf("Expected exact match value 1, got %v (ok=%v)", v, ok)
		}
	}
}

func TestPickFirst_SubstringFallback(t *testing.T) {
	row := map[string]interface{}{"a_e_date": "2025-01-01", "a_id": 3}

	v, ok := PickFirst([]string{"end_date", "a_e"}, row)
	if !ok || v != "2025-01-01" {
		t.Errorf("Expected substring match on a_e_date, got %v (ok=%v)", v, ok)
	}

	if _, ok := PickFirst([]string{"missing"}, row); ok {
		t.Error("Expected no match")
	}
}

func TestFormatMoney(t *testing.T) {
	SetCurrencySymbol("HK$")

	if got := FormatMoney(nil); got != nil {
		t.Errorf("FormatMoney(nil) should be nil, got %v", *got)
	}

	cases := []struct {
		in   interface{}
		want string
	}{
		{10.0, "HK$10.00"},
		{15.5, "HK$15.50"},
		{"12.345", "HK$12.35"},
		{[]byte("0"), "HK$0.00"},
		{7, "HK$7.00"},
	}
	for _, c := range cases {
		got := FormatMoney(c.in)
		if got == nil || *got != c.want {
			t.Errorf("FormatMoney(%v) = %v, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatMoney_CustomSymbol(t *testing.T) {
	SetCurrencySymbol("US$")
	defer SetCurrencySymbol("HK$")

	got := FormatMoney(3)
	if got == nil || *got != "US$3.00" {
		t.Errorf("Expected US$3.00, got %v", got)
	}
}

func TestDurationDays(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	// One hour of remainder counts as a full day
	end := start.Add(72*time.Hour + time.Hour)
	if d := DurationDays(&start, &end, nil); d == nil || *d != 4 {
		t.Errorf("Expected 4 days, got %v", d)
	}

	// Exact multiple does not round up
	end = start.Add(72 * time.Hour)
	if d := DurationDays(&start, &end, nil); d == nil || *d != 3 {
		t.Errorf("Expected 3 days, got %v", d)
	}

	// Never negative
	end = start.Add(-24 * time.Hour)
	if d := DurationDays(&start, &end, nil); d == nil || *d != 0 {
		t.Errorf("Expected 0 days for negative span, got %v", d)
	}

	// Computed-from-dates takes priority over the stored value
	stored := 9
	end = start.Add(24 * time.Hour)
	if d := DurationDays(&start, &end, &stored); d == nil || *d != 1 {
		t.Errorf("Expected computed 1 day to win over stored 9, got %v", d)
	}

	// Stored value only applies when a timestamp is missing
	if d := DurationDays(&start, nil, &stored); d == nil || *d != 9 {
		t.Errorf("Expected stored 9 days, got %v", d)
	}

	if d := DurationDays(nil, nil, nil); d != nil {
		t.Errorf("Expected nil duration, got %v", *d)
	}
}

func TestAsBool(t *testing.T) {
	truthy := []interface{}{true, 1, int64(1), []byte{1}, []byte("1"), "true", "Y", "yes"}
	for _, v := range truthy {
		if !AsBool(v) {
			t.Errorf("AsBool(%v) should be true", v)
		}
	}

	falsy := []interface{}{nil, false, 0, []byte{0}, []byte("0"), "no", "", "admin"}
	for _, v := range falsy {
		if AsBool(v) {
			t.Errorf("AsBool(%v) should be false", v)
		}
	}
}

func TestAsTime(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC)
	if got, ok := AsTime(now); !ok || !got.Equal(now) {
		t.Errorf("AsTime(time.Time) failed: %v %v", got, ok)
	}

	got, ok := AsTime("2025-06-01 08:30:00")
	if !ok || !got.Equal(now) {
		t.Errorf("AsTime(string) = %v (ok=%v)", got, ok)
	}

	if _, ok := AsTime("not a date"); ok {
		t.Error("Expected failure for garbage input")
	}
}

func TestAsInt(t *testing.T) {
	if n, ok := AsInt([]byte("42")); !ok || n != 42 {
		t.Errorf("AsInt bytes = %d (ok=%v)", n, ok)
	}
	if n, ok := AsInt("7.0"); !ok || n != 7 {
		t.Errorf("AsInt decimal string = %d (ok=%v)", n, ok)
	}
	if _, ok := AsInt(nil); ok {
		t.Error("AsInt(nil) should fail")
	}
}
