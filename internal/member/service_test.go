package member

import (
	"testing"

	"go_auction/internal/schema"
)

func TestBuildMember_NarrowShape(t *testing.T) {
	row := map[string]interface{}{
		"m_id":       int64(3),
		"m_userid":   "alice",
		"m_password": "$2a$10$hash",
		"m_name":     "Alice",
		"m_email":    "alice@example.com",
		"m_status":   "p",
	}

	m := buildMember(row)
	if m.ID != 3 || m.Username != "alice" || m.Password != "$2a$10$hash" {
		t.Errorf("core fields wrong: %+v", m)
	}
	if m.Status != StatusPending {
		t.Errorf("status must be normalized upper-case, got %q", m.Status)
	}
	if m.IsAdmin {
		t.Error("no admin column means not admin")
	}
}

func TestBuildMember_AltShape(t *testing.T) {
	row := map[string]interface{}{
		"user_id":  "17",
		"username": "bob",
		"password": "secret",
		"email":    "bob@example.com",
		"is_admin": []byte{1},
	}

	m := buildMember(row)
	if m.ID != 17 {
		t.Errorf("id = %d, want 17", m.ID)
	}
	if m.Username != "bob" || m.Email != "bob@example.com" {
		t.Errorf("fields wrong: %+v", m)
	}
	if !m.IsAdmin {
		t.Error("BIT(1) admin flag must decode as true")
	}
}

func TestBuildMember_RoleString(t *testing.T) {
	cases := []struct {
		row  map[string]interface{}
		want bool
	}{
		{map[string]interface{}{"m_id": 1, "m_role": "admin"}, true},
		{map[string]interface{}{"m_id": 1, "role": "Administrator"}, true},
		{map[string]interface{}{"m_id": 1, "role": []byte("admin")}, true},
		{map[string]interface{}{"m_id": 1, "m_role": "member"}, false},
		{map[string]interface{}{"m_id": 1, "role": nil}, false},
		// An explicit falsy flag does not win over an admin role.
		{map[string]interface{}{"m_id": 1, "is_admin": int64(0), "m_role": "admin"}, true},
	}
	for _, tc := range cases {
		if got := buildMember(tc.row).IsAdmin; got != tc.want {
			t.Errorf("IsAdmin for %v = %v, want %v", tc.row, got, tc.want)
		}
	}
}

func TestAdminUpdateShapes(t *testing.T) {
	flagCols := schema.ColumnSet{"m_is_admin": "bit", "m_userid": "varchar"}
	shapes := adminUpdateShapes(flagCols, true)
	if len(shapes) != 1 || shapes[0].col != "m_is_admin" || shapes[0].val != 1 {
		t.Errorf("flag grant shapes = %v", shapes)
	}

	roleCols := schema.ColumnSet{"m_role": "varchar", "m_userid": "varchar"}
	shapes = adminUpdateShapes(roleCols, true)
	if len(shapes) != 1 || shapes[0].col != "m_role" || shapes[0].val != "admin" {
		t.Errorf("role grant shapes = %v", shapes)
	}
	shapes = adminUpdateShapes(roleCols, false)
	if len(shapes) != 1 || shapes[0].col != "m_role" || shapes[0].val != nil {
		t.Errorf("role revoke must write NULL, got %v", shapes)
	}

	both := schema.ColumnSet{"is_admin": "tinyint", "role": "varchar"}
	shapes = adminUpdateShapes(both, true)
	if len(shapes) != 2 || shapes[0].col != "is_admin" || shapes[1].col != "role" {
		t.Errorf("flag shape must come first: %v", shapes)
	}
}

func TestSetAdmin_RoleSchemaRoundTrip(t *testing.T) {
	// A schema whose only admin representation is m_role: granting then
	// revoking must round-trip through the derived flag.
	cols := schema.ColumnSet{"m_id": "int", "m_userid": "varchar", "m_role": "varchar"}
	row := map[string]interface{}{"m_id": 5, "m_userid": "carol"}

	for _, sh := range adminUpdateShapes(cols, true) {
		row[sh.col] = sh.val
	}
	if !buildMember(row).IsAdmin {
		t.Fatal("granted m_role=admin must derive IsAdmin=true")
	}

	for _, sh := range adminUpdateShapes(cols, false) {
		row[sh.col] = sh.val
	}
	if buildMember(row).IsAdmin {
		t.Fatal("revoked (NULL) m_role must derive IsAdmin=false")
	}
}

func TestBuildMember_AdminFalsy(t *testing.T) {
	for _, v := range []interface{}{[]byte{0}, "0", "false", int64(0), nil} {
		m := buildMember(map[string]interface{}{"m_id": 1, "m_is_admin": v})
		if m.IsAdmin {
			t.Errorf("value %v must not grant admin", v)
		}
	}
	for _, v := range []interface{}{[]byte{1}, "1", "true", int64(1)} {
		m := buildMember(map[string]interface{}{"m_id": 1, "m_is_admin": v})
		if !m.IsAdmin {
			t.Errorf("value %v must grant admin", v)
		}
	}
}
