package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("id", "stake_cents").
		From("challenges").
		Where(Eq("status", "open"), Lt("expires_at", "2026-01-01"), IsNotNull("expires_at")).
		OrderBy("expires_at ASC").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, stake_cents FROM challenges WHERE status = $1 AND expires_at < $2 AND expires_at IS NOT NULL ORDER BY expires_at ASC LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "open" || args[1] != "2026-01-01" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_ForUpdateAndIn(t *testing.T) {
	query, args, err := Select("id").
		From("players").
		Where(InStrings("id", []string{"a", "b"}), Expr("(rating >= ?) = ?", 600, true)).
		ForUpdate().
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id FROM players WHERE id IN ($1, $2) AND (rating >= $3) = $4 FOR UPDATE"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 {
		t.Fatalf("unexpected args: %+v", args)
	}

	empty, _, _ := Select("id").From("players").Where(In("id", nil)).ToSQL()
	if empty != "SELECT id FROM players WHERE 1=0" {
		t.Fatalf("unexpected empty IN query: %s", empty)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("venues").
		Columns("id", "name").
		Values("v1", "Hall").
		Suffix("ON CONFLICT (id) DO NOTHING").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO venues (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "v1" || args[1] != "Hall" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateModel_CompareAndSwap(t *testing.T) {
	type row struct {
		ID      string `db:"id"`
		Points  int    `db:"points"`
		Version int64  `db:"version"`
		ignored string
	}

	b, err := UpdateModel("players", row{ID: "p1", Points: 12, Version: 3, ignored: "x"}, "id", "version")
	if err != nil {
		t.Fatalf("UpdateModel error: %v", err)
	}
	query, args, err := b.
		SetExpr("version", "version + 1").
		Where(Eq("id", "p1"), Eq("version", int64(3))).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE players SET points = $1, version = version + 1 WHERE id = $2 AND version = $3"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != 12 || args[1] != "p1" || args[2] != int64(3) {
		t.Fatalf("unexpected args: %+v", args)
	}
}
