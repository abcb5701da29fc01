package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("key", "value").
		From("cache_entries").
		Where(Eq("key", "sl_teams"), Eq("updated_at", int64(5))).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT key, value FROM cache_entries WHERE key = $1 AND updated_at = $2"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "sl_teams" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_QuestionPlaceholders(t *testing.T) {
	query, args, err := Select("value").
		From("cache_entries").
		Where(Eq("key", "sl_news")).
		PlaceholderFormat(Question).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT value FROM cache_entries WHERE key = ?"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "sl_news" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_RequiresColumnsAndTable(t *testing.T) {
	if _, _, err := Select().From("cache_entries").ToSQL(); err == nil {
		t.Fatalf("expected error without columns")
	}
	if _, _, err := Select("key").ToSQL(); err == nil {
		t.Fatalf("expected error without table")
	}
}

func TestInsertModel(t *testing.T) {
	row := struct {
		Key     string `db:"key"`
		Value   []byte `db:"value"`
		Ignored string
	}{Key: "sl_teams", Value: []byte("[]")}

	builder, err := InsertModel("cache_entries", row)
	if err != nil {
		t.Fatalf("insert model: %v", err)
	}
	query, args, err := builder.
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value").
		PlaceholderFormat(Question).
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO cache_entries (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "sl_teams" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpsertModel(t *testing.T) {
	row := struct {
		Key       string `db:"key"`
		Value     []byte `db:"value"`
		UpdatedAt int64  `db:"updated_at,omitempty"`
		internal  string `db:"internal"`
	}{Key: "sl_matches", Value: []byte("[]"), UpdatedAt: 42}

	builder, err := UpsertModel("cache_entries", row, "key")
	if err != nil {
		t.Fatalf("upsert model: %v", err)
	}
	query, args, err := builder.PlaceholderFormat(Question).ToSQL()
	if err != nil {
		t.Fatalf("build upsert query: %v", err)
	}

	wantQuery := "INSERT INTO cache_entries (key, value, updated_at) VALUES (?, ?, ?) " +
		"ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[2] != int64(42) {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, err := UpsertModel("cache_entries", row); err == nil {
		t.Fatalf("expected error without conflict columns")
	}
	if _, err := UpsertModel("cache_entries", struct{ Key string }{}, "key"); err == nil {
		t.Fatalf("expected error for a model without db columns")
	}
}

func TestDeleteBuilder(t *testing.T) {
	query, args, err := Delete("cache_entries").
		Where(Eq("key", "sl_players")).
		PlaceholderFormat(Question).
		ToSQL()
	if err != nil {
		t.Fatalf("build delete query: %v", err)
	}

	wantQuery := "DELETE FROM cache_entries WHERE key = ?"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "sl_players" {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := Delete("cache_entries").ToSQL(); err == nil {
		t.Fatalf("expected error for unconditional delete")
	}
}
