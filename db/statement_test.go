package db

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  StatementCode
	}{
		{
			name:  "lowercase select",
			query: "select * from t",
			want:  StatementSelect,
		},
		{
			name:  "select with leading whitespace",
			query: "   SELECT id FROM users",
			want:  StatementSelect,
		},
		{
			name:  "insert",
			query: "INSERT INTO t VALUES (1)",
			want:  StatementInsert,
		},
		{
			name:  "update with leading whitespace",
			query: "  update t set x=1",
			want:  StatementUpdate,
		},
		{
			name:  "delete",
			query: "DELETE FROM t WHERE id = 1",
			want:  StatementDelete,
		},
		{
			name:  "create table",
			query: "CREATE TABLE t (id INTEGER)",
			want:  StatementCreate,
		},
		{
			name:  "drop",
			query: "drop table t",
			want:  StatementDrop,
		},
		{
			name:  "alter",
			query: "ALTER TABLE t ADD COLUMN x TEXT",
			want:  StatementAlter,
		},
		{
			name:  "replace into",
			query: "REPLACE INTO t VALUES (1)",
			want:  StatementReplace,
		},
		{
			name:  "truncate",
			query: "TRUNCATE t",
			want:  StatementTruncate,
		},
		{
			// Write keywords match anywhere, so an embedded keyword flags
			// the whole statement. Conservative on purpose.
			name:  "select with embedded drop in comment",
			query: "select * from t -- DROP TABLE x",
			want:  StatementDrop,
		},
		{
			name:  "pragma is other",
			query: "PRAGMA journal_mode",
			want:  StatementOther,
		},
		{
			name:  "empty string is other",
			query: "",
			want:  StatementOther,
		},
		{
			name:  "explain is other",
			query: "EXPLAIN QUERY PLAN SELECT 1",
			want:  StatementOther,
		},
		{
			name:  "keyword requires word boundary",
			query: "select * from updates",
			want:  StatementSelect,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.query)
			if got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestStatementCode_IsMutation(t *testing.T) {
	mutations := []StatementCode{
		StatementInsert, StatementReplace, StatementUpdate, StatementDelete,
		StatementCreate, StatementDrop, StatementAlter, StatementTruncate,
	}
	for _, code := range mutations {
		if !code.IsMutation() {
			t.Errorf("%v.IsMutation() = false, want true", code)
		}
	}

	if StatementSelect.IsMutation() {
		t.Error("StatementSelect.IsMutation() = true, want false")
	}
	if StatementOther.IsMutation() {
		t.Error("StatementOther.IsMutation() = true, want false")
	}
}
