package store

import (
	"testing"

	"github.com/roach88/reflectd/internal/reflection"
)

func TestCompileFilter_EmptyFilterHasNoWhere(t *testing.T) {
	where, params := compileFilter(reflection.Filter{})
	if where != "" {
		t.Errorf("where = %q, want empty", where)
	}
	if len(params) != 0 {
		t.Errorf("params = %v, want none", params)
	}
}

func TestCompileFilter_ColumnsSortedAndParameterized(t *testing.T) {
	where, params := compileFilter(reflection.Filter{
		UserID:    "Phil",
		SessionID: "continuity",
		Seal:      "lawful",
	})

	want := " WHERE seal = ? AND session_id = ? AND user_id = ?"
	if where != want {
		t.Errorf("where = %q, want %q", where, want)
	}
	if len(params) != 3 {
		t.Fatalf("got %d params, want 3", len(params))
	}
	// Params follow sorted column order; user_id folded to lowercase.
	if params[0] != "lawful" || params[1] != "continuity" || params[2] != "phil" {
		t.Errorf("params = %v, want [lawful continuity phil]", params)
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"zero falls back to default", 0, DefaultQueryLimit},
		{"negative falls back to default", -7, DefaultQueryLimit},
		{"in range passes through", 42, 42},
		{"minimum passes through", MinQueryLimit, MinQueryLimit},
		{"maximum passes through", MaxQueryLimit, MaxQueryLimit},
		{"above maximum clamps", MaxQueryLimit + 1, MaxQueryLimit},
		{"huge clamps", 1 << 30, MaxQueryLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clampLimit(tt.limit); got != tt.want {
				t.Errorf("clampLimit(%d) = %d, want %d", tt.limit, got, tt.want)
			}
		})
	}
}
