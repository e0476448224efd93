package repository

import (
	"testing"
)

func TestBuildLikeConditionByDialectSQLite(t *testing.T) {
	got, count := buildLikeConditionByDialect("sqlite", []string{"name", " ", "slug"})
	want := "LOWER(name) LIKE ? OR LOWER(slug) LIKE ?"
	if got != want {
		t.Fatalf("sqlite like condition mismatch, want %s got %s", want, got)
	}
	if count != 2 {
		t.Fatalf("sqlite like arg count mismatch, want 2 got %d", count)
	}
}

func TestBuildLikeConditionByDialectPostgres(t *testing.T) {
	got, count := buildLikeConditionByDialect("postgres", []string{"name", "slug", "description"})
	want := "name ILIKE ? OR slug ILIKE ? OR description ILIKE ?"
	if got != want {
		t.Fatalf("postgres like condition mismatch, want %s got %s", want, got)
	}
	if count != 3 {
		t.Fatalf("postgres like arg count mismatch, want 3 got %d", count)
	}
}

func TestRepeatLikeArgs(t *testing.T) {
	args := repeatLikeArgs("%rose%", 3)
	if len(args) != 3 {
		t.Fatalf("unexpected arg count: %d", len(args))
	}
	for _, arg := range args {
		if arg != "%rose%" {
			t.Fatalf("unexpected arg: %v", arg)
		}
	}
}
