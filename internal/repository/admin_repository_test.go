package repository

import (
	"testing"
	"time"

	"github.com/storefront-next/internal/models"
)

func TestAdminRepositoryRotatePassword(t *testing.T) {
	repo := NewAdminRepository(openRepositoryTestDB(t))
	admin := &models.Admin{Username: "owner", PasswordHash: "old-hash", TokenVersion: 3}
	if err := repo.Create(admin); err != nil {
		t.Fatalf("create admin failed: %v", err)
	}

	updated, err := repo.RotatePassword(admin.ID, "new-hash")
	if err != nil || updated == nil {
		t.Fatalf("rotate password failed: %v", err)
	}
	if updated.PasswordHash != "new-hash" || updated.TokenVersion != 4 {
		t.Fatalf("unexpected admin after rotate: hash=%s version=%d", updated.PasswordHash, updated.TokenVersion)
	}

	missing, err := repo.RotatePassword(admin.ID+100, "x")
	if err != nil || missing != nil {
		t.Fatalf("unknown admin should return nil, got=%v err=%v", missing, err)
	}
}

func TestAdminRepositoryLookupAndList(t *testing.T) {
	repo := NewAdminRepository(openRepositoryTestDB(t))
	for _, name := range []string{"b-admin", "a-admin"} {
		if err := repo.Create(&models.Admin{Username: name, PasswordHash: "secret"}); err != nil {
			t.Fatalf("create %s failed: %v", name, err)
		}
	}

	found, err := repo.GetByUsername("a-admin")
	if err != nil || found == nil || found.ID != 2 {
		t.Fatalf("get by username failed: %+v err=%v", found, err)
	}
	if missing, err := repo.GetByID(99); err != nil || missing != nil {
		t.Fatalf("missing id should return nil, got=%v err=%v", missing, err)
	}

	at := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	if err := repo.TouchLogin(found.ID, at); err != nil {
		t.Fatalf("touch login failed: %v", err)
	}

	admins, err := repo.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(admins) != 2 || admins[0].Username != "b-admin" {
		t.Fatalf("list should be ordered by id, got %+v", admins)
	}
	if admins[0].PasswordHash != "" {
		t.Fatalf("list must not load password hash")
	}
	if admins[1].LastLoginAt == nil || !admins[1].LastLoginAt.Equal(at) {
		t.Fatalf("last login not recorded: %v", admins[1].LastLoginAt)
	}
}
