package store

import (
	"testing"

	"github.com/magolabs/aimaster/internal/database"
)

func setupUserTestDB(t *testing.T) *UserStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewUserStore(db)
}

func TestUserCreateAndGet(t *testing.T) {
	us := setupUserTestDB(t)

	u, err := us.Create("mago@example.com", "hash123")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.Email != "mago@example.com" {
		t.Errorf("email = %q, want %q", u.Email, "mago@example.com")
	}
	if u.Credits != 0 {
		t.Errorf("credits = %d, want 0 for new user", u.Credits)
	}

	got, err := us.GetByEmail("mago@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got == nil || got.ID != u.ID {
		t.Fatalf("get by email = %+v, want id %d", got, u.ID)
	}
	if got.PasswordHash != "hash123" {
		t.Errorf("password hash = %q, want %q", got.PasswordHash, "hash123")
	}
}

func TestUserDuplicateEmail(t *testing.T) {
	us := setupUserTestDB(t)

	if _, err := us.Create("dup@example.com", "h1"); err != nil {
		t.Fatalf("create user: %v", err)
	}
	_, err := us.Create("dup@example.com", "h2")
	if err == nil {
		t.Fatal("expected error for duplicate email")
	}
	if !IsUniqueViolation(err) {
		t.Errorf("expected unique violation, got %v", err)
	}
}

func TestUserNotFound(t *testing.T) {
	us := setupUserTestDB(t)

	u, err := us.GetByID(999)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u != nil {
		t.Error("expected nil for non-existent user")
	}

	u, err = us.GetByEmail("nobody@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if u != nil {
		t.Error("expected nil for unknown email")
	}
}

func TestUserAddCredits(t *testing.T) {
	us := setupUserTestDB(t)

	u, _ := us.Create("credits@example.com", "h")

	total, err := us.AddCredits(u.ID, 5)
	if err != nil {
		t.Fatalf("add credits: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}

	total, err = us.AddCredits(u.ID, 3)
	if err != nil {
		t.Fatalf("add credits: %v", err)
	}
	if total != 8 {
		t.Errorf("total = %d, want 8", total)
	}

	credits, err := us.GetCredits(u.ID)
	if err != nil {
		t.Fatalf("get credits: %v", err)
	}
	if credits != 8 {
		t.Errorf("credits = %d, want 8", credits)
	}
}

func TestUserCreditsNeverNegative(t *testing.T) {
	us := setupUserTestDB(t)

	u, _ := us.Create("floor@example.com", "h")

	// The schema enforces the non-negative invariant even if a caller
	// slips a negative amount past validation.
	if _, err := us.AddCredits(u.ID, -1); err == nil {
		t.Error("expected check constraint error for negative balance")
	}
	credits, _ := us.GetCredits(u.ID)
	if credits != 0 {
		t.Errorf("credits = %d, want 0 after failed update", credits)
	}
}
