package session

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreCreateAndGet(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	sess := &Session{UserID: 42, UserType: "fan", Email: "a@x.com", Username: "alice"}
	if err := store.Create(ctx, sess); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if sess.ID == "" {
		t.Fatal("Create did not assign a session id")
	}

	got, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.UserID != 42 || got.Username != "alice" || got.Email != "a@x.com" {
		t.Fatalf("Get returned wrong session: %+v", got)
	}
	if !got.Authenticated() {
		t.Fatal("session with user id should be authenticated")
	}
}

func TestMemoryStoreGetUnknownID(t *testing.T) {
	store := NewMemoryStore(time.Hour)

	if _, err := store.Get(context.Background(), "no-such-session"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(time.Hour).(*memoryStore)
	ctx := context.Background()

	base := time.Now()
	store.now = func() time.Time { return base }

	sess := &Session{UserID: 1}
	if err := store.Create(ctx, sess); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	store.now = func() time.Time { return base.Add(2 * time.Hour) }
	if _, err := store.Get(ctx, sess.ID); err != ErrNotFound {
		t.Fatalf("expected expired session to be gone, got %v", err)
	}
}

func TestMemoryStoreSaveRefreshesTTL(t *testing.T) {
	store := NewMemoryStore(time.Hour).(*memoryStore)
	ctx := context.Background()

	base := time.Now()
	store.now = func() time.Time { return base }

	sess := &Session{UserID: 1}
	if err := store.Create(ctx, sess); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	// Save again at +50m; the session should then survive past the original deadline.
	store.now = func() time.Time { return base.Add(50 * time.Minute) }
	if err := store.Save(ctx, sess); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	store.now = func() time.Time { return base.Add(90 * time.Minute) }
	if _, err := store.Get(ctx, sess.ID); err != nil {
		t.Fatalf("refreshed session should still exist, got %v", err)
	}
}

func TestMemoryStoreDestroy(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	sess := &Session{UserID: 7}
	if err := store.Create(ctx, sess); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if err := store.Destroy(ctx, sess.ID); err != nil {
		t.Fatalf("Destroy returned error: %v", err)
	}
	if _, err := store.Get(ctx, sess.ID); err != ErrNotFound {
		t.Fatalf("expected destroyed session to be gone, got %v", err)
	}

	// Destroying again is not an error.
	if err := store.Destroy(ctx, sess.ID); err != nil {
		t.Fatalf("Destroy of absent session returned error: %v", err)
	}
}

func TestClearOTP(t *testing.T) {
	sess := &Session{
		UserID:      1,
		OTPEmail:    "a@x.com",
		OTP:         "123456",
		OTPIssuedAt: time.Now(),
	}
	sess.ClearOTP()
	if sess.OTPEmail != "" || sess.OTP != "" || !sess.OTPIssuedAt.IsZero() {
		t.Fatalf("ClearOTP left challenge fields set: %+v", sess)
	}
}
