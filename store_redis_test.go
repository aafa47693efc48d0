package authcore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) redis.UniversalClient {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return rdb
}

func TestRedisAccountsRoundTrip(t *testing.T) {
	store := NewRedisAccounts(newTestRedis(t))
	ctx := context.Background()

	account := &Account{
		ID:        "u1",
		Login:     "alice",
		Name:      "Alice",
		Role:      RoleAdmin,
		Email:     "alice@example.com",
		Confirmed: true,
	}
	if err := store.Save(ctx, account); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	byLogin, err := store.FindByLogin(ctx, "alice")
	if err != nil {
		t.Fatalf("FindByLogin failed: %v", err)
	}
	if byLogin == nil || byLogin.ID != "u1" || byLogin.Role != RoleAdmin {
		t.Fatalf("FindByLogin returned %+v", byLogin)
	}

	byEmail, err := store.FindByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("FindByEmail failed: %v", err)
	}
	if byEmail == nil || byEmail.ID != "u1" {
		t.Fatalf("FindByEmail returned %+v", byEmail)
	}

	if missing, _ := store.FindByLogin(ctx, "bob"); missing != nil {
		t.Fatalf("expected miss, got %+v", missing)
	}
}

func TestRedisAccountsReindexOnChange(t *testing.T) {
	store := NewRedisAccounts(newTestRedis(t))
	ctx := context.Background()

	account := &Account{ID: "u1", Login: "alice", Email: "alice@example.com"}
	if err := store.Save(ctx, account); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	account.Login = "alice2"
	account.Email = "alice2@example.com"
	if err := store.Save(ctx, account); err != nil {
		t.Fatalf("re-Save failed: %v", err)
	}

	if stale, _ := store.FindByLogin(ctx, "alice"); stale != nil {
		t.Fatal("old login index should be gone")
	}
	if stale, _ := store.FindByEmail(ctx, "alice@example.com"); stale != nil {
		t.Fatal("old email index should be gone")
	}
	if current, _ := store.FindByLogin(ctx, "alice2"); current == nil {
		t.Fatal("new login index missing")
	}
}

func TestRedisAccountsDelete(t *testing.T) {
	store := NewRedisAccounts(newTestRedis(t))
	ctx := context.Background()

	_ = store.Save(ctx, &Account{ID: "u1", Login: "alice", Email: "alice@example.com"})
	if err := store.Delete(ctx, "u1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if account, _ := store.FindByID(ctx, "u1"); account != nil {
		t.Fatal("account should be gone")
	}
	if account, _ := store.FindByLogin(ctx, "alice"); account != nil {
		t.Fatal("login index should be gone")
	}

	// Deleting again is a no-op.
	if err := store.Delete(ctx, "u1"); err != nil {
		t.Fatalf("second Delete failed: %v", err)
	}
}

func TestRedisTokensRoundTrip(t *testing.T) {
	store := NewRedisTokens(newTestRedis(t))
	ctx := context.Background()

	record := &TokenRecord{
		Value:     "tok-1",
		AccountID: "u1",
		Kind:      TokenRememberMe,
		ExpiresAt: time.Now().Add(time.Hour).UTC(),
	}
	if err := store.Save(ctx, record); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Find(ctx, "tok-1")
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if loaded == nil || loaded.AccountID != "u1" || loaded.Kind != TokenRememberMe {
		t.Fatalf("Find returned %+v", loaded)
	}

	if missing, _ := store.Find(ctx, "tok-2"); missing != nil {
		t.Fatalf("expected miss, got %+v", missing)
	}

	if err := store.Delete(ctx, "tok-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if gone, _ := store.Find(ctx, "tok-1"); gone != nil {
		t.Fatal("token should be gone")
	}
}

func TestRedisTokensDeleteByAccount(t *testing.T) {
	store := NewRedisTokens(newTestRedis(t))
	ctx := context.Background()
	expires := time.Now().Add(time.Hour).UTC()

	rows := []*TokenRecord{
		{Value: "r1", AccountID: "u1", Kind: TokenRememberMe, ExpiresAt: expires},
		{Value: "r2", AccountID: "u1", Kind: TokenRememberMe, ExpiresAt: expires},
		{Value: "c1", AccountID: "u1", Kind: TokenCSRF, ExpiresAt: expires},
		{Value: "r3", AccountID: "u2", Kind: TokenRememberMe, ExpiresAt: expires},
	}
	for _, row := range rows {
		if err := store.Save(ctx, row); err != nil {
			t.Fatalf("Save %s failed: %v", row.Value, err)
		}
	}

	if err := store.DeleteByAccount(ctx, "u1", TokenRememberMe); err != nil {
		t.Fatalf("DeleteByAccount failed: %v", err)
	}

	for _, value := range []string{"r1", "r2"} {
		if record, _ := store.Find(ctx, value); record != nil {
			t.Fatalf("%s should be gone", value)
		}
	}
	// Other kinds and other accounts are untouched.
	if record, _ := store.Find(ctx, "c1"); record == nil {
		t.Fatal("csrf row should survive")
	}
	if record, _ := store.Find(ctx, "r3"); record == nil {
		t.Fatal("other account's row should survive")
	}
}

// The engine runs unchanged on the shipped Redis adapters.
func TestEngineOnRedisStores(t *testing.T) {
	rdb := newTestRedis(t)

	engine, err := New().
		WithConfig(testConfig()).
		WithAccounts(NewRedisAccounts(rdb)).
		WithTokens(NewRedisTokens(rdb)).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	ctx := context.Background()
	hash, err := engine.hasher.Hash([]byte("correct-password"))
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	err = engine.accounts.Save(ctx, &Account{
		ID: "u1", Login: "alice", Email: "alice@example.com",
		PasswordHash: hash, Role: RoleUser, Confirmed: true,
	})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	key, _ := engine.IssueKey("10.0.0.1")
	principal, err := engine.Login(ctx, "10.0.0.1", "alice", "correct-password", key)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if principal.AccountID != "u1" {
		t.Fatalf("unexpected principal: %+v", principal)
	}

	value, err := engine.RememberMe(ctx, "u1")
	if err != nil {
		t.Fatalf("RememberMe failed: %v", err)
	}
	account, err := engine.AutoLogin(ctx, "10.0.0.1", []Cookie{{Name: "remember-me", Value: value}})
	if err != nil {
		t.Fatalf("AutoLogin failed: %v", err)
	}
	if account.ID != "u1" {
		t.Fatalf("auto-login resolved %+v", account)
	}
}
