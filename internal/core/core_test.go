package core

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"shopfront.dev/ecommerce-backend/internal/auth"
	"shopfront.dev/ecommerce-backend/internal/store"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newSeededStore(t *testing.T, hasher auth.PasswordHasher) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "core.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if _, err := s.Seed(context.Background(), hasher.Hash); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return s
}

func TestRegister_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	db := newSeededStore(t, auth.Plain{})
	svc := NewAccountService(db, auth.Plain{}, discard)
	username := "user-" + uuid.NewString()

	user, err := svc.Register(ctx, username, "pw")
	if err != nil {
		t.Fatalf("first register: %v", err)
	}
	if user.ID == 0 {
		t.Fatal("expected generated id")
	}

	if _, err := svc.Register(ctx, username, "pw2"); !errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("want ErrDuplicateUsername, got %v", err)
	}

	users, err := svc.ListUsers(ctx)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	count := 0
	for _, u := range users {
		if u.Username == username {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("want exactly one row for %s, got %d", username, count)
	}
}

func TestLogin_SeededUser(t *testing.T) {
	for _, tc := range []struct {
		name   string
		hasher auth.PasswordHasher
	}{
		{"plain", auth.Plain{}},
		{"bcrypt", auth.Bcrypt{Cost: 4}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			svc := NewAccountService(newSeededStore(t, tc.hasher), tc.hasher, discard)

			user, err := svc.Login(ctx, store.SeedUsername, store.SeedPassword)
			if err != nil {
				t.Fatalf("login: %v", err)
			}
			if user.ID != 1 {
				t.Fatalf("want seeded user id 1, got %d", user.ID)
			}

			if _, err := svc.Login(ctx, store.SeedUsername, "wrong"); !errors.Is(err, ErrInvalidPassword) {
				t.Fatalf("want ErrInvalidPassword, got %v", err)
			}
			if _, err := svc.Login(ctx, "nouser", "x"); !errors.Is(err, ErrUserNotFound) {
				t.Fatalf("want ErrUserNotFound, got %v", err)
			}
		})
	}
}

func TestRegisterThenLogin_Bcrypt(t *testing.T) {
	ctx := context.Background()
	hasher := auth.Bcrypt{Cost: 4}
	db := newSeededStore(t, hasher)
	svc := NewAccountService(db, hasher, discard)

	registered, err := svc.Register(ctx, "carol", "s3cret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	stored, err := db.GetUserByUsername(ctx, "carol")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if stored.Password == "s3cret" {
		t.Fatal("bcrypt mode stored the raw password")
	}
	loggedIn, err := svc.Login(ctx, "carol", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if loggedIn.ID != registered.ID {
		t.Fatalf("login id %d, registered id %d", loggedIn.ID, registered.ID)
	}
}

type faultyUserStore struct {
	existing  *store.User
	lookupErr error
	createErr error
	created   int
}

func (f *faultyUserStore) GetUserByUsername(ctx context.Context, username string) (*store.User, error) {
	return f.existing, f.lookupErr
}

func (f *faultyUserStore) CreateUser(ctx context.Context, username, password string) (*store.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created++
	return &store.User{ID: int64(f.created), Username: username, Password: password}, nil
}

func (f *faultyUserStore) ListUsers(ctx context.Context) ([]store.User, error) {
	return nil, errors.New("disk I/O error")
}

func TestRegister_StorageFaults(t *testing.T) {
	ctx := context.Background()
	for _, tc := range []struct {
		name  string
		store *faultyUserStore
	}{
		{"insert fails", &faultyUserStore{createErr: errors.New("database is locked")}},
		{"lost race", &faultyUserStore{createErr: store.ErrConflict}},
		{"lookup fails", &faultyUserStore{lookupErr: errors.New("disk I/O error")}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewAccountService(tc.store, auth.Plain{}, discard)
			_, err := svc.Register(ctx, "dave", "pw")
			if !errors.Is(err, ErrRegistrationFailed) {
				t.Fatalf("want ErrRegistrationFailed, got %v", err)
			}
			if err.Error() != ErrRegistrationFailed.Error() {
				t.Fatalf("storage detail leaked: %v", err)
			}
		})
	}
}

func TestListUsers_PropagatesStorageFault(t *testing.T) {
	svc := NewAccountService(&faultyUserStore{}, auth.Plain{}, discard)
	if _, err := svc.ListUsers(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestCatalog_ListProducts(t *testing.T) {
	ctx := context.Background()
	svc := NewCatalogService(newSeededStore(t, auth.Plain{}))

	all, err := svc.ListProducts(ctx, store.ProductFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != store.SeedProductCount() {
		t.Fatalf("want %d products, got %d", store.SeedProductCount(), len(all))
	}

	found, err := svc.ListProducts(ctx, store.ProductFilter{Search: "HEADPHONES"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 1 || found[0].Name != "Wireless Headphones" {
		t.Fatalf("unexpected search result %+v", found)
	}
}

func TestChat_SaveThenHistory(t *testing.T) {
	ctx := context.Background()
	svc := NewChatService(newSeededStore(t, auth.Plain{}))
	userID := uuid.NewString()
	start := time.Now().UTC()

	if _, err := svc.SaveMessage(ctx, userID, "where is my order?", "user"); err != nil {
		t.Fatalf("save: %v", err)
	}
	history, err := svc.History(ctx, userID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("want 1 message, got %d", len(history))
	}
	got := history[0]
	if got.Content != "where is my order?" || got.MessageType != "user" {
		t.Fatalf("unexpected message %+v", got)
	}
	if got.Timestamp.Before(start) {
		t.Fatalf("timestamp %v earlier than save start %v", got.Timestamp, start)
	}

	// Any type string is stored as given.
	if _, err := svc.SaveMessage(ctx, userID, "beep", "system"); err != nil {
		t.Fatalf("save unusual type: %v", err)
	}
	history, err = svc.History(ctx, userID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 || history[1].MessageType != "system" {
		t.Fatalf("unexpected history %+v", history)
	}

	empty, err := svc.History(ctx, "")
	if err != nil {
		t.Fatalf("empty user id: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("want no messages for empty user id, got %d", len(empty))
	}
}

func TestLogin_PlainRowUnderBcryptLogsThroughServiceLogger(t *testing.T) {
	ctx := context.Background()
	// Seeded in plain mode, then served with bcrypt enabled.
	db := newSeededStore(t, auth.Plain{})
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	svc := NewAccountService(db, auth.Bcrypt{Cost: 4}, log)

	if _, err := svc.Login(ctx, store.SeedUsername, store.SeedPassword); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("want ErrInvalidPassword, got %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "stored password could not be verified") || !strings.Contains(out, "user_id=1") {
		t.Fatalf("expected warning on the service logger, got %q", out)
	}
	if strings.Contains(out, store.SeedPassword) {
		t.Fatalf("password leaked into logs: %q", out)
	}
}
