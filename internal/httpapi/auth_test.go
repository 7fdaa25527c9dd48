package httpapi

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"konterhp/backend/internal/domain"
)

type userStoreStub struct {
	mu      sync.Mutex
	users   map[string]domain.UserAccount
	updates int
}

func (s *userStoreStub) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.users == nil {
		s.users = make(map[string]domain.UserAccount)
	}
	s.users[user.Username] = user
	return nil
}

func (s *userStoreStub) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.UserAccount, 0, len(s.users))
	for _, user := range s.users {
		out = append(out, user)
	}
	return out, nil
}

func (s *userStoreStub) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := s.users[username]
	user.Password = password
	s.users[username] = user
	s.updates++
	return nil
}

func TestAuthManagerUpgradesLegacyPlainPassword(t *testing.T) {
	store := &userStoreStub{
		users: map[string]domain.UserAccount{
			"admin": {
				ID:        "u-admin",
				Username:  "admin",
				Password:  "admin123",
				Role:      "admin",
				Active:    true,
				CreatedAt: time.Now().UTC(),
			},
		},
	}

	manager := NewAuthManager("test-secret", time.Hour, "123456", store)
	_, err := manager.Login(domain.LoginRequest{
		Username: "admin",
		Password: "admin123",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	users, err := store.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list users failed: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(users))
	}
	if users[0].Password == "admin123" {
		t.Fatalf("expected password to be upgraded from plain-text")
	}
	if !strings.HasPrefix(users[0].Password, "$2") {
		t.Fatalf("expected bcrypt password hash, got %s", users[0].Password)
	}
	if store.updates == 0 {
		t.Fatalf("expected the upgraded hash to be written back to the store")
	}
}

func TestCreateStaffStoresPasswordHash(t *testing.T) {
	store := &userStoreStub{
		users: map[string]domain.UserAccount{
			"admin": {
				ID:        "u-admin",
				Username:  "admin",
				Password:  "admin123",
				Role:      "admin",
				Active:    true,
				CreatedAt: time.Now().UTC(),
			},
		},
	}

	manager := NewAuthManager("test-secret", time.Hour, "123456", store)
	staff, err := manager.CreateStaff(domain.StaffCreateRequest{
		Username: "kasirbaru",
		Password: "pass1234",
	})
	if err != nil {
		t.Fatalf("create staff failed: %v", err)
	}
	if staff.Username != "kasirbaru" {
		t.Fatalf("unexpected username %s", staff.Username)
	}
	if staff.Role != "admin" {
		t.Fatalf("expected staff accounts to get the admin role, got %s", staff.Role)
	}

	users, err := store.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list users failed: %v", err)
	}
	var found *domain.UserAccount
	for i := range users {
		if users[i].Username == "kasirbaru" {
			found = &users[i]
			break
		}
	}
	if found == nil {
		t.Fatalf("expected staff account to be saved")
	}
	if found.Password == "pass1234" {
		t.Fatalf("expected staff password to be hashed")
	}
	if !strings.HasPrefix(found.Password, "$2") {
		t.Fatalf("expected bcrypt hash prefix, got %s", found.Password)
	}

	_, err = manager.Login(domain.LoginRequest{
		Username: "kasirbaru",
		Password: "pass1234",
	})
	if err != nil {
		t.Fatalf("login with hashed staff password failed: %v", err)
	}
}

func TestCreateStaffRejectsWeakInput(t *testing.T) {
	manager := NewAuthManager("test-secret", time.Hour, "123456", &userStoreStub{})

	if _, err := manager.CreateStaff(domain.StaffCreateRequest{Username: "abc", Password: "pass1234"}); err == nil {
		t.Fatalf("expected short username to be rejected")
	}
	if _, err := manager.CreateStaff(domain.StaffCreateRequest{Username: "kasirbaru", Password: "12345"}); err == nil {
		t.Fatalf("expected short password to be rejected")
	}
	if _, err := manager.CreateStaff(domain.StaffCreateRequest{Username: "kasirbaru", Password: "pass1234"}); err != nil {
		t.Fatalf("create staff failed: %v", err)
	}

	// Usernames are folded to lower case, so this collides with kasirbaru.
	_, err := manager.CreateStaff(domain.StaffCreateRequest{Username: "KasirBaru", Password: "pass9999"})
	if err == nil {
		t.Fatalf("expected duplicate username to be rejected")
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected already exists error, got %v", err)
	}
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	store := &userStoreStub{
		users: map[string]domain.UserAccount{
			"kasirlama": {
				ID:        "u-old",
				Username:  "kasirlama",
				Password:  "rahasia1",
				Role:      "admin",
				Active:    false,
				CreatedAt: time.Now().UTC(),
			},
		},
	}
	manager := NewAuthManager("test-secret", time.Hour, "123456", store)

	if _, err := manager.Login(domain.LoginRequest{Username: "kasirlama", Password: "rahasia1"}); err == nil {
		t.Fatalf("expected inactive account login to fail")
	}
}

func TestParseTokenRoundTrip(t *testing.T) {
	store := &userStoreStub{
		users: map[string]domain.UserAccount{
			"owner": {
				ID:        "u-owner",
				Username:  "owner",
				Password:  "owner123",
				Role:      "superuser",
				Active:    true,
				CreatedAt: time.Now().UTC(),
			},
		},
	}
	manager := NewAuthManager("test-secret", time.Hour, "123456", store)

	resp, err := manager.Login(domain.LoginRequest{Username: "owner", Password: "owner123"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	actor, err := manager.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if actor.Username != "owner" {
		t.Fatalf("expected actor username owner, got %s", actor.Username)
	}
	if actor.Role != "superuser" {
		t.Fatalf("expected actor role superuser, got %s", actor.Role)
	}
	if actor.UserID != "u-owner" {
		t.Fatalf("expected actor id u-owner, got %s", actor.UserID)
	}

	if _, err := manager.ParseToken("not-a-token"); err == nil {
		t.Fatalf("expected garbage token to be rejected")
	}

	other := NewAuthManager("different-secret", time.Hour, "123456", nil)
	if _, err := other.ParseToken(resp.AccessToken); err == nil {
		t.Fatalf("expected token signed with another secret to be rejected")
	}
}

func TestOwnerPINIsHashedAndStillValidates(t *testing.T) {
	store := &userStoreStub{users: map[string]domain.UserAccount{}}
	manager := NewAuthManager("test-secret", time.Hour, "654321", store)

	if manager.ownerPIN == "654321" {
		t.Fatalf("expected owner pin to be stored as hash, got plain-text")
	}

	if !manager.ValidateOwnerPIN("654321") {
		t.Fatalf("expected owner pin validation to succeed")
	}

	if manager.ValidateOwnerPIN("111111") {
		t.Fatalf("expected wrong owner pin to fail")
	}
}
