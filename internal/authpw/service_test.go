package authpw

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"lexhaven/api/internal/store"
)

type fakeUserStore struct {
	users map[string]store.User // keyed by email
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]store.User{}}
}

func (f *fakeUserStore) CreateUser(_ context.Context, user store.User) (store.User, error) {
	if _, exists := f.users[user.Email]; exists {
		return store.User{}, store.ErrEmailTaken
	}
	f.users[user.Email] = user
	return user, nil
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (store.User, error) {
	user, ok := f.users[email]
	if !ok {
		return store.User{}, sql.ErrNoRows
	}
	return user, nil
}

func TestSignUpAndSignIn(t *testing.T) {
	svc := NewService(newFakeUserStore())
	ctx := context.Background()

	user, err := svc.SignUp(ctx, SignUpRequest{Email: "Jo@Example.com", Password: "correct horse", DisplayName: "Jo"})
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if user.ID == "" {
		t.Fatal("expected a generated user id")
	}
	if user.Email != "jo@example.com" {
		t.Errorf("email not normalized: %q", user.Email)
	}

	signedIn, err := svc.SignIn(ctx, SignInRequest{Email: "jo@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if signedIn.ID != user.ID {
		t.Errorf("expected same user, got %q vs %q", signedIn.ID, user.ID)
	}
}

func TestSignUpRejectsDuplicateEmail(t *testing.T) {
	svc := NewService(newFakeUserStore())
	ctx := context.Background()

	if _, err := svc.SignUp(ctx, SignUpRequest{Email: "jo@example.com", Password: "password1", DisplayName: "Jo"}); err != nil {
		t.Fatalf("first sign up: %v", err)
	}
	_, err := svc.SignUp(ctx, SignUpRequest{Email: "jo@example.com", Password: "password2", DisplayName: "Jo Again"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestSignUpRejectsShortPassword(t *testing.T) {
	svc := NewService(newFakeUserStore())
	if _, err := svc.SignUp(context.Background(), SignUpRequest{Email: "jo@example.com", Password: "short", DisplayName: "Jo"}); err == nil {
		t.Error("expected error for short password")
	}
}

func TestSignInWrongPassword(t *testing.T) {
	svc := NewService(newFakeUserStore())
	ctx := context.Background()

	if _, err := svc.SignUp(ctx, SignUpRequest{Email: "jo@example.com", Password: "password1", DisplayName: "Jo"}); err != nil {
		t.Fatalf("sign up: %v", err)
	}

	if _, err := svc.SignIn(ctx, SignInRequest{Email: "jo@example.com", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.SignIn(ctx, SignInRequest{Email: "nobody@example.com", Password: "password1"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
}
