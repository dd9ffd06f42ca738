package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Tomlord1122/taskflow/internal/auth"
	"github.com/Tomlord1122/taskflow/internal/repository"
	"github.com/Tomlord1122/taskflow/internal/testutil"
)

func newUserService(t *testing.T) UserService {
	t.Helper()
	db := testutil.NewDB(t)
	svc, err := NewUserService(repository.NewGormUserRepository(db), auth.NewPasswordHasher(bcrypt.MinCost))
	require.NoError(t, err)
	return svc
}

func register(username, email, password string) RegisterRequest {
	return RegisterRequest{Username: username, Email: email, Password: password, PasswordConfirm: password}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	alice, err := svc.Register(ctx, register("alice", "alice@x.com", "correct-horse-42"))
	require.NoError(t, err)
	assert.NotZero(t, alice.ID)

	_, err = svc.Register(ctx, register("bob", "alice@x.com", "battery-staple-7"))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("email"))
	assert.Equal(t, []string{"An account with this email already exists."}, verr.For("email"))
	assert.False(t, verr.Has("username"))

	// email comparison ignores case and surrounding space
	_, err = svc.Register(ctx, register("carol", "  ALICE@X.com ", "battery-staple-7"))
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("email"))
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, register("alice", "alice@x.com", "correct-horse-42"))
	require.NoError(t, err)

	_, err = svc.Register(ctx, register("ALICE", "other@x.com", "correct-horse-42"))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"A user with that username already exists."}, verr.For("username"))
}

func TestRegister_Rules(t *testing.T) {
	tests := []struct {
		name  string
		req   RegisterRequest
		field string
		msg   string
	}{
		{
			name:  "missing username",
			req:   register("", "a@x.com", "correct-horse-42"),
			field: "username",
			msg:   "This field is required.",
		},
		{
			name:  "bad username characters",
			req:   register("al ice", "a@x.com", "correct-horse-42"),
			field: "username",
			msg:   "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.",
		},
		{
			name:  "bad email",
			req:   register("alice", "not-an-email", "correct-horse-42"),
			field: "email",
			msg:   "Enter a valid email address.",
		},
		{
			name:  "passwords differ",
			req:   RegisterRequest{Username: "alice", Email: "a@x.com", Password: "correct-horse-42", PasswordConfirm: "correct-horse-43"},
			field: "password2",
			msg:   "The two password fields didn't match.",
		},
		{
			name:  "missing confirmation",
			req:   RegisterRequest{Username: "alice", Email: "a@x.com", Password: "correct-horse-42"},
			field: "password2",
			msg:   "This field is required.",
		},
		{
			name:  "too short",
			req:   register("alice", "a@x.com", "x9!k"),
			field: "password2",
			msg:   "This password is too short. It must contain at least 8 characters.",
		},
		{
			name:  "entirely numeric",
			req:   register("alice", "a@x.com", "90817263545"),
			field: "password2",
			msg:   "This password is entirely numeric.",
		},
		{
			name:  "similar to username",
			req:   register("maximilian", "m@x.com", "maximilian99"),
			field: "password2",
			msg:   "The password is too similar to the username.",
		},
		{
			name:  "too common",
			req:   register("alice", "a@x.com", "sunshine"),
			field: "password2",
			msg:   "This password is too common.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newUserService(t)
			_, err := svc.Register(context.Background(), tt.req)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.For(tt.field), tt.msg)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	created, err := svc.Register(ctx, register("alice", "alice@x.com", "correct-horse-42"))
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		u, err := svc.Authenticate(ctx, "alice", "correct-horse-42")
		require.NoError(t, err)
		assert.Equal(t, created.ID, u.ID)
		assert.Equal(t, "alice@x.com", u.Email)
	})

	t.Run("unknown user and wrong password look the same", func(t *testing.T) {
		_, errUnknown := svc.Authenticate(ctx, "mallory", "correct-horse-42")
		_, errWrong := svc.Authenticate(ctx, "alice", "wrong-password")
		assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
		assert.ErrorIs(t, errWrong, ErrInvalidCredentials)
		assert.Equal(t, errUnknown.Error(), errWrong.Error())
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "", "")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestGetUser(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	created, err := svc.Register(ctx, register("alice", "alice@x.com", "correct-horse-42"))
	require.NoError(t, err)

	u, err := svc.GetUser(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	_, err = svc.GetUser(ctx, created.ID+1)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
