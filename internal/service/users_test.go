package service

import (
	"testing"
	"time"

	"estate-api/db"
	"estate-api/internal/apperr"
	"estate-api/pkg/security"
	"estate-api/pkg/validators"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testSecret = []byte("test-secret")

func newUserService(t *testing.T) *UserService {
	t.Helper()

	database, err := db.New("sqlite", ":memory:")
	require.NoError(t, err)

	// Cheap parameters, the real ones take a while per hash
	argon := &security.ArgonHash{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

	return NewUserService(database, argon, testSecret, time.Hour, zap.NewNop())
}

func TestRegister(t *testing.T) {
	s := newUserService(t)
	ctx := testContext(t)

	u, err := s.Register(ctx, RegisterInput{Email: " jane@example.com ", Password: "correct horse"})
	require.NoError(t, err)
	assert.Len(t, u.ID, 16)
	assert.Equal(t, "jane@example.com", u.Email)
	assert.Equal(t, "jane", u.Username)
	assert.NotEqual(t, "correct horse", u.PasswordHash)

	_, err = s.Register(ctx, RegisterInput{Email: "jane@example.com", Password: "another one"})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	named, err := s.Register(ctx, RegisterInput{Email: "bob@example.com", Password: "correct horse", Username: "bobby"})
	require.NoError(t, err)
	assert.Equal(t, "bobby", named.Username)
}

func TestRegisterRejectsBadInput(t *testing.T) {
	s := newUserService(t)

	tests := []struct {
		name string
		in   RegisterInput
		want error
	}{
		{"no email", RegisterInput{Password: "correct horse"}, validators.ErrEmailEmpty},
		{"bad email", RegisterInput{Email: "not-an-email", Password: "correct horse"}, validators.ErrEmailInvalid},
		{"short password", RegisterInput{Email: "a@example.com", Password: "short"}, validators.ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Register(testContext(t), tt.in)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
		})
	}
}

func TestLogin(t *testing.T) {
	s := newUserService(t)
	ctx := testContext(t)

	u, err := s.Register(ctx, RegisterInput{Email: "jane@example.com", Password: "correct horse"})
	require.NoError(t, err)

	token, got, err := s.Login(ctx, "jane@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	userID, err := security.ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, userID)

	_, _, err = s.Login(ctx, "jane@example.com", "wrong horse")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, _, err = s.Login(ctx, "nobody@example.com", "correct horse")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, _, err = s.Login(ctx, "", "")
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}

func TestMeAndByID(t *testing.T) {
	s := newUserService(t)
	ctx := testContext(t)

	u, err := s.Register(ctx, RegisterInput{Email: "jane@example.com", Password: "correct horse", Phone: "+351 912 000 000"})
	require.NoError(t, err)

	me, err := s.Me(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "+351 912 000 000", me.Phone)

	pub, err := s.ByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, pub.ID)
	assert.Equal(t, "jane", pub.Username)

	_, err = s.ByID(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestLoginUpgradesOldHashes(t *testing.T) {
	s := newUserService(t)
	ctx := testContext(t)

	u, err := s.Register(ctx, RegisterInput{Email: "jane@example.com", Password: "correct horse"})
	require.NoError(t, err)

	s.Argon = &security.ArgonHash{Memory: 8 * 1024, Iterations: 2, Parallelism: 1, SaltLength: 16, KeyLength: 32}

	_, _, err = s.Login(ctx, "jane@example.com", "correct horse")
	require.NoError(t, err)

	stored, err := s.Me(ctx, u.ID)
	require.NoError(t, err)
	assert.NotEqual(t, u.PasswordHash, stored.PasswordHash)
	assert.Contains(t, stored.PasswordHash, "t=2,")
	assert.False(t, s.Argon.NeedsRehash(stored.PasswordHash))

	_, _, err = s.Login(ctx, "jane@example.com", "correct horse")
	assert.NoError(t, err)
}

func TestEmailIgnoresCase(t *testing.T) {
	s := newUserService(t)
	ctx := testContext(t)

	u, err := s.Register(ctx, RegisterInput{Email: "Jane.Doe@Example.COM", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, "jane.doe@example.com", u.Email)

	_, err = s.Register(ctx, RegisterInput{Email: "jane.doe@example.com", Password: "correct horse"})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, got, err := s.Login(ctx, " JANE.DOE@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}
