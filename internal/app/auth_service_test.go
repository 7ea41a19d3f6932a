package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"scholarchat/internal/model"
)

func newAuthFixture(t *testing.T) (*AuthService, *fakeUserStore, *fakeLedger) {
	t.Helper()
	users := &fakeUserStore{users: map[uint]*model.User{}}
	ledger := &fakeLedger{}
	svc := NewAuthService(users, ledger, "test-secret", time.Hour, 10, nil)
	return svc, users, ledger
}

func seedUser(t *testing.T, users *fakeUserStore, username, password string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		Role:         model.RoleMember,
	}
	require.NoError(t, users.Create(user))
	return user
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	registered, err := svc.Register(RegisterInput{
		Username: "carol",
		Email:    "Carol@Example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	require.NotEmpty(t, registered.Token)
	require.Equal(t, model.RoleMember, registered.User.Role)
	require.Equal(t, "carol@example.com", registered.User.Email)

	logged, err := svc.Login(LoginInput{Username: "carol", Password: "correct-horse"})
	require.NoError(t, err)
	require.NotEmpty(t, logged.Token)
}

func TestRegisterRejectsDuplicatesAndBadInput(t *testing.T) {
	svc, users, _ := newAuthFixture(t)
	seedUser(t, users, "dave", "some-password")

	_, err := svc.Register(RegisterInput{Username: "dave", Email: "other@example.com", Password: "long-enough"})
	require.ErrorIs(t, err, ErrUsernameExists)

	_, err = svc.Register(RegisterInput{Username: "dave2", Email: "dave@example.com", Password: "long-enough"})
	require.ErrorIs(t, err, ErrEmailExists)

	_, err = svc.Register(RegisterInput{Username: "eve", Email: "eve@example.com", Password: "short"})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Register(RegisterInput{Username: "mallory", Email: "m@example.com", Password: "long-enough", Role: model.RoleAdmin})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, users, _ := newAuthFixture(t)
	seedUser(t, users, "frank", "right-password")

	_, err := svc.Login(LoginInput{Username: "frank", Password: "wrong-password"})
	require.ErrorIs(t, err, ErrInvalidCredential)

	_, err = svc.Login(LoginInput{Username: "nobody", Password: "whatever"})
	require.ErrorIs(t, err, ErrInvalidCredential)
}

func TestLoginCreditsFirstDailyBonus(t *testing.T) {
	svc, users, ledger := newAuthFixture(t)
	user := seedUser(t, users, "grace", "pw-is-long")
	require.Nil(t, user.LastPointsCredited)

	result, err := svc.Login(LoginInput{Username: "grace", Password: "pw-is-long"})
	require.NoError(t, err)
	require.Equal(t, 10.0, result.BonusAwarded)
	require.Equal(t, 10.0, users.users[user.ID].HasherPoints)
	require.NotNil(t, users.users[user.ID].LastPointsCredited)

	require.Len(t, ledger.entries, 1)
	require.Equal(t, "daily_login_bonus", ledger.entries[0].Purpose)
	require.Equal(t, 10.0, ledger.entries[0].Credited)
}

func TestLoginSkipsBonusWithin24Hours(t *testing.T) {
	svc, users, ledger := newAuthFixture(t)
	user := seedUser(t, users, "heidi", "pw-is-long")
	recently := time.Now().Add(-2 * time.Hour)
	user.LastPointsCredited = &recently
	user.HasherPoints = 4

	result, err := svc.Login(LoginInput{Username: "heidi", Password: "pw-is-long"})
	require.NoError(t, err)
	require.Zero(t, result.BonusAwarded)
	require.Equal(t, 4.0, users.users[user.ID].HasherPoints)
	require.Empty(t, ledger.entries)
	require.NotNil(t, users.users[user.ID].LastLogin)
}

func TestLoginCreditsBonusAfter24Hours(t *testing.T) {
	svc, users, _ := newAuthFixture(t)
	user := seedUser(t, users, "ivan", "pw-is-long")
	yesterday := time.Now().Add(-25 * time.Hour)
	user.LastPointsCredited = &yesterday
	user.HasherPoints = 4

	result, err := svc.Login(LoginInput{Username: "ivan", Password: "pw-is-long"})
	require.NoError(t, err)
	require.Equal(t, 10.0, result.BonusAwarded)
	require.Equal(t, 14.0, users.users[user.ID].HasherPoints)
	require.True(t, users.users[user.ID].LastPointsCredited.After(yesterday))
}
