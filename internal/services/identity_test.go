package services

import (
	"context"
	"testing"

	"github.com/localnerve/videohost/internal/models"
	th "github.com/localnerve/videohost/internal/testhelpers"
	"github.com/localnerve/videohost/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	assert.Empty(t, ValidatePassword("Testing1!"))
	assert.Equal(t, []string{
		"Passwords must be at least 6 characters.",
		"Passwords must have at least one digit ('0'-'9').",
		"Passwords must have at least one uppercase ('A'-'Z').",
	}, ValidatePassword("abc"))
}

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	db := th.NewTestDB(t)

	u, err := Register(ctx, db, RegisterInput{Email: "new@example.com", Password: "Secret1x", DisplayName: "Newbie"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.NotEqual(t, "Secret1x", u.PasswordHash)

	_, err = Register(ctx, db, RegisterInput{Email: "NEW@example.com", Password: "Secret1x", DisplayName: "Again"})
	require.ErrorIs(t, err, types.ErrConflict)

	got, err := Authenticate(ctx, db, "New@Example.com", "Secret1x")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, models.RoleUser, got.Role)

	_, err = Authenticate(ctx, db, "new@example.com", "wrong")
	assert.ErrorIs(t, err, types.ErrUnauthorized)
	_, err = Authenticate(ctx, db, "nobody@example.com", "Secret1x")
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = Authenticate(ctx, db, "", "")
	assert.ErrorIs(t, err, types.ErrBadRequest)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	db := th.NewTestDB(t)

	_, err := Register(ctx, db, RegisterInput{Email: "not-an-email", Password: "Secret1x", DisplayName: "x"})
	var ce *types.CustomError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 400, ce.Code)
	assert.Contains(t, ce.Errors, "Email must be a valid email address.")

	_, err = Register(ctx, db, RegisterInput{Email: "a@example.com", Password: "short", DisplayName: "x"})
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "Invalid password.", ce.Message)
	assert.NotEmpty(t, ce.Errors)
	assert.Zero(t, th.Count(t, db, &models.User{}))
}

func TestUpdateAccount(t *testing.T) {
	ctx := context.Background()
	db := th.NewTestDB(t)
	alice := th.CreateUser(t, db, "alice", models.RoleUser)
	th.CreateUser(t, db, "bob", models.RoleUser)

	view, err := UpdateAccount(ctx, db, alice.ID, AccountUpdate{DisplayName: "Alice A."})
	require.NoError(t, err)
	assert.Equal(t, "Alice A.", view.DisplayName)
	assert.Equal(t, "alice@example.com", view.Email)

	_, err = UpdateAccount(ctx, db, alice.ID, AccountUpdate{Email: "BOB@example.com"})
	assert.ErrorIs(t, err, types.ErrConflict)

	_, err = UpdateAccount(ctx, db, alice.ID, AccountUpdate{NewPassword: "Another1", CurrentPassword: "nope"})
	assert.ErrorIs(t, err, types.ErrUnauthorized)

	_, err = UpdateAccount(ctx, db, alice.ID, AccountUpdate{NewPassword: "Another1", CurrentPassword: th.TestPassword})
	require.NoError(t, err)
	_, err = Authenticate(ctx, db, "alice@example.com", "Another1")
	require.NoError(t, err)

	// a role cannot be changed through self service
	acct, err := GetAccount(ctx, db, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, acct.Role)

	_, err = UpdateAccount(ctx, db, 999, AccountUpdate{DisplayName: "ghost"})
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestGetUserProfile(t *testing.T) {
	ctx := context.Background()
	db := th.NewTestDB(t)
	alice := th.CreateUser(t, db, "alice", models.RoleUser)

	p, err := GetUserProfile(ctx, db, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", p.DisplayName)
	assert.False(t, p.RegistrationDate.IsZero())

	_, err = GetUserProfile(ctx, db, 999)
	assert.ErrorIs(t, err, types.ErrNotFound)
}
