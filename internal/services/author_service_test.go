package services

import (
	"context"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	author := env.newAuthor(t, "alice")
	assert.NotEqual(t, "s3cret-pass", author.Password)
	assert.False(t, author.IsStaff)
	assert.True(t, author.IsActive)

	byName, err := env.authors.Authenticate(ctx, LoginInput{Login: "alice", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, author.ID, byName.ID)
	assert.NotNil(t, byName.LastLogin)

	byEmail, err := env.authors.Authenticate(ctx, LoginInput{Login: "ALICE@example.org", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, author.ID, byEmail.ID)

	_, err = env.authors.Authenticate(ctx, LoginInput{Login: "alice", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrBadCredentials)
	_, err = env.authors.Authenticate(ctx, LoginInput{Login: "nobody", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.newAuthor(t, "alice")

	_, err := env.authors.Register(ctx, SignupInput{
		Username: "alice", Email: "other@example.org", Password1: "s3cret-pass", Password2: "s3cret-pass",
	})
	assert.Equal(t, ErrUsernameTaken.Error(), FieldErrors(err)["username"])

	_, err = env.authors.Register(ctx, SignupInput{
		Username: "alice2", Email: "alice@example.org", Password1: "s3cret-pass", Password2: "s3cret-pass",
	})
	assert.Equal(t, ErrEmailTaken.Error(), FieldErrors(err)["email"])

	_, err = env.authors.Register(ctx, SignupInput{
		Username: "bad name", Email: "b@example.org", Password1: "12345678", Password2: "87654321",
	})
	fields := FieldErrors(err)
	assert.Contains(t, fields, "username")
	assert.Contains(t, fields, "password1")
	assert.Contains(t, fields, "password2")
}

func TestRegisterWithPhoto(t *testing.T) {
	env := newTestEnv(t)
	author, err := env.authors.Register(context.Background(), SignupInput{
		Username: "painter", Email: "painter@example.org",
		Password1: "s3cret-pass", Password2: "s3cret-pass",
		Description: "I paint", Photo: pngUpload(t, 800, 800),
	})
	require.NoError(t, err)
	assert.Contains(t, author.ProfilePhoto, "profiles_photo/")
}

func TestRegisterRejectsOversizedPhoto(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.authors.Register(context.Background(), SignupInput{
		Username: "bomber", Email: "bomber@example.org",
		Password1: "s3cret-pass", Password2: "s3cret-pass",
		Photo: hugePNGUpload(t),
	})
	require.Error(t, err)
	assert.Contains(t, FieldErrors(err), "profile_photo")

	var count int64
	require.NoError(t, env.db.Model(&models.Author{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.newAuthor(t, "alice")
	env.newAuthor(t, "bob")

	updated, err := env.authors.UpdateProfile(ctx, alice, ProfileInput{
		Username: "alice_w", Email: "alice@example.org", Description: "Writer",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice_w", updated.Username)

	stored, err := env.authors.Get(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Writer", stored.Description)

	_, err = env.authors.UpdateProfile(ctx, stored, ProfileInput{Username: "bob", Email: "alice@example.org"})
	assert.Contains(t, FieldErrors(err), "username")
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.newAuthor(t, "alice")

	err := env.authors.ChangePassword(ctx, alice, PasswordChangeInput{
		OldPassword: "wrong", NewPassword1: "n3w-password", NewPassword2: "n3w-password",
	})
	assert.Contains(t, FieldErrors(err), "old_password")

	require.NoError(t, env.authors.ChangePassword(ctx, alice, PasswordChangeInput{
		OldPassword: "s3cret-pass", NewPassword1: "n3w-password", NewPassword2: "n3w-password",
	}))

	_, err = env.authors.Authenticate(ctx, LoginInput{Login: "alice", Password: "n3w-password"})
	assert.NoError(t, err)
}

func TestProfileCountsAllPosts(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.newAuthor(t, "alice")
	env.newPost(t, alice, "One", models.StatusPublished)
	env.newPost(t, alice, "Two", models.StatusDraft)

	profile, err := env.authors.Profile(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), profile.TotalPosts)

	_, err = env.authors.Profile(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEnsureStaffIsIdempotent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	require.NoError(t, env.authors.EnsureStaff(ctx, "admin", "admin@example.com", "adm1n-pass"))
	require.NoError(t, env.authors.EnsureStaff(ctx, "admin", "admin@example.com", "other-pass"))

	staff, err := env.authors.Authenticate(ctx, LoginInput{Login: "admin", Password: "adm1n-pass"})
	require.NoError(t, err)
	assert.True(t, staff.IsStaff)
}
