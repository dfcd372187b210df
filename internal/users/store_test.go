package users_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/hugh/docvault/internal/apperr"
	"github.com/hugh/docvault/internal/database/models"
	"github.com/hugh/docvault/internal/testutil"
	"github.com/hugh/docvault/internal/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	store := users.NewStore(db)
	ctx := testutil.TestContext(t)

	t.Run("forces viewer role and hashes password", func(t *testing.T) {
		user, err := store.Create(ctx, users.CreateInput{
			Email:    "alice@example.com",
			Password: "pw123",
			Name:     "Alice",
		})
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.Equal(t, models.RoleViewer, user.Role)
		assert.True(t, user.IsActive)
		assert.NotEqual(t, "pw123", user.PasswordHash)
		assert.True(t, users.CheckPassword("pw123", user.PasswordHash))
	})

	t.Run("duplicate email keeps the first user", func(t *testing.T) {
		input := users.CreateInput{Email: "dup@example.com", Password: "secret", Name: "First"}
		first, err := store.Create(ctx, input)
		require.NoError(t, err)

		input.Name = "Second"
		_, err = store.Create(ctx, input)
		assert.ErrorIs(t, err, users.ErrEmailTaken)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

		found, err := store.FindByEmail(ctx, "dup@example.com")
		require.NoError(t, err)
		assert.Equal(t, first.ID, found.ID)
		assert.Equal(t, "First", found.Name)
	})

	t.Run("required fields", func(t *testing.T) {
		_, err := store.Create(ctx, users.CreateInput{Email: "x@example.com", Name: "X"})
		require.Error(t, err)
		appErr := apperr.As(err)
		assert.Equal(t, apperr.KindValidation, appErr.Kind)
		assert.Equal(t, "Password is required", appErr.Message)

		_, err = store.Create(ctx, users.CreateInput{Password: "p", Name: "X"})
		assert.Equal(t, "Email is required", apperr.As(err).Message)

		_, err = store.Create(ctx, users.CreateInput{Email: "y@example.com", Password: "p", Name: "   "})
		assert.Equal(t, "Name is required", apperr.As(err).Message)

		_, err = store.Create(ctx, users.CreateInput{})
		appErr = apperr.As(err)
		assert.Len(t, appErr.Fields, 3)
	})

	t.Run("password longer than bcrypt accepts", func(t *testing.T) {
		_, err := store.Create(ctx, users.CreateInput{
			Email:    "long@example.com",
			Password: strings.Repeat("a", 80),
			Name:     "Long",
		})
		require.Error(t, err)
		appErr := apperr.As(err)
		assert.Equal(t, apperr.KindValidation, appErr.Kind)
		assert.Equal(t, "Password must be at most 72 bytes", appErr.Message)
		assert.Equal(t, "Password must be at most 72 bytes", appErr.Fields["password"])

		_, err = store.FindByEmail(ctx, "long@example.com")
		assert.ErrorIs(t, err, users.ErrUserNotFound)
	})

	t.Run("password limit counts bytes", func(t *testing.T) {
		_, err := store.Create(ctx, users.CreateInput{
			Email:    "accent@example.com",
			Password: strings.Repeat("é", 37),
			Name:     "Accent",
		})
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

		user, err := store.Create(ctx, users.CreateInput{
			Email:    "accent@example.com",
			Password: strings.Repeat("é", 36),
			Name:     "Accent",
		})
		require.NoError(t, err)
		assert.True(t, users.CheckPassword(strings.Repeat("é", 36), user.PasswordHash))
	})
}

func TestStore_FindActive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	store := users.NewStore(db)
	ctx := testutil.TestContext(t)

	active := testutil.CreateTestUser(t, db, models.RoleEditor)
	gone := testutil.CreateTestUser(t, db, models.RoleViewer)
	testutil.DeactivateUser(t, db, gone)

	got, err := store.FindActiveByID(ctx, active.ID)
	require.NoError(t, err)
	assert.Equal(t, active.Email, got.Email)

	_, err = store.FindActiveByID(ctx, gone.ID)
	assert.ErrorIs(t, err, users.ErrUserNotFound)

	_, err = store.FindActiveByID(ctx, uuid.New())
	assert.ErrorIs(t, err, users.ErrUserNotFound)

	all, err := store.FindAllActive(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, active.ID, all[0].ID)

	// Credential lookups still see inactive accounts.
	byEmail, err := store.FindByEmail(ctx, gone.Email)
	require.NoError(t, err)
	assert.False(t, byEmail.IsActive)
}

func TestStore_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	store := users.NewStore(db)
	ctx := testutil.TestContext(t)

	admin := testutil.CreateTestUser(t, db, models.RoleAdmin)
	editor := testutil.CreateTestUser(t, db, models.RoleEditor)

	t.Run("admin changes role", func(t *testing.T) {
		target := testutil.CreateTestUser(t, db, models.RoleViewer)

		updated, err := store.Update(ctx, target.ID, users.Patch{Role: ptr(models.RoleEditor)}, admin)
		require.NoError(t, err)
		assert.Equal(t, models.RoleEditor, updated.Role)
	})

	t.Run("editor cannot change role", func(t *testing.T) {
		target := testutil.CreateTestUser(t, db, models.RoleViewer)

		_, err := store.Update(ctx, target.ID, users.Patch{Role: ptr(models.RoleAdmin)}, editor)
		assert.ErrorIs(t, err, users.ErrRoleChangeForbidden)

		reloaded, err := store.FindActiveByID(ctx, target.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RoleViewer, reloaded.Role)
	})

	t.Run("editor may resubmit the current role with a rename", func(t *testing.T) {
		target := testutil.CreateTestUser(t, db, models.RoleViewer)

		updated, err := store.Update(ctx, target.ID, users.Patch{
			Name: ptr("Renamed"),
			Role: ptr(models.RoleViewer),
		}, editor)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Name)
		assert.Equal(t, models.RoleViewer, updated.Role)
	})

	t.Run("unknown role", func(t *testing.T) {
		target := testutil.CreateTestUser(t, db, models.RoleViewer)
		_, err := store.Update(ctx, target.ID, users.Patch{Role: ptr(models.Role("owner"))}, admin)
		assert.ErrorIs(t, err, users.ErrInvalidRole)
	})

	t.Run("blank name", func(t *testing.T) {
		target := testutil.CreateTestUser(t, db, models.RoleViewer)
		_, err := store.Update(ctx, target.ID, users.Patch{Name: ptr("  ")}, admin)
		assert.ErrorIs(t, err, users.ErrEmptyName)
	})

	t.Run("inactive target", func(t *testing.T) {
		target := testutil.CreateTestUser(t, db, models.RoleViewer)
		testutil.DeactivateUser(t, db, target)

		_, err := store.Update(ctx, target.ID, users.Patch{Name: ptr("Ghost")}, admin)
		assert.ErrorIs(t, err, users.ErrUserNotFound)
	})
}

func TestStore_SoftDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	store := users.NewStore(db)
	ctx := testutil.TestContext(t)

	owner := testutil.CreateTestUser(t, db, models.RoleEditor)
	doc := testutil.CreateTestDocument(t, db, owner, "kept", []byte("hello"))

	require.NoError(t, store.SoftDelete(ctx, owner.ID))

	_, err := store.FindActiveByID(ctx, owner.ID)
	assert.ErrorIs(t, err, users.ErrUserNotFound)

	// A repeat call reports not found; the row stays.
	assert.ErrorIs(t, store.SoftDelete(ctx, owner.ID), users.ErrUserNotFound)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", owner.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// No cascade onto documents.
	var reloaded models.Document
	require.NoError(t, db.First(&reloaded, "id = ?", doc.ID).Error)
	assert.True(t, reloaded.IsActive)
}
