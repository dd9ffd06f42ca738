package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Tomlord1122/taskflow/internal/domain"
	"github.com/Tomlord1122/taskflow/internal/testutil"
)

func createUser(t *testing.T, db *gorm.DB, name string) domain.User {
	t.Helper()
	u := domain.User{Username: name, Email: name + "@x.com", PasswordHash: "hash"}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func TestTaskRepository_CreateAndFind(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewGormTaskRepository(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	task := &domain.Task{Title: "Buy milk", Description: "2 litres", UserID: alice.ID}
	require.NoError(t, repo.Create(ctx, task))
	require.NotZero(t, task.ID)

	t.Run("owner", func(t *testing.T) {
		found, err := repo.FindByIDForOwner(ctx, alice.ID, task.ID)
		require.NoError(t, err)
		assert.Equal(t, "Buy milk", found.Title)
		assert.Equal(t, "2 litres", found.Description)
		assert.False(t, found.Complete)
	})

	t.Run("other user", func(t *testing.T) {
		_, err := repo.FindByIDForOwner(ctx, bob.ID, task.ID)
		assert.ErrorIs(t, err, ErrNoRows)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := repo.FindByIDForOwner(ctx, alice.ID, task.ID+100)
		assert.ErrorIs(t, err, ErrNoRows)
	})
}

func TestTaskRepository_ListByOwner(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewGormTaskRepository(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	for _, tk := range []*domain.Task{
		{Title: "a1", UserID: alice.ID},
		{Title: "a2", UserID: alice.ID, Complete: true},
		{Title: "a3", UserID: alice.ID},
		{Title: "b1", UserID: bob.ID},
	} {
		require.NoError(t, repo.Create(ctx, tk))
	}

	open, err := repo.ListByOwner(ctx, alice.ID, false)
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, "a1", open[0].Title)
	assert.Equal(t, "a3", open[1].Title)

	done, err := repo.ListByOwner(ctx, alice.ID, true)
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, "a2", done[0].Title)

	none, err := repo.ListByOwner(ctx, bob.ID+100, false)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestTaskRepository_UpdateToggleDelete(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewGormTaskRepository(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	task := &domain.Task{Title: "Write report", Description: "draft", UserID: alice.ID}
	require.NoError(t, repo.Create(ctx, task))

	t.Run("update writes zero values", func(t *testing.T) {
		require.NoError(t, repo.Update(ctx, alice.ID, task.ID, "Write final report", "", true))
		got, err := repo.FindByIDForOwner(ctx, alice.ID, task.ID)
		require.NoError(t, err)
		assert.Equal(t, "Write final report", got.Title)
		assert.Equal(t, "", got.Description)
		assert.True(t, got.Complete)
		assert.Equal(t, alice.ID, got.UserID)

		require.NoError(t, repo.Update(ctx, alice.ID, task.ID, "Write final report", "", false))
		got, err = repo.FindByIDForOwner(ctx, alice.ID, task.ID)
		require.NoError(t, err)
		assert.False(t, got.Complete)
	})

	t.Run("toggle flips both ways", func(t *testing.T) {
		require.NoError(t, repo.ToggleComplete(ctx, alice.ID, task.ID))
		got, err := repo.FindByIDForOwner(ctx, alice.ID, task.ID)
		require.NoError(t, err)
		assert.True(t, got.Complete)

		require.NoError(t, repo.ToggleComplete(ctx, alice.ID, task.ID))
		got, err = repo.FindByIDForOwner(ctx, alice.ID, task.ID)
		require.NoError(t, err)
		assert.False(t, got.Complete)
	})

	t.Run("foreign owner matches nothing", func(t *testing.T) {
		assert.ErrorIs(t, repo.Update(ctx, bob.ID, task.ID, "hijack", "", true), ErrNoRows)
		assert.ErrorIs(t, repo.ToggleComplete(ctx, bob.ID, task.ID), ErrNoRows)
		assert.ErrorIs(t, repo.Delete(ctx, bob.ID, task.ID), ErrNoRows)

		got, err := repo.FindByIDForOwner(ctx, alice.ID, task.ID)
		require.NoError(t, err)
		assert.Equal(t, "Write final report", got.Title)
	})

	t.Run("delete is permanent", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, alice.ID, task.ID))
		_, err := repo.FindByIDForOwner(ctx, alice.ID, task.ID)
		assert.ErrorIs(t, err, ErrNoRows)

		var count int64
		require.NoError(t, db.Unscoped().Model(&domain.Task{}).Where("id = ?", task.ID).Count(&count).Error)
		assert.Zero(t, count)

		assert.ErrorIs(t, repo.Delete(ctx, alice.ID, task.ID), ErrNoRows)
	})
}

func TestTaskRepository_OwnerConstraint(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewGormTaskRepository(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice")

	t.Run("unknown owner is rejected", func(t *testing.T) {
		err := repo.Create(ctx, &domain.Task{Title: "orphan", UserID: alice.ID + 100})
		assert.Error(t, err)
	})

	t.Run("deleting the owner removes their tasks", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, &domain.Task{Title: "a1", UserID: alice.ID}))
		require.NoError(t, repo.Create(ctx, &domain.Task{Title: "a2", UserID: alice.ID}))

		require.NoError(t, db.Delete(&alice).Error)

		var count int64
		require.NoError(t, db.Model(&domain.Task{}).Count(&count).Error)
		assert.Zero(t, count)
	})
}
