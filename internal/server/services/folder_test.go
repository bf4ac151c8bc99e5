package services

import (
	"context"
	"strings"
	"testing"

	"github.com/Chris-Obeng/talkflo-app1/internal/common"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFolderService_CreateRenameList(t *testing.T) {
	db, _ := newMockDB(t)
	repos := newMemRepos()
	s := NewFolderService(db, repos, nopLog())
	ctx := context.Background()

	f, err := s.Create(ctx, alice, "  Work ")
	require.NoError(t, err)
	assert.Equal(t, "Work", f.Name)

	_, err = s.Create(ctx, alice, "")
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
	_, err = s.Create(ctx, alice, strings.Repeat("x", maxFolderNameRunes+1))
	assert.ErrorIs(t, err, common.ErrInvalidArgument)

	renamed, err := s.Rename(ctx, alice, f.ID, "Projects")
	require.NoError(t, err)
	assert.Equal(t, "Projects", renamed.Name)

	_, err = s.Rename(ctx, bob, f.ID, "mine now")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	list, err := s.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 1)
	empty, err := s.List(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestFolderService_DeleteKeepsNotes(t *testing.T) {
	db, mock := newMockDB(t)
	repos := newMemRepos()
	s := NewFolderService(db, repos, nopLog())
	ctx := context.Background()

	f, _ := repos.folders.Create(ctx, &models.Folder{UserID: alice, Name: "work"})
	filed := repos.notes.put(&models.Note{UserID: alice, Title: "in folder", FolderID: &f.ID})
	loose := repos.notes.put(&models.Note{UserID: alice, Title: "loose"})

	mock.ExpectBegin()
	mock.ExpectCommit()
	require.NoError(t, s.Delete(ctx, alice, f.ID))

	got, err := repos.notes.Get(ctx, alice, filed.ID)
	require.NoError(t, err, "notes survive folder deletion")
	assert.Nil(t, got.FolderID)
	_, err = repos.notes.Get(ctx, alice, loose.ID)
	require.NoError(t, err)
	_, err = repos.folders.Get(ctx, alice, f.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFolderService_DeleteForeign(t *testing.T) {
	db, mock := newMockDB(t)
	repos := newMemRepos()
	s := NewFolderService(db, repos, nopLog())
	ctx := context.Background()

	f, _ := repos.folders.Create(ctx, &models.Folder{UserID: alice, Name: "work"})
	n := repos.notes.put(&models.Note{UserID: alice, Title: "in folder", FolderID: &f.ID})

	mock.ExpectBegin()
	mock.ExpectRollback()
	assert.ErrorIs(t, s.Delete(ctx, bob, f.ID), common.ErrorNotFound)

	got, _ := repos.notes.Get(ctx, alice, n.ID)
	require.NotNil(t, got.FolderID, "bob cannot unfile alice's notes")
	assert.ErrorIs(t, s.Delete(ctx, alice, "junk"), common.ErrorNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
