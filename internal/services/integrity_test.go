package services

import (
	"context"
	"testing"

	"github.com/localnerve/videohost/internal/models"
	th "github.com/localnerve/videohost/internal/testhelpers"
	"github.com/localnerve/videohost/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDeleteUserCascades(t *testing.T) {
	ctx := context.Background()
	db := th.NewTestDB(t)
	store := &th.FakeStore{}

	alice := th.CreateUser(t, db, "alice", models.RoleUser)
	bob := th.CreateUser(t, db, "bob", models.RoleUser)
	music := th.CreateTag(t, db, "Music")

	v1 := th.CreateVideo(t, db, alice.ID, "a1")
	v2 := th.CreateVideo(t, db, alice.ID, "a2")
	bobVideo := th.CreateVideo(t, db, bob.ID, "b1")
	th.TagVideo(t, db, v1.ID, music.ID)
	th.TagVideo(t, db, bobVideo.ID, music.ID)
	th.CreateComment(t, db, bob.ID, v1.ID, "bob on alice")
	th.CreateComment(t, db, alice.ID, bobVideo.ID, "alice on bob")
	th.CreateComment(t, db, bob.ID, bobVideo.ID, "bob on bob")
	th.CreateSubscription(t, db, alice.ID, bob.ID)
	th.CreateSubscription(t, db, bob.ID, alice.ID)

	require.NoError(t, DeleteUser(ctx, db, store, alice.ID))

	assert.Zero(t, th.Count(t, db, &models.User{}, "id = ?", alice.ID))
	assert.Zero(t, th.Count(t, db, &models.Video{}, "user_id = ?", alice.ID))
	assert.Zero(t, th.Count(t, db, &models.VideoTag{}, "video_id IN ?", []uint{v1.ID, v2.ID}))
	assert.Zero(t, th.Count(t, db, &models.Comment{}, "user_id = ? OR video_id IN ?", alice.ID, []uint{v1.ID, v2.ID}))
	assert.Zero(t, th.Count(t, db, &models.Subscription{}))

	// bob's own data survives
	assert.EqualValues(t, 1, th.Count(t, db, &models.Video{}))
	assert.EqualValues(t, 1, th.Count(t, db, &models.Comment{}))
	assert.EqualValues(t, 1, th.Count(t, db, &models.VideoTag{}))

	assert.Equal(t, []string{
		"/uploads/1/a1.jpg", "/uploads/1/a1.mp4",
		"/uploads/1/a2.jpg", "/uploads/1/a2.mp4",
	}, store.RemovedPaths())
}

func TestDeleteUserNotFound(t *testing.T) {
	db := th.NewTestDB(t)
	err := DeleteUser(context.Background(), db, &th.FakeStore{}, 42)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestDeleteUserMediaFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	db := th.NewTestDB(t)
	store := &th.FakeStore{FailRemove: true, RemovesBefore: 1}

	alice := th.CreateUser(t, db, "alice", models.RoleUser)
	bob := th.CreateUser(t, db, "bob", models.RoleUser)
	v := th.CreateVideo(t, db, alice.ID, "a1")
	th.CreateComment(t, db, bob.ID, v.ID, "nice")
	th.CreateSubscription(t, db, bob.ID, alice.ID)

	err := DeleteUser(ctx, db, store, alice.ID)
	require.Error(t, err)
	var ce *types.CustomError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 500, ce.Code)
	assert.Equal(t, "Failed to delete media files.", ce.Message)

	assert.EqualValues(t, 2, th.Count(t, db, &models.User{}))
	assert.EqualValues(t, 1, th.Count(t, db, &models.Video{}))
	assert.EqualValues(t, 1, th.Count(t, db, &models.Comment{}))
	assert.EqualValues(t, 1, th.Count(t, db, &models.Subscription{}))

	// the file removed before the failure is not restored
	assert.Equal(t, []string{v.UploadPath}, store.RemovedPaths())
}

func TestDeleteUserRowFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	db := th.NewTestDB(t)
	store := &th.FakeStore{}

	alice := th.CreateUser(t, db, "alice", models.RoleUser)
	bob := th.CreateUser(t, db, "bob", models.RoleUser)
	music := th.CreateTag(t, db, "Music")
	v := th.CreateVideo(t, db, alice.ID, "a1")
	bobVideo := th.CreateVideo(t, db, bob.ID, "b1")
	th.TagVideo(t, db, v.ID, music.ID)
	th.CreateComment(t, db, bob.ID, v.ID, "bob on alice")
	th.CreateComment(t, db, alice.ID, bobVideo.ID, "alice on bob")
	th.CreateSubscription(t, db, alice.ID, bob.ID)
	th.CreateSubscription(t, db, bob.ID, alice.ID)

	// every dependent delete runs, then the user row itself fails
	var deleted []string
	require.NoError(t, db.Callback().Delete().Before("gorm:delete").Register("test:fail_users", func(tx *gorm.DB) {
		deleted = append(deleted, tx.Statement.Table)
		if tx.Statement.Table == "users" {
			_ = tx.AddError(th.ErrInjected)
		}
	}))

	err := DeleteUser(ctx, db, store, alice.ID)
	require.ErrorIs(t, err, th.ErrInjected)
	assert.Equal(t, []string{"subscriptions", "video_tags", "comments", "videos", "comments", "users"}, deleted)

	require.NoError(t, db.Callback().Delete().Remove("test:fail_users"))

	assert.EqualValues(t, 2, th.Count(t, db, &models.User{}))
	assert.EqualValues(t, 2, th.Count(t, db, &models.Video{}))
	assert.EqualValues(t, 1, th.Count(t, db, &models.VideoTag{}, "video_id = ?", v.ID))
	assert.EqualValues(t, 2, th.Count(t, db, &models.Comment{}))
	assert.EqualValues(t, 2, th.Count(t, db, &models.Subscription{}))

	// files go before the rows and are not restored
	assert.Equal(t, []string{"/uploads/1/a1.jpg", "/uploads/1/a1.mp4"}, store.RemovedPaths())
}

func TestDeleteVideoCascades(t *testing.T) {
	ctx := context.Background()
	db := th.NewTestDB(t)
	store := &th.FakeStore{}

	alice := th.CreateUser(t, db, "alice", models.RoleUser)
	tag := th.CreateTag(t, db, "Gaming")
	v := th.CreateVideo(t, db, alice.ID, "clip")
	other := th.CreateVideo(t, db, alice.ID, "other")
	th.TagVideo(t, db, v.ID, tag.ID)
	th.TagVideo(t, db, other.ID, tag.ID)
	th.CreateComment(t, db, alice.ID, v.ID, "first")
	th.CreateComment(t, db, alice.ID, other.ID, "second")

	require.NoError(t, DeleteVideo(ctx, db, store, v.ID))

	assert.Zero(t, th.Count(t, db, &models.Video{}, "id = ?", v.ID))
	assert.Zero(t, th.Count(t, db, &models.VideoTag{}, "video_id = ?", v.ID))
	assert.Zero(t, th.Count(t, db, &models.Comment{}, "video_id = ?", v.ID))
	assert.EqualValues(t, 1, th.Count(t, db, &models.VideoTag{}, "video_id = ?", other.ID))
	assert.EqualValues(t, 1, th.Count(t, db, &models.Tag{}))
	assert.Equal(t, []string{"/uploads/1/clip.jpg", "/uploads/1/clip.mp4"}, store.RemovedPaths())

	err := DeleteVideo(ctx, db, store, v.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestDeleteUserVideosKeepsAccount(t *testing.T) {
	ctx := context.Background()
	db := th.NewTestDB(t)
	store := &th.FakeStore{}

	alice := th.CreateUser(t, db, "alice", models.RoleUser)
	bob := th.CreateUser(t, db, "bob", models.RoleUser)
	th.CreateVideo(t, db, alice.ID, "a1")
	th.CreateVideo(t, db, alice.ID, "a2")
	bv := th.CreateVideo(t, db, bob.ID, "b1")
	th.CreateComment(t, db, alice.ID, bv.ID, "kept")

	n, err := DeleteUserVideos(ctx, db, store, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.EqualValues(t, 1, th.Count(t, db, &models.User{}, "id = ?", alice.ID))
	assert.Zero(t, th.Count(t, db, &models.Video{}, "user_id = ?", alice.ID))
	assert.EqualValues(t, 1, th.Count(t, db, &models.Comment{}))
	assert.Len(t, store.RemovedPaths(), 4)

	n, err = DeleteUserVideos(ctx, db, store, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDeleteTagRemovesLinks(t *testing.T) {
	ctx := context.Background()
	db := th.NewTestDB(t)

	alice := th.CreateUser(t, db, "alice", models.RoleUser)
	music := th.CreateTag(t, db, "Music")
	vlog := th.CreateTag(t, db, "Vlog")
	v1 := th.CreateVideo(t, db, alice.ID, "v1")
	v2 := th.CreateVideo(t, db, alice.ID, "v2")
	th.TagVideo(t, db, v1.ID, music.ID, vlog.ID)
	th.TagVideo(t, db, v2.ID, music.ID)

	require.NoError(t, DeleteTag(ctx, db, music.ID))

	assert.Zero(t, th.Count(t, db, &models.Tag{}, "name = ?", "Music"))
	assert.Zero(t, th.Count(t, db, &models.VideoTag{}, "tag_id = ?", music.ID))
	assert.EqualValues(t, 1, th.Count(t, db, &models.VideoTag{}, "tag_id = ?", vlog.ID))
	assert.EqualValues(t, 2, th.Count(t, db, &models.Video{}))

	assert.ErrorIs(t, DeleteTag(ctx, db, music.ID), types.ErrNotFound)
}
