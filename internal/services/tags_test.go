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

func TestAttachTagsReplaces(t *testing.T) {
	ctx := context.Background()
	db := th.NewTestDB(t)

	alice := th.CreateUser(t, db, "alice", models.RoleUser)
	v := th.CreateVideo(t, db, alice.ID, "clip")
	a := th.CreateTag(t, db, "A")
	b := th.CreateTag(t, db, "B")
	c := th.CreateTag(t, db, "C")

	attached, err := AttachTags(ctx, db, v.ID, []uint{a.ID, b.ID, b.ID, 404})
	require.NoError(t, err)
	assert.Equal(t, []uint{a.ID, b.ID}, attached)

	attached, err = AttachTags(ctx, db, v.ID, []uint{c.ID})
	require.NoError(t, err)
	assert.Equal(t, []uint{c.ID}, attached)

	var linked []uint
	require.NoError(t, db.Model(&models.VideoTag{}).Where("video_id = ?", v.ID).Pluck("tag_id", &linked).Error)
	assert.Equal(t, []uint{c.ID}, linked)

	attached, err = AttachTags(ctx, db, v.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, attached)
	assert.Zero(t, th.Count(t, db, &models.VideoTag{}))

	_, err = AttachTags(ctx, db, 999, []uint{a.ID})
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestCreateTagUnique(t *testing.T) {
	ctx := context.Background()
	db := th.NewTestDB(t)

	tag, err := CreateTag(ctx, db, "  Music ")
	require.NoError(t, err)
	assert.Equal(t, "Music", tag.Name)

	_, err = CreateTag(ctx, db, "Music")
	require.ErrorIs(t, err, types.ErrConflict)
	assert.EqualError(t, err, "409: A tag named 'Music' already exists. [type: conflict]")

	// names are case sensitive
	_, err = CreateTag(ctx, db, "music")
	require.NoError(t, err)

	_, err = CreateTag(ctx, db, " ")
	assert.ErrorIs(t, err, types.ErrBadRequest)
}

func TestUpdateTag(t *testing.T) {
	ctx := context.Background()
	db := th.NewTestDB(t)
	music := th.CreateTag(t, db, "Music")
	th.CreateTag(t, db, "Tech")

	require.NoError(t, UpdateTag(ctx, db, music.ID, "Songs"))
	require.NoError(t, UpdateTag(ctx, db, music.ID, "Songs"))
	assert.ErrorIs(t, UpdateTag(ctx, db, music.ID, "Tech"), types.ErrConflict)
	assert.ErrorIs(t, UpdateTag(ctx, db, 999, "Other"), types.ErrNotFound)

	tags, err := ListTags(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, []TagRef{{ID: music.ID, Name: "Songs"}, {ID: music.ID + 1, Name: "Tech"}}, tags)
}

func TestListTagsEmpty(t *testing.T) {
	tags, err := ListTags(context.Background(), th.NewTestDB(t))
	require.NoError(t, err)
	assert.NotNil(t, tags)
	assert.Empty(t, tags)
}
