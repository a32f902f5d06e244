package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/localnerve/videohost/internal/models"
	th "github.com/localnerve/videohost/internal/testhelpers"
	"github.com/localnerve/videohost/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func summaryIDs(videos []VideoSummary) []uint {
	ids := make([]uint, len(videos))
	for i, v := range videos {
		ids[i] = v.ID
	}
	return ids
}

type videoFixture struct {
	alice, bob, carol *models.User
	music, gaming     *models.Tag
	cats, dogs, mix   *models.Video
	bobs              *models.Video
}

func seedVideos(t *testing.T, db *gorm.DB) videoFixture {
	t.Helper()
	f := videoFixture{
		alice: th.CreateUser(t, db, "alice", models.RoleUser),
		bob:   th.CreateUser(t, db, "bob", models.RoleUser),
		carol: th.CreateUser(t, db, "carol", models.RoleUser),
	}
	f.music = th.CreateTag(t, db, "Music")
	f.gaming = th.CreateTag(t, db, "Gaming")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f.cats = th.CreateVideo(t, db, f.alice.ID, "Funny Cats")
	f.dogs = th.CreateVideo(t, db, f.alice.ID, "Dogs at play")
	f.mix = th.CreateVideo(t, db, f.alice.ID, "cat and dog mix")
	f.bobs = th.CreateVideo(t, db, f.bob.ID, "Speedrun")
	th.SetVideoStats(t, db, f.cats.ID, 10, base)
	th.SetVideoStats(t, db, f.dogs.ID, 50, base.Add(time.Hour))
	th.SetVideoStats(t, db, f.mix.ID, 10, base.Add(2*time.Hour))
	th.SetVideoStats(t, db, f.bobs.ID, 5, base.Add(3*time.Hour))

	th.TagVideo(t, db, f.cats.ID, f.music.ID)
	th.TagVideo(t, db, f.mix.ID, f.music.ID, f.gaming.ID)
	th.TagVideo(t, db, f.bobs.ID, f.gaming.ID)

	th.CreateSubscription(t, db, f.carol.ID, f.bob.ID)
	return f
}

func TestListVideosOrdering(t *testing.T) {
	ctx := context.Background()
	db := th.NewTestDB(t)
	f := seedVideos(t, db)
	page, err := NewPage(0, DefaultVideoTake)
	require.NoError(t, err)

	newest, err := ListVideos(ctx, db, VideoFilter{}, page)
	require.NoError(t, err)
	assert.Equal(t, []uint{f.bobs.ID, f.mix.ID, f.dogs.ID, f.cats.ID}, summaryIDs(newest))
	assert.Equal(t, "bob", newest[0].User.DisplayName)

	// equal view counts fall back to id
	popular, err := ListVideos(ctx, db, VideoFilter{OrderBy: OrderByViews}, page)
	require.NoError(t, err)
	assert.Equal(t, []uint{f.dogs.ID, f.cats.ID, f.mix.ID, f.bobs.ID}, summaryIDs(popular))
}

func TestListVideosFilters(t *testing.T) {
	ctx := context.Background()
	db := th.NewTestDB(t)
	f := seedVideos(t, db)
	page, _ := NewPage(0, DefaultVideoTake)

	tests := []struct {
		name   string
		filter VideoFilter
		want   []uint
	}{
		{"search is case insensitive", VideoFilter{SearchTerm: "CAT"}, []uint{f.mix.ID, f.cats.ID}},
		{"single tag", VideoFilter{TagIDs: []uint{f.music.ID}}, []uint{f.mix.ID, f.cats.ID}},
		{"tags must all match", VideoFilter{TagIDs: []uint{f.music.ID, f.gaming.ID}}, []uint{f.mix.ID}},
		{"duplicate tag ids", VideoFilter{TagIDs: []uint{f.gaming.ID, f.gaming.ID}}, []uint{f.bobs.ID, f.mix.ID}},
		{"unknown tag", VideoFilter{TagIDs: []uint{999}}, []uint{}},
		{"owner", VideoFilter{UserID: f.bob.ID}, []uint{f.bobs.ID}},
		{"subscriptions", VideoFilter{SubscriberID: f.carol.ID}, []uint{f.bobs.ID}},
		{"no subscriptions", VideoFilter{SubscriberID: f.alice.ID}, []uint{}},
		{"combined", VideoFilter{SearchTerm: "dog", TagIDs: []uint{f.gaming.ID}, UserID: f.alice.ID}, []uint{f.mix.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ListVideos(ctx, db, tt.filter, page)
			require.NoError(t, err)
			assert.Equal(t, tt.want, summaryIDs(got))
		})
	}
}

func TestListVideosTagsTagFilterQuery(t *testing.T) {
	db := th.NewTestDB(t)
	f := seedVideos(t, db)

	var selects []string
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:capture_sql", func(tx *gorm.DB) {
		if tx.Statement.Table == "videos" {
			selects = append(selects, tx.Statement.SQL.String())
		}
	}))

	_, err := ListVideos(context.Background(), db, VideoFilter{}, Page{Take: 10})
	require.NoError(t, err)
	_, err = ListVideos(context.Background(), db, VideoFilter{TagIDs: []uint{f.music.ID}}, Page{Take: 10})
	require.NoError(t, err)

	require.Len(t, selects, 2)
	assert.False(t, strings.Contains(selects[0], tagFilterQueryTag))
	assert.True(t, strings.HasPrefix(selects[1], "/* "+tagFilterQueryTag+" */"), selects[1])
}

func TestListVideosPaging(t *testing.T) {
	ctx := context.Background()
	db := th.NewTestDB(t)
	f := seedVideos(t, db)

	page, err := NewPage(1, 2)
	require.NoError(t, err)
	got, err := ListVideos(ctx, db, VideoFilter{}, page)
	require.NoError(t, err)
	assert.Equal(t, []uint{f.mix.ID, f.dogs.ID}, summaryIDs(got))

	page, _ = NewPage(10, 2)
	got, err = ListVideos(ctx, db, VideoFilter{}, page)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestGetVideo(t *testing.T) {
	ctx := context.Background()
	db := th.NewTestDB(t)
	f := seedVideos(t, db)
	require.NoError(t, db.Model(&models.Video{}).Where("id = ?", f.mix.ID).
		Update("description", "**best** of both").Error)

	v, err := GetVideo(ctx, db, f.mix.ID)
	require.NoError(t, err)
	assert.Equal(t, "cat and dog mix", v.Name)
	assert.Equal(t, "alice", v.User.DisplayName)
	assert.Contains(t, v.DescriptionHTML, "<strong>best</strong>")
	assert.Equal(t, []TagRef{{ID: f.music.ID, Name: "Music"}, {ID: f.gaming.ID, Name: "Gaming"}}, v.Tags)

	_, err = GetVideo(ctx, db, 999)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestNewPage(t *testing.T) {
	_, err := NewPage(-1, 5)
	assert.ErrorIs(t, err, types.ErrBadRequest)
	_, err = NewPage(0, 0)
	assert.ErrorIs(t, err, types.ErrBadRequest)

	p, err := NewPage(3, 5000)
	require.NoError(t, err)
	assert.Equal(t, Page{Skip: 3, Take: MaxTake}, p)
}
