package handlers_test

import (
	"net/http"
	"testing"

	"github.com/localnerve/videohost/internal/messaging"
	"github.com/localnerve/videohost/internal/models"
	th "github.com/localnerve/videohost/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminRequiresRole(t *testing.T) {
	env := newEnv(t)
	alice := th.CreateUser(t, env.db, "alice", models.RoleUser)

	resp := env.do(t, http.MethodGet, "/api/admin/get-entities?entityType=users", "", nil)
	th.AssertStatus(t, resp, http.StatusUnauthorized)

	resp = env.do(t, http.MethodGet, "/api/admin/get-entities?entityType=users", env.bearer(t, alice), nil)
	th.AssertStatus(t, resp, http.StatusForbidden)
}

func TestAdminDispatcher(t *testing.T) {
	env := newEnv(t)
	root := th.CreateUser(t, env.db, "root", models.RoleAdmin)
	alice := th.CreateUser(t, env.db, "alice", models.RoleUser)
	tag := th.CreateTag(t, env.db, "Music")
	v := th.CreateVideo(t, env.db, alice.ID, "clip")
	th.TagVideo(t, env.db, v.ID, tag.ID)
	auth := env.bearer(t, root)

	resp := env.do(t, http.MethodGet, "/api/admin/get-entities?entityType=roles", auth, nil)
	th.AssertStatus(t, resp, http.StatusBadRequest)
	assert.Equal(t, "Invalid entity type.", decode[envelope](t, resp).Message)

	resp = env.do(t, http.MethodGet, "/api/admin/get-entities?entityType=Users", auth, nil)
	th.AssertStatus(t, resp, http.StatusOK)
	assert.Len(t, decode[[]map[string]any](t, resp), 2)

	resp = env.do(t, http.MethodGet, "/api/admin/get-entity?entityType=video&id="+itoa(v.ID), auth, nil)
	th.AssertStatus(t, resp, http.StatusOK)
	video := decode[map[string]any](t, resp)
	assert.Equal(t, "clip", video["name"])
	assert.Len(t, video["users"], 2)

	resp = env.do(t, http.MethodGet, "/api/admin/get-entity?entityType=tag&id=999", auth, nil)
	th.AssertStatus(t, resp, http.StatusNotFound)

	resp = env.do(t, http.MethodDelete, "/api/admin/delete-entity?entityType=tag&id="+itoa(tag.ID), auth, nil)
	th.AssertStatus(t, resp, http.StatusOK)
	assert.Zero(t, th.Count(t, env.db, &models.VideoTag{}))

	resp = env.do(t, http.MethodDelete, "/api/admin/delete-entity?entityType=users&id="+itoa(alice.ID), auth, nil)
	th.AssertStatus(t, resp, http.StatusOK)
	assert.Zero(t, th.Count(t, env.db, &models.Video{}))
	assert.Len(t, env.store.RemovedPaths(), 2)
	assert.Equal(t, []string{messaging.EventUserDeleted}, env.events.Types())
}

func TestAdminTypedUpdates(t *testing.T) {
	env := newEnv(t)
	root := th.CreateUser(t, env.db, "root", models.RoleAdmin)
	alice := th.CreateUser(t, env.db, "alice", models.RoleUser)
	bob := th.CreateUser(t, env.db, "bob", models.RoleUser)
	music := th.CreateTag(t, env.db, "Music")
	th.CreateTag(t, env.db, "Gaming")
	v := th.CreateVideo(t, env.db, alice.ID, "clip")
	sub := th.CreateSubscription(t, env.db, alice.ID, bob.ID)
	auth := env.bearer(t, root)

	resp := env.do(t, http.MethodPut, "/api/admin/update-tag", auth, map[string]any{"id": music.ID, "name": "Gaming"})
	th.AssertStatus(t, resp, http.StatusConflict)

	resp = env.do(t, http.MethodPut, "/api/admin/update-video", auth, map[string]any{
		"id": v.ID, "name": "moved", "userId": bob.ID, "description": "d", "tagIds": []uint{music.ID},
	})
	th.AssertStatus(t, resp, http.StatusOK)
	var moved models.Video
	require.NoError(t, env.db.First(&moved, v.ID).Error)
	assert.Equal(t, bob.ID, moved.UserID)
	assert.EqualValues(t, 1, th.Count(t, env.db, &models.VideoTag{}, "video_id = ?", v.ID))

	resp = env.do(t, http.MethodPut, "/api/admin/update-user", auth, map[string]any{"id": alice.ID, "role": "Superuser"})
	th.AssertStatus(t, resp, http.StatusBadRequest)
	resp = env.do(t, http.MethodPut, "/api/admin/update-user", auth, map[string]any{"id": alice.ID, "email": "bob@example.com"})
	th.AssertStatus(t, resp, http.StatusConflict)
	resp = env.do(t, http.MethodPut, "/api/admin/update-user", auth, map[string]any{"id": alice.ID, "role": "Admin"})
	th.AssertStatus(t, resp, http.StatusOK)
	var promoted models.User
	require.NoError(t, env.db.First(&promoted, alice.ID).Error)
	assert.Equal(t, models.RoleAdmin, promoted.Role)

	resp = env.do(t, http.MethodPut, "/api/admin/update-subscription", auth, map[string]any{
		"id": sub.ID, "subscriberId": bob.ID, "subscribedToId": bob.ID,
	})
	th.AssertStatus(t, resp, http.StatusConflict)

	resp = env.do(t, http.MethodPut, "/api/admin/update-comment", auth, map[string]any{
		"id": 999, "userId": bob.ID, "videoId": v.ID, "content": "x",
	})
	th.AssertStatus(t, resp, http.StatusNotFound)
}
