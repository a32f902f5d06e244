package handlers_test

import (
	"net/http"
	"testing"

	"github.com/localnerve/videohost/internal/models"
	"github.com/localnerve/videohost/internal/services"
	th "github.com/localnerve/videohost/internal/testhelpers"
	"github.com/stretchr/testify/assert"
)

func TestSubscriptionRoutes(t *testing.T) {
	env := newEnv(t)
	alice := th.CreateUser(t, env.db, "alice", models.RoleUser)
	bob := th.CreateUser(t, env.db, "bob", models.RoleUser)
	auth := env.bearer(t, alice)
	query := "?subscribedToId=" + itoa(bob.ID)

	resp := env.do(t, http.MethodGet, "/api/subscription/get"+query, "", nil)
	th.AssertStatus(t, resp, http.StatusUnauthorized)

	resp = env.do(t, http.MethodGet, "/api/subscription/get"+query, auth, nil)
	th.AssertStatus(t, resp, http.StatusNoContent)
	th.AssertNoContent(t, resp)

	resp = env.do(t, http.MethodPost, "/api/subscription/add", auth, map[string]any{"subscribedToId": alice.ID})
	th.AssertStatus(t, resp, http.StatusConflict)

	resp = env.do(t, http.MethodPost, "/api/subscription/add", auth, map[string]any{"subscribedToId": bob.ID})
	th.AssertStatus(t, resp, http.StatusOK)
	assert.Equal(t, "You have subscribed successfully!", decode[map[string]any](t, resp)["message"])

	resp = env.do(t, http.MethodPost, "/api/subscription/add", auth, map[string]any{"subscribedToId": bob.ID})
	th.AssertStatus(t, resp, http.StatusConflict)

	resp = env.do(t, http.MethodGet, "/api/subscription/get"+query, auth, nil)
	th.AssertStatus(t, resp, http.StatusOK)
	sub := decode[services.SubscriptionView](t, resp)
	assert.Equal(t, alice.ID, sub.SubscriberID)
	assert.Equal(t, bob.ID, sub.SubscribedToID)

	resp = env.do(t, http.MethodGet, "/api/subscription/list", auth, nil)
	th.AssertStatus(t, resp, http.StatusOK)
	list := decode[[]services.FollowedUser](t, resp)
	if assert.Len(t, list, 1) {
		assert.Equal(t, "bob", list[0].DisplayName)
	}

	resp = env.do(t, http.MethodDelete, "/api/subscription/delete"+query, auth, nil)
	th.AssertStatus(t, resp, http.StatusOK)
	resp = env.do(t, http.MethodDelete, "/api/subscription/delete"+query, auth, nil)
	th.AssertStatus(t, resp, http.StatusNotFound)
}

func TestSubscribeToUnknownUser(t *testing.T) {
	env := newEnv(t)
	alice := th.CreateUser(t, env.db, "alice", models.RoleUser)

	resp := env.do(t, http.MethodPost, "/api/subscription/add", env.bearer(t, alice), map[string]any{"subscribedToId": 999})
	th.AssertStatus(t, resp, http.StatusNotFound)

	resp = env.do(t, http.MethodPost, "/api/subscription/add", env.bearer(t, alice), map[string]any{})
	th.AssertStatus(t, resp, http.StatusBadRequest)
}
