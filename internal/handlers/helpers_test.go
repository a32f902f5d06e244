// helpers_test.go
//
// A video hosting service for users, videos, comments, tags and subscriptions
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of videohost.
// videohost is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// videohost is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with videohost.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/videohost/internal/handlers"
	"github.com/localnerve/videohost/internal/logger"
	"github.com/localnerve/videohost/internal/models"
	"github.com/localnerve/videohost/internal/services"
	th "github.com/localnerve/videohost/internal/testhelpers"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	app    *fiber.App
	db     *gorm.DB
	tokens *services.TokenService
	store  *th.FakeStore
	events *th.Recorder
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		db: th.NewTestDB(t),
		tokens: services.NewTokenService(services.TokenOptions{
			Secret:   "handlers-test-secret",
			Issuer:   "videohost",
			Audience: "videohost-client",
			Expiry:   time.Hour,
		}, nil),
		store:  &th.FakeStore{},
		events: &th.Recorder{},
	}

	log := logger.Discard()
	deps := handlers.Deps{
		DB:    env.db,
		Store: env.store,
		Uploader: &services.VideoUploader{
			DB:          env.db,
			Store:       env.store,
			Thumbnailer: &th.FakeThumbnailer{Duration: 8},
			MaxBytes:    1024,
			TempDir:     t.TempDir(),
			Log:         log,
		},
		Tokens: env.tokens,
		Events: env.events,
		Log:    log,
	}
	env.app = fiber.New(fiber.Config{
		ErrorHandler:          handlers.NewErrorHandler(deps),
		BodyLimit:             handlers.BodyLimit(deps.Uploader.MaxBytes),
		DisableStartupMessage: true,
	})
	handlers.RegisterRoutes(env.app.Group("/api"), deps)
	return env
}

func (e *testEnv) bearer(t *testing.T, u *models.User) string {
	t.Helper()
	raw, _, err := e.tokens.Issue(u)
	require.NoError(t, err)
	return "Bearer " + raw
}

// do sends a request. A non-nil body is sent as JSON.
func (e *testEnv) do(t *testing.T, method, target, auth string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func multipartBody(t *testing.T, fields map[string]string, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		part, err := w.CreateFormFile("videoFile", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func (e *testEnv) upload(t *testing.T, auth string, fields map[string]string, filename string, content []byte) *http.Response {
	t.Helper()
	body, contentType := multipartBody(t, fields, filename, content)
	req := httptest.NewRequest(http.MethodPost, "/api/video/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", auth)
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// serve runs the app on a loopback listener and returns its base URL. Bodies
// over the server limit never reach app.Test, so those requests need a socket.
func (e *testEnv) serve(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = e.app.Listener(ln) }()
	t.Cleanup(func() { _ = e.app.Shutdown() })
	return "http://" + ln.Addr().String()
}

type envelope struct {
	Status  int      `json:"status"`
	Message string   `json:"message"`
	Ok      bool     `json:"ok"`
	URL     string   `json:"url"`
	Type    string   `json:"type"`
	Errors  []string `json:"errors"`
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	th.ParseJSON(t, resp, &out)
	return out
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
