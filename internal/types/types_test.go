package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomErrorKinds(t *testing.T) {
	err := fmt.Errorf("lookup: %w", NotFound("Video not found."))

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrConflict)

	var ce *CustomError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, http.StatusNotFound, ce.Code)
	assert.Equal(t, "Video not found.", ce.Message)
}

func TestInternalUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Internal("An error occurred while uploading the video.", cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrInternal)
	assert.Contains(t, err.Error(), "disk full")
}

func TestBadRequestErrors(t *testing.T) {
	err := BadRequest("Invalid password.", "too short", "needs a digit")
	assert.Equal(t, []string{"too short", "needs a digit"}, err.Errors)
	assert.Equal(t, "badrequest", err.Type)
	assert.Equal(t, "auth.password", err.WithType("auth.password").Type)
	assert.Equal(t, "badrequest", err.Type)
}

func TestFlexList(t *testing.T) {
	var single struct {
		IDs FlexList[FlexID] `json:"ids"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"ids": "7"}`), &single))
	assert.Equal(t, []FlexID{7}, single.IDs.Slice())

	var many struct {
		IDs FlexList[FlexID] `json:"ids"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"ids": [1, "2", 3]}`), &many))
	assert.Equal(t, []FlexID{1, 2, 3}, many.IDs.Slice())
}

func TestFlexIDRejectsGarbage(t *testing.T) {
	var id FlexID
	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &id))
	assert.Error(t, json.Unmarshal([]byte(`true`), &id))
}

func TestParseIDList(t *testing.T) {
	tests := []struct {
		raw     string
		want    []uint
		wantErr bool
	}{
		{raw: "", want: nil},
		{raw: "[1,2]", want: []uint{1, 2}},
		{raw: "[\"4\"]", want: []uint{4}},
		{raw: "3, 5,", want: []uint{3, 5}},
		{raw: "x", wantErr: true},
		{raw: "[1,", wantErr: true},
	}

	for _, tc := range tests {
		got, err := ParseIDList(tc.raw)
		if tc.wantErr {
			assert.Error(t, err, tc.raw)
			continue
		}
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.want, got, tc.raw)
	}
}

func TestUniqueIDs(t *testing.T) {
	assert.Equal(t, []uint{2, 1, 3}, UniqueIDs([]uint{2, 1, 2, 3, 1}))
	assert.Empty(t, UniqueIDs(nil))
}
