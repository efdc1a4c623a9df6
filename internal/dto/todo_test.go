package dto

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	dom "github.com/birlikkoshan/todo-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeUpdate(t *testing.T, body string) UpdateTodoRequest {
	t.Helper()
	var req UpdateTodoRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return req
}

func TestOptional_PresenceTracking(t *testing.T) {
	req := decodeUpdate(t, `{"description": null, "status": "completed"}`)

	assert.False(t, req.Title.Set, "absent field must not be marked as set")
	assert.True(t, req.Description.Set)
	assert.True(t, req.Description.Null)
	assert.Nil(t, req.Description.Ptr())
	assert.True(t, req.Status.Set)
	assert.False(t, req.Status.Null)
	require.NotNil(t, req.Status.Ptr())
	assert.Equal(t, dom.StatusCompleted, *req.Status.Ptr())
}

func TestOptional_WrongType(t *testing.T) {
	var req UpdateTodoRequest
	err := json.Unmarshal([]byte(`{"title": 42}`), &req)
	assert.Error(t, err)
}

func TestUpdateTodoRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "empty body", body: `{}`},
		{name: "title only", body: `{"title": "Walk dog"}`},
		{name: "clear description", body: `{"description": ""}`},
		{name: "null description", body: `{"description": null}`},
		{name: "completed", body: `{"status": "completed"}`},
		{name: "pending", body: `{"status": "pending"}`},
		{name: "accented title", body: `{"title": "` + strings.Repeat("é", 255) + `"}`},
		{name: "title too long", body: `{"title": "` + strings.Repeat("é", 256) + `"}`, wantErr: true},
		{name: "blank title", body: `{"title": "   "}`, wantErr: true},
		{name: "null title", body: `{"title": null}`, wantErr: true},
		{name: "unknown status", body: `{"status": "archived"}`, wantErr: true},
		{name: "null status", body: `{"status": null}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := decodeUpdate(t, tt.body).Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUpdateTodoRequest_ToPatch(t *testing.T) {
	p := decodeUpdate(t, `{}`).ToPatch()
	assert.True(t, p.Empty())

	p = decodeUpdate(t, `{"description": ""}`).ToPatch()
	assert.True(t, p.ClearDescription)
	assert.Nil(t, p.Description)

	p = decodeUpdate(t, `{"description": null}`).ToPatch()
	assert.True(t, p.ClearDescription)

	p = decodeUpdate(t, `{"description": "   "}`).ToPatch()
	assert.True(t, p.ClearDescription)
	assert.Nil(t, p.Description)

	p = decodeUpdate(t, `{"title": "New", "description": "details"}`).ToPatch()
	require.NotNil(t, p.Title)
	assert.Equal(t, "New", *p.Title)
	require.NotNil(t, p.Description)
	assert.Equal(t, "details", *p.Description)
	assert.False(t, p.ClearDescription)
	assert.Nil(t, p.Status)
}

func TestTodoResponse_JSONShape(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	resp := NewTodoResponse(dom.Todo{
		ID: 7, UserID: 99, Title: "Buy milk", Status: dom.StatusPending,
		CreatedAt: ts, UpdatedAt: ts,
	})

	b, err := json.Marshal(resp)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Len(t, m, 6)
	assert.Contains(t, m, "description")
	assert.Nil(t, m["description"])
	assert.NotContains(t, m, "user_id")
	assert.Equal(t, "pending", m["status"])
	assert.Equal(t, "2026-01-02T03:04:05Z", m["created_at"])
}
