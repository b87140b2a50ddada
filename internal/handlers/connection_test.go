package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionFlow(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, e.alice, http.MethodPost, "/api/v1/connections", gin.H{
		"event_id":     e.event.ID,
		"recipient_id": e.bob,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var conn struct {
		ID       uuid.UUID `json:"id"`
		Status   string    `json:"status"`
		Category string    `json:"category"`
	}
	decode(t, w, &conn)
	assert.Equal(t, "pending", conn.Status)
	assert.Equal(t, "sent", conn.Category)

	respondPath := "/api/v1/connections/" + conn.ID.String() + "/respond"

	t.Run("requester cannot respond", func(t *testing.T) {
		w := e.do(t, e.alice, http.MethodPost, respondPath, gin.H{"decision": "accept"})
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "not_recipient", errorCode(t, w))
	})

	t.Run("unknown decision", func(t *testing.T) {
		w := e.do(t, e.bob, http.MethodPost, respondPath, gin.H{"decision": "maybe"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid_decision", errorCode(t, w))
	})

	w = e.do(t, e.bob, http.MethodPost, respondPath, gin.H{"decision": "accept"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res struct {
		Status   string     `json:"status"`
		ThreadID *uuid.UUID `json:"thread_id"`
	}
	decode(t, w, &res)
	assert.Equal(t, "accepted", res.Status)
	require.NotNil(t, res.ThreadID)

	t.Run("second response conflicts", func(t *testing.T) {
		w := e.do(t, e.bob, http.MethodPost, respondPath, gin.H{"decision": "decline"})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "already_resolved", errorCode(t, w))
	})

	t.Run("ensure thread returns the same thread", func(t *testing.T) {
		w := e.do(t, e.alice, http.MethodPost, "/api/v1/connections/"+conn.ID.String()+"/thread", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var thread struct {
			ID uuid.UUID `json:"id"`
		}
		decode(t, w, &thread)
		assert.Equal(t, *res.ThreadID, thread.ID)

		w = e.do(t, e.outsider, http.MethodPost, "/api/v1/connections/"+conn.ID.String()+"/thread", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("list shows accepted with thread", func(t *testing.T) {
		w := e.do(t, e.bob, http.MethodGet, "/api/v1/connections", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Connections []struct {
				Category string     `json:"category"`
				ThreadID *uuid.UUID `json:"thread_id"`
			} `json:"connections"`
		}
		decode(t, w, &body)
		require.Len(t, body.Connections, 1)
		assert.Equal(t, "accepted", body.Connections[0].Category)
		require.NotNil(t, body.Connections[0].ThreadID)
		assert.Equal(t, *res.ThreadID, *body.Connections[0].ThreadID)
	})

	t.Run("pair status", func(t *testing.T) {
		w := e.do(t, e.bob, http.MethodGet,
			"/api/v1/connections/status?event_id="+e.event.ID.String()+"&user_id="+e.alice.String(), nil)
		require.Equal(t, http.StatusOK, w.Code)
		var status struct {
			Status string `json:"status"`
		}
		decode(t, w, &status)
		assert.Equal(t, "accepted", status.Status)
	})
}

func TestConnectionRequestValidation(t *testing.T) {
	e := newTestEnv(t)

	cases := []struct {
		name   string
		user   uuid.UUID
		body   interface{}
		status int
		code   string
	}{
		{"self", e.alice, gin.H{"event_id": e.event.ID, "recipient_id": e.alice}, http.StatusBadRequest, "self_connection"},
		{"recipient outside room", e.alice, gin.H{"event_id": e.event.ID, "recipient_id": e.outsider}, http.StatusForbidden, "not_room_member"},
		{"unknown event", e.alice, gin.H{"event_id": uuid.New(), "recipient_id": e.bob}, http.StatusNotFound, "event_not_found"},
		{"malformed body", e.alice, "{", http.StatusBadRequest, "invalid_request"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := e.do(t, tc.user, http.MethodPost, "/api/v1/connections", tc.body)
			assert.Equal(t, tc.status, w.Code, w.Body.String())
			assert.Equal(t, tc.code, errorCode(t, w))
		})
	}

	w := e.do(t, e.alice, http.MethodPost, "/api/v1/connections/not-a-uuid/respond", gin.H{"decision": "accept"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_request", errorCode(t, w))

	w = e.do(t, e.alice, http.MethodPost, "/api/v1/connections/"+uuid.NewString()+"/respond", gin.H{"decision": "accept"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "connection_not_found", errorCode(t, w))
}

func TestDuplicateRequestConflicts(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, e.alice, http.MethodPost, "/api/v1/connections", gin.H{"event_id": e.event.ID, "recipient_id": e.bob})
	require.Equal(t, http.StatusCreated, w.Code)

	w = e.do(t, e.bob, http.MethodPost, "/api/v1/connections", gin.H{"event_id": e.event.ID, "recipient_id": e.alice})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "duplicate_connection", errorCode(t, w))
}
