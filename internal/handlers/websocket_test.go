package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thereayou/gigmate/internal/realtime"
	ws "github.com/thereayou/gigmate/internal/websocket"
)

func dial(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msg ws.Message) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(msg))
}

// readFrame пропускает служебные ping-кадры
func readFrame(t *testing.T, conn *websocket.Conn) ws.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var msg ws.Message
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type != ws.TypePing {
			return msg
		}
	}
}

func TestWebSocketRoomSubscription(t *testing.T) {
	e := newTestEnv(t)
	srv := httptest.NewServer(e.router)
	t.Cleanup(srv.Close)

	conn := dial(t, srv, e.token(t, e.alice))
	ch := realtime.RoomChannel(e.event.ID)

	w := e.do(t, e.bob, http.MethodPost, "/api/v1/rooms/"+e.event.ID.String()+"/messages", gin.H{"content": "before"})
	require.Equal(t, http.StatusCreated, w.Code)

	send(t, conn, ws.Message{Type: ws.TypeSubscribe, Channel: &ch})
	snap := readFrame(t, conn)
	require.Equal(t, ws.TypeSnapshot, snap.Type)
	var snapshot struct {
		Messages []struct {
			Content string `json:"content"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(snap.Data, &snapshot))
	require.Len(t, snapshot.Messages, 1)
	assert.Equal(t, "before", snapshot.Messages[0].Content)

	w = e.do(t, e.bob, http.MethodPost, "/api/v1/rooms/"+e.event.ID.String()+"/messages", gin.H{"content": "after"})
	require.Equal(t, http.StatusCreated, w.Code)

	ev := readFrame(t, conn)
	require.Equal(t, ws.TypeEvent, ev.Type)
	assert.Equal(t, realtime.TypeRoomMessage, ev.Event)
	require.NotNil(t, ev.Channel)
	assert.Equal(t, ch, *ev.Channel)
	var msg struct {
		Content string `json:"content"`
	}
	require.NoError(t, json.Unmarshal(ev.Data, &msg))
	assert.Equal(t, "after", msg.Content)

	// сообщение через сокет приходит обратно событием
	data, _ := json.Marshal(gin.H{"content": "from socket"})
	send(t, conn, ws.Message{Type: ws.TypeMessage, Channel: &ch, Data: data})
	ev2 := readFrame(t, conn)
	require.Equal(t, ws.TypeEvent, ev2.Type)
	assert.Equal(t, ev.Seq+1, ev2.Seq)
}

func TestWebSocketSubscribeRejected(t *testing.T) {
	e := newTestEnv(t)
	srv := httptest.NewServer(e.router)
	t.Cleanup(srv.Close)

	conn := dial(t, srv, e.token(t, e.outsider))

	cases := []struct {
		name string
		ch   realtime.Channel
		code string
	}{
		{"room without membership", realtime.RoomChannel(e.event.ID), "not_room_member"},
		{"foreign user channel", realtime.UserChannel(e.alice), "not_participant"},
		{"unknown thread", realtime.ThreadChannel(uuid.New()), "thread_not_found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ch := tc.ch
			send(t, conn, ws.Message{Type: ws.TypeSubscribe, Channel: &ch})
			frame := readFrame(t, conn)
			require.Equal(t, ws.TypeError, frame.Type)
			var body errorBody
			require.NoError(t, json.Unmarshal(frame.Data, &body))
			assert.Equal(t, tc.code, body.Error)
		})
	}

	send(t, conn, ws.Message{Type: ws.TypeSubscribe})
	frame := readFrame(t, conn)
	require.Equal(t, ws.TypeError, frame.Type)
	var body errorBody
	require.NoError(t, json.Unmarshal(frame.Data, &body))
	assert.Equal(t, "invalid_message", body.Error)
}

func TestWebSocketUserChannelGetsConnectionEvents(t *testing.T) {
	e := newTestEnv(t)
	srv := httptest.NewServer(e.router)
	t.Cleanup(srv.Close)

	conn := dial(t, srv, e.token(t, e.bob))
	ch := realtime.UserChannel(e.bob)
	send(t, conn, ws.Message{Type: ws.TypeSubscribe, Channel: &ch})
	snap := readFrame(t, conn)
	require.Equal(t, ws.TypeSnapshot, snap.Type)

	e.acceptedThread(t)

	var got []realtime.EventType
	for len(got) < 3 {
		frame := readFrame(t, conn)
		require.Equal(t, ws.TypeEvent, frame.Type)
		got = append(got, frame.Event)
	}
	assert.Equal(t, []realtime.EventType{
		realtime.TypeConnectionRequested,
		realtime.TypeThreadCreated,
		realtime.TypeConnectionResolved,
	}, got)
}
