package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/thereayou/gigmate/internal/database"
	"github.com/thereayou/gigmate/internal/database/dbtest"
	"github.com/thereayou/gigmate/internal/middleware"
	"github.com/thereayou/gigmate/internal/models"
	"github.com/thereayou/gigmate/internal/realtime"
	"github.com/thereayou/gigmate/internal/services"
	ws "github.com/thereayou/gigmate/internal/websocket"
	"github.com/thereayou/gigmate/pkg/auth"
	"github.com/thereayou/gigmate/pkg/logger"
)

// memoryRevocations - черный список в памяти вместо Redis
type memoryRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func (m *memoryRevocations) IsRevoked(_ context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[token]
	return ok, nil
}

func (m *memoryRevocations) Revoke(_ context.Context, token string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[token] = ttl
	return nil
}

type testEnv struct {
	db      *database.Database
	events  *realtime.Hub
	wsHub   *ws.Hub
	jwt     *auth.JWTManager
	revoked *memoryRevocations
	router  *gin.Engine

	event    *models.Event
	alice    uuid.UUID
	bob      uuid.UUID
	outsider uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	log := logger.Nop()

	e := &testEnv{
		db:       dbtest.New(t),
		events:   realtime.NewHub(64, log),
		wsHub:    ws.NewHub(log),
		jwt:      auth.NewJWTManager("test-secret", time.Hour),
		revoked:  &memoryRevocations{revoked: make(map[string]time.Duration)},
		alice:    uuid.New(),
		bob:      uuid.New(),
		outsider: uuid.New(),
		event: &models.Event{
			ID:       uuid.New(),
			Name:     "Night Show",
			Artist:   "X",
			Genre:    "rock",
			StartsAt: time.Date(2026, 11, 1, 20, 0, 0, 0, time.UTC),
		},
	}
	require.NoError(t, e.db.SaveEvent(ctx, e.event))
	for id, name := range map[uuid.UUID]string{e.alice: "Alice", e.bob: "Bob", e.outsider: "Olga"} {
		require.NoError(t, e.db.SaveProfile(ctx, &models.Profile{
			ID:          id,
			DisplayName: name,
			Genres:      []string{"rock"},
			BudgetTier:  "mid",
		}))
	}

	hubCtx, cancel := context.WithCancel(context.Background())
	go e.wsHub.Run(hubCtx)
	t.Cleanup(cancel)

	db := e.db
	rooms := services.NewRoomService(db, db, db, e.events, log)
	rooms.SetPresence(e.wsHub)
	catalog := services.NewCatalogService(db, db)
	orchestrator := services.NewOrchestrator(db, db, e.events, log)
	connections := services.NewConnectionService(db, db, db, orchestrator, e.events,
		services.ConnectionOptions{AllowRequestAfterDecline: true}, log)
	threads := services.NewThreadService(db, db, e.events, log)

	authH := NewAuthHandler(e.jwt, e.revoked, log)
	userH := NewUserHandler(catalog, log)
	roomH := NewRoomHandler(rooms, catalog, log)
	msgH := NewHTTPMessageHandler(rooms, threads, log)
	connH := NewConnectionHandler(connections, orchestrator, log)
	threadH := NewThreadHandler(threads, log)
	wsH := NewWebSocketHandler(e.wsHub, NewMessageHandler(e.events, rooms, threads, connections, log), nil, log)

	r := gin.New()
	authMW := middleware.AuthMiddleware(e.jwt, e.revoked, log)
	r.GET("/ws", authMW, wsH.HandleWebSocket)
	api := r.Group("/api/v1", authMW)
	api.POST("/auth/logout", authH.Logout)
	api.GET("/users/me", userH.GetMe)
	api.GET("/users/:id", userH.GetUser)
	api.GET("/events", roomH.ListEvents)
	api.GET("/rooms", roomH.JoinedRooms)
	api.POST("/rooms/:id/join", roomH.JoinRoom)
	api.GET("/rooms/:id/members", roomH.ListMembers)
	api.GET("/rooms/:id/messages", msgH.GetRoomMessages)
	api.POST("/rooms/:id/messages", msgH.SendRoomMessage)
	api.POST("/connections", connH.Request)
	api.GET("/connections", connH.List)
	api.GET("/connections/status", connH.PairStatus)
	api.POST("/connections/:id/respond", connH.Respond)
	api.POST("/connections/:id/thread", connH.EnsureThread)
	api.GET("/threads/:id", threadH.Get)
	api.GET("/threads/:id/messages", msgH.GetThreadMessages)
	api.POST("/threads/:id/messages", msgH.SendThreadMessage)
	api.PUT("/threads/:id/going-together", threadH.SetGoingTogether)
	api.GET("/threads/:id/checklist", threadH.ListItems)
	api.POST("/threads/:id/checklist", threadH.AddItem)
	api.POST("/threads/:id/checklist/:itemId/toggle", threadH.ToggleItem)
	api.PATCH("/threads/:id/checklist/:itemId", threadH.UpdateItem)
	api.DELETE("/threads/:id/checklist/:itemId", threadH.DeleteItem)
	e.router = r

	e.do(t, e.alice, http.MethodPost, "/api/v1/rooms/"+e.event.ID.String()+"/join", nil)
	e.do(t, e.bob, http.MethodPost, "/api/v1/rooms/"+e.event.ID.String()+"/join", nil)
	return e
}

func (e *testEnv) token(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, err := e.jwt.Generate(userID)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, userID uuid.UUID, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return e.doWithToken(t, e.token(t, userID), method, path, body)
}

func (e *testEnv) doWithToken(t *testing.T, token, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorBody
	decode(t, w, &body)
	return body.Error
}

// acceptedThread проводит связь alice -> bob до принятия и возвращает id треда
func (e *testEnv) acceptedThread(t *testing.T) uuid.UUID {
	t.Helper()
	w := e.do(t, e.alice, http.MethodPost, "/api/v1/connections", gin.H{
		"event_id":     e.event.ID,
		"recipient_id": e.bob,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var conn struct {
		ID uuid.UUID `json:"id"`
	}
	decode(t, w, &conn)

	w = e.do(t, e.bob, http.MethodPost, "/api/v1/connections/"+conn.ID.String()+"/respond", gin.H{"decision": "accept"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res struct {
		Status   string     `json:"status"`
		ThreadID *uuid.UUID `json:"thread_id"`
	}
	decode(t, w, &res)
	require.NotNil(t, res.ThreadID)
	return *res.ThreadID
}
