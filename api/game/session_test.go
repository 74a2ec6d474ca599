package gameapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/beka-birhanu/vinom-client/api"
	"github.com/beka-birhanu/vinom-client/api/i"
	"github.com/beka-birhanu/vinom-client/api/identity"
	dmn "github.com/beka-birhanu/vinom-client/domain"
	"github.com/beka-birhanu/vinom-client/infrastruture/token"
	"github.com/beka-birhanu/vinom-client/maze"
	"github.com/beka-birhanu/vinom-client/service"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type queueStub struct{ moves int }

func (q *queueStub) SubmitMove(int, int) bool { q.moves++; return true }
func (q *queueStub) PendingMoves() int        { return q.moves }

func openMaze(t *testing.T) *maze.Maze {
	t.Helper()
	cells := [][]maze.Cell{
		{{Row: 0, Col: 0}, {Row: 0, Col: 1}},
		{{Row: 1, Col: 0}, {Row: 1, Col: 1, Value: 9}},
	}
	cells[0][0].Walls[maze.Bottom] = true
	cells[1][0].Walls[maze.Top] = true
	m, err := maze.Load(2, 2, maze.Position{}, maze.Position{Row: 1, Col: 1}, "Forest", cells)
	require.NoError(t, err)
	return m
}

type apiFixture struct {
	handler http.Handler
	client  *service.GameClient
	token   string
}

func newFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gc := service.NewGameClient()
	gc.SetMoveSubmitter(&queueStub{})
	sc, err := NewSessionController(gc, nil)
	require.NoError(t, err)

	tokenizer := token.NewJwtService("test-secret", "vinom-client")
	tok, err := tokenizer.Generate(map[string]interface{}{"operator": "test"}, time.Minute)
	require.NoError(t, err)

	router := api.NewRouter(api.Config{
		BaseURL:                 "/api",
		Controllers:             []i.Controller{sc},
		AuthorizationMiddleware: identity.Authoriz(tokenizer),
	})
	return &apiFixture{handler: router.Handler(), client: gc, token: tok}
}

func (f *apiFixture) do(method, path, body string, auth bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if auth {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func TestHealthAndSession(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/v1/health", "", false)
	assert.Equal(t, http.StatusOK, w.Code)

	f.client.OnScoreChanged(12)
	f.client.OnTurnChanged(true)
	w = f.do(http.MethodGet, "/api/v1/session", "", false)
	require.Equal(t, http.StatusOK, w.Code)

	var snap dmn.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, f.client.SessionID(), snap.SessionID)
	assert.Equal(t, 12, snap.Score)
	assert.True(t, snap.MyTurn)
}

func TestMaze(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/v1/maze", "", false)
	assert.Equal(t, http.StatusNotFound, w.Code)

	f.client.OnMazeReady(openMaze(t))
	w = f.do(http.MethodGet, "/api/v1/maze", "", false)
	require.Equal(t, http.StatusOK, w.Code)

	var resp MazeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Rows)
	assert.Equal(t, "Forest", resp.Theme)
	assert.Equal(t, dmn.Position{Row: 1, Col: 1}, resp.End)
	assert.Equal(t, 9, resp.Cells[1][1].Value)
	assert.True(t, resp.Cells[0][0].Walls.Bottom)
	assert.False(t, resp.Cells[0][0].Walls.Right)
}

func TestMove(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(gc *service.GameClient)
		body     string
		auth     bool
		wantCode int
	}{
		{
			name:     "Unauthorized",
			setup:    func(gc *service.GameClient) {},
			body:     `{"from_row":0,"from_col":0,"to_row":0,"to_col":1}`,
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "Missing field",
			setup:    func(gc *service.GameClient) {},
			body:     `{"from_row":0,"from_col":0,"to_row":0}`,
			auth:     true,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "No maze",
			setup:    func(gc *service.GameClient) {},
			body:     `{"from_row":0,"from_col":0,"to_row":0,"to_col":1}`,
			auth:     true,
			wantCode: http.StatusServiceUnavailable,
		},
		{
			name: "Not my turn",
			setup: func(gc *service.GameClient) {
				gc.OnMazeReady(openMaze(t))
			},
			body:     `{"from_row":0,"from_col":0,"to_row":0,"to_col":1}`,
			auth:     true,
			wantCode: http.StatusConflict,
		},
		{
			name: "Through a wall",
			setup: func(gc *service.GameClient) {
				gc.OnMazeReady(openMaze(t))
				gc.OnTurnChanged(true)
			},
			body:     `{"from_row":0,"from_col":0,"to_row":1,"to_col":0}`,
			auth:     true,
			wantCode: http.StatusUnprocessableEntity,
		},
		{
			name: "Not from the player's cell",
			setup: func(gc *service.GameClient) {
				gc.OnMazeReady(openMaze(t))
				gc.OnTurnChanged(true)
			},
			body:     `{"from_row":1,"from_col":0,"to_row":1,"to_col":1}`,
			auth:     true,
			wantCode: http.StatusConflict,
		},
		{
			name: "Queued",
			setup: func(gc *service.GameClient) {
				gc.OnMazeReady(openMaze(t))
				gc.OnTurnChanged(true)
			},
			body:     `{"from_row":0,"from_col":0,"to_row":0,"to_col":1}`,
			auth:     true,
			wantCode: http.StatusAccepted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setup(f.client)

			w := f.do(http.MethodPost, "/api/v1/moves", tt.body, tt.auth)
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
		})
	}
}

func TestEvents(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.handler)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/events"

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	ws, _, err := websocket.DefaultDialer.Dial(url+"?access_token="+f.token, nil)
	require.NoError(t, err)
	defer ws.Close()

	// The subscription is registered after the upgrade; keep publishing until
	// the first event arrives.
	received := make(chan dmn.Event, 1)
	go func() {
		var e dmn.Event
		if err := ws.ReadJSON(&e); err == nil {
			received <- e
		}
	}()

	deadline := time.After(2 * time.Second)
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case e := <-received:
			assert.Equal(t, dmn.EventOpponentMove, e.Type)
			payload, err := json.Marshal(e.Payload)
			require.NoError(t, err)
			assert.JSONEq(t, `{"row":1,"col":0}`, string(bytes.TrimSpace(payload)))
			return
		case <-ticker.C:
			f.client.OnOpponentMove(1, 0)
		case <-deadline:
			t.Fatal("no event received over websocket")
		}
	}
}
