package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/tabula"
	"github.com/aretw0/tabula/internal/demo"
	"github.com/aretw0/tabula/pkg/adapters/memory"
	"github.com/aretw0/tabula/pkg/domain"
	"github.com/aretw0/tabula/pkg/game"
	"github.com/aretw0/tabula/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const duoSetup = `{"players":[{"position":1,"name":"Ada"},{"position":2,"name":"Bo"}],"settings":{"rounds":4},"seed":"http"}`

func newTestHandler(t *testing.T, opts ...Option) http.Handler {
	t.Helper()
	eng, err := tabula.New(demo.Definition(game.ConfirmAuto))
	require.NoError(t, err)
	mgr := session.NewManager(eng, memory.NewStore())
	return NewHandler(mgr, append([]Option{WithFlow(eng.Inspect())}, opts...)...)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func createGame(t *testing.T, h http.Handler) string {
	t.Helper()
	w := do(t, h, http.MethodPost, "/games", duoSetup)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp CreateGameResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ID)
	assert.Equal(t, 1, resp.State.CurrentPlayerPosition)
	return resp.ID
}

func TestServer_GameLifecycle(t *testing.T) {
	h := newTestHandler(t)
	id := createGame(t, h)

	w := do(t, h, http.MethodGet, "/games", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"games":["`+id+`"]}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/games/"+id+"/selection?player=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var prompt domain.MoveResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &prompt))
	assert.Equal(t, "introduce", prompt.Move.Action)
	require.NotNil(t, prompt.Selection)
	assert.Equal(t, domain.SelectText, prompt.Selection.Kind)

	w = do(t, h, http.MethodPost, "/games/"+id+"/moves", `{"action":"introduce","player":1,"args":["Ada"]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result domain.MoveResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.True(t, result.Accepted())
	assert.Equal(t, 2, result.State.CurrentPlayerPosition)
	assert.Len(t, result.Players, 2)

	w = do(t, h, http.MethodGet, "/games/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	var state domain.GameState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, 1, state.Sequence)

	w = do(t, h, http.MethodGet, "/games/"+id+"/players/2", "")
	require.Equal(t, http.StatusOK, w.Code)
	var view domain.PlayerState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, 2, view.Position)

	w = do(t, h, http.MethodDelete, "/games/"+id, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodGet, "/games/"+id, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_RejectedMoveIsInBand(t *testing.T) {
	h := newTestHandler(t)
	id := createGame(t, h)

	w := do(t, h, http.MethodPost, "/games/"+id+"/moves", `{"action":"introduce","player":2,"args":["Bo"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	var result domain.MoveResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.False(t, result.Accepted())
	assert.NotEmpty(t, result.Response.Error)

	w = do(t, h, http.MethodGet, "/games/"+id, "")
	var state domain.GameState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, 0, state.Sequence, "rejected moves are not persisted")
}

func TestServer_WrongArgumentTypeIsInBand(t *testing.T) {
	h := newTestHandler(t)
	id := createGame(t, h)

	w := do(t, h, http.MethodPost, "/games/"+id+"/moves", `{"action":"introduce","player":1,"args":[1.5]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result domain.MoveResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.False(t, result.Accepted())
	assert.Equal(t, "name must be text", result.Response.Error)
	require.NotNil(t, result.Response.Selection)
	assert.Equal(t, domain.SelectText, result.Response.Selection.Kind)
}

func TestServer_Errors(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"malformed setup", http.MethodPost, "/games", "{", http.StatusBadRequest},
		{"no players", http.MethodPost, "/games", `{"players":[]}`, http.StatusBadRequest},
		{"unknown game", http.MethodGet, "/games/missing", "", http.StatusNotFound},
		{"unknown game move", http.MethodPost, "/games/missing/moves", `{"action":"rest","player":1}`, http.StatusNotFound},
		{"bad player param", http.MethodGet, "/games/missing/selection?player=x", "", http.StatusBadRequest},
		{"bad position", http.MethodGet, "/games/missing/players/x", "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			var resp Error
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}

	id := createGame(t, h)
	w := do(t, h, http.MethodGet, "/games/"+id+"/players/9", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_FlowAndMetadata(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("# metrics"))
	})
	h := newTestHandler(t, WithMetrics(metrics))
	id := createGame(t, h)

	w := do(t, h, http.MethodGet, "/flow", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "graph TD"))
	assert.NotContains(t, w.Body.String(), "class ")

	w = do(t, h, http.MethodGet, "/flow?game="+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "class introduce current")

	w = do(t, h, http.MethodGet, "/health", "")
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/info", "")
	assert.Contains(t, w.Body.String(), `"app":"tabula-http"`)

	w = do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, "# metrics", w.Body.String())

	w = do(t, h, http.MethodOptions, "/games", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_SubscribeEvents(t *testing.T) {
	h := newTestHandler(t)
	id := createGame(t, h)

	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/games/"+id+"/events", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	readUntil := func(prefix string) string {
		for lines.Scan() {
			if strings.HasPrefix(lines.Text(), prefix) {
				return lines.Text()
			}
		}
		t.Fatalf("stream ended before %q", prefix)
		return ""
	}
	assert.Equal(t, "data: connected", readUntil("data:"))

	move := bytes.NewBufferString(`{"action":"introduce","player":1,"args":["Ada"]}`)
	post, err := srv.Client().Post(srv.URL+"/games/"+id+"/moves", "application/json", move)
	require.NoError(t, err)
	post.Body.Close()

	assert.Equal(t, "event: move", readUntil("event:"))
	data := readUntil("data:")
	assert.Contains(t, data, `"action":"introduce"`)
	assert.Contains(t, data, `"sequence":1`)
}

func TestStreamManager(t *testing.T) {
	sm := NewStreamManager()
	ch, cancel := sm.Subscribe("g1")
	assert.Equal(t, 1, sm.Subscribers("g1"))

	assert.Equal(t, 1, sm.Broadcast("g1", "hello"))
	assert.Equal(t, 0, sm.Broadcast("g2", "nobody"))
	assert.Equal(t, "hello", <-ch)

	for i := 0; i < 10; i++ {
		sm.Broadcast("g1", "fill")
	}
	assert.Equal(t, 0, sm.Broadcast("g1", "dropped"), "full buffers drop messages")

	cancel()
	cancel()
	assert.Equal(t, 0, sm.Subscribers("g1"))
}

func TestWatched(t *testing.T) {
	turn := `{"move":{"action":"rest","player":1,"args":[]},"diff":{"game_id":"g","sequence":3,"current_player":2}}`
	board := `{"move":{"action":"move","player":1,"args":["$el(meadow)"]},"diff":{"game_id":"g","sequence":3,"board_changed":true}}`

	assert.True(t, watched(turn, []string{"turn"}))
	assert.False(t, watched(turn, []string{"board", "finished"}))
	assert.True(t, watched(board, []string{" position", "board"}))
	assert.True(t, watched("not json", []string{"turn"}), "undecodable events are passed through")
}
