package api_test

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

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/banglascrabble/internal/api"
	"github.com/mcoot/banglascrabble/internal/api/apierr"
	"github.com/mcoot/banglascrabble/internal/api/response"
	"github.com/mcoot/banglascrabble/internal/broadcast"
	"github.com/mcoot/banglascrabble/internal/factory"
	"github.com/mcoot/banglascrabble/internal/model"
	"github.com/mcoot/banglascrabble/internal/storage"
	"github.com/mcoot/banglascrabble/internal/testutil"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	app := factory.NewTestApp()
	t.Cleanup(func() { _ = app.Close() })

	router := api.NewRouter(api.RouterConfig{
		Logger:            testutil.NopLogger(),
		AuthService:       app.AuthService,
		Players:           app.Storage,
		SessionController: app.SessionController,
		BotService:        app.BotService,
		DictionaryService: app.DictionaryService,
		TilesService:      app.TilesService,
		Broadcaster:       app.Broadcaster,
	})

	return &testServer{handler: router, app: app}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) guest(t *testing.T, username string) response.AuthResponse {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/v1/players/guest", map[string]string{"username": username}, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp response.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func (ts *testServer) createSession(t *testing.T, token string) string {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/v1/sessions", nil, token)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[response.Snapshot](t, rr).Session.ID
}

func (ts *testServer) join(t *testing.T, id, token string) response.Snapshot {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/v1/sessions/"+id+"/join", nil, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	return decode[response.Snapshot](t, rr)
}

// setRack replaces a member's rack directly in storage
func (ts *testServer) setRack(t *testing.T, id, playerID string, letters ...model.Letter) {
	t.Helper()
	ctx := context.Background()
	store := ts.app.Storage

	session, err := store.GetSession(ctx, model.SessionID(id))
	require.NoError(t, err)
	members, err := store.ListMembers(ctx, model.SessionID(id))
	require.NoError(t, err)
	for _, m := range members {
		if m.PlayerID == model.PlayerID(playerID) {
			m.Rack = letters
		}
	}
	session.Version++
	require.NoError(t, store.Apply(ctx, &storage.Changeset{Session: session, Members: members}))
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[apierr.ErrorResponse](t, rr).Error.Code
}

func movePayload(placements ...map[string]any) map[string]any {
	return map[string]any{"placements": placements}
}

func cell(letter string, row, col int) map[string]any {
	return map[string]any{"letter": letter, "row": row, "col": col}
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestCreateGuestPlayer(t *testing.T) {
	ts := newTestServer(t)

	body := map[string]string{"username": "alice", "display_name": "Alice"}
	rr := ts.request(http.MethodPost, "/api/v1/players/guest", body, "")
	assert.Equal(t, http.StatusCreated, rr.Code)

	resp := decode[response.AuthResponse](t, rr)
	assert.Equal(t, "Alice", resp.Player.DisplayName)
	assert.Equal(t, "alice", resp.Player.Username)
	assert.True(t, resp.Player.IsGuest)
	assert.NotEmpty(t, resp.SessionToken)

	// Usernames are unique
	rr = ts.request(http.MethodPost, "/api/v1/players/guest", body, "")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeUsernameExists, errorCode(t, rr))
}

func TestCreateGuestValidation(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/players/guest", map[string]string{}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidRequest, errorCode(t, rr))

	rr = ts.request(http.MethodPost, "/api/v1/players/guest", map[string]any{"username": "x", "extra": 1}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRegisterLoginLogout(t *testing.T) {
	ts := newTestServer(t)

	// Register
	registerBody := map[string]string{
		"username":     "alice",
		"password":     "secret123",
		"display_name": "Alice",
	}
	rr := ts.request(http.MethodPost, "/api/v1/players/register", registerBody, "")
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.False(t, decode[response.AuthResponse](t, rr).Player.IsGuest)

	// Wrong password
	rr = ts.request(http.MethodPost, "/api/v1/players/login", map[string]string{"username": "alice", "password": "nope123"}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, apierr.CodeInvalidCredentials, errorCode(t, rr))

	// Login
	rr = ts.request(http.MethodPost, "/api/v1/players/login", map[string]string{"username": "alice", "password": "secret123"}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	token := decode[response.AuthResponse](t, rr).SessionToken

	rr = ts.request(http.MethodGet, "/api/v1/players/me", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Alice", decode[response.Player](t, rr).DisplayName)

	// Logout revokes the token
	rr = ts.request(http.MethodPost, "/api/v1/players/logout", nil, token)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = ts.request(http.MethodGet, "/api/v1/players/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRegisterWeakPassword(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/players/register", map[string]string{"username": "alice", "password": "abc"}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeWeakPassword, errorCode(t, rr))
}

func TestUnauthorizedWithoutToken(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/players/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/sessions", nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestTokenFromCookieAndQuery(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.guest(t, "alice")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/players/me", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: alice.SessionToken})
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/players/me?token="+alice.SessionToken, nil)
	rr = httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestGetPlayer(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.guest(t, "alice")
	bob := ts.guest(t, "bob")

	rr := ts.request(http.MethodGet, "/api/v1/players/"+bob.Player.ID, nil, alice.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "bob", decode[response.Player](t, rr).Username)

	rr = ts.request(http.MethodGet, "/api/v1/players/missing", nil, alice.SessionToken)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodePlayerNotFound, errorCode(t, rr))
}

func TestSessionLifecycle(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.guest(t, "alice")
	bob := ts.guest(t, "bob")

	rr := ts.request(http.MethodPost, "/api/v1/sessions", nil, alice.SessionToken)
	require.Equal(t, http.StatusCreated, rr.Code)
	created := decode[response.Snapshot](t, rr)
	assert.Equal(t, "waiting", created.Session.Status)
	assert.Len(t, created.Session.Board, 225)
	assert.Equal(t, 209, created.Session.BagCount)
	id := created.Session.ID

	snap := ts.join(t, id, alice.SessionToken)
	assert.Equal(t, "waiting", snap.Session.Status)
	require.Len(t, snap.Members, 1)
	assert.Len(t, snap.Members[0].Rack, 7)

	snap = ts.join(t, id, bob.SessionToken)
	assert.Equal(t, "active", snap.Session.Status)
	require.NotNil(t, snap.CurrentPlayer)
	assert.Equal(t, alice.Player.ID, snap.CurrentPlayer.ID)
	assert.Equal(t, 195, snap.Session.BagCount)

	// Joining twice is a rule violation
	rr = ts.request(http.MethodPost, "/api/v1/sessions/"+id+"/join", nil, bob.SessionToken)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, model.CodeAlreadyMember, errorCode(t, rr))

	rr = ts.request(http.MethodGet, "/api/v1/sessions", nil, alice.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[[]response.SessionSummary](t, rr)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)

	rr = ts.request(http.MethodGet, "/api/v1/sessions/"+id, nil, alice.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[response.Snapshot](t, rr).Members, 2)
}

func TestUnknownSession(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.guest(t, "alice")

	rr := ts.request(http.MethodGet, "/api/v1/sessions/nope", nil, alice.SessionToken)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeSessionNotFound, errorCode(t, rr))

	rr = ts.request(http.MethodPost, "/api/v1/sessions/nope/join", nil, alice.SessionToken)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSessionFull(t *testing.T) {
	ts := newTestServer(t)
	host := ts.guest(t, "host")
	id := ts.createSession(t, host.SessionToken)

	for _, name := range []string{"p1", "p2", "p3", "p4"} {
		ts.join(t, id, ts.guest(t, name).SessionToken)
	}

	rr := ts.request(http.MethodPost, "/api/v1/sessions/"+id+"/join", nil, host.SessionToken)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, model.CodeSessionFull, errorCode(t, rr))
}

func TestSubmitMove(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.guest(t, "alice")
	bob := ts.guest(t, "bob")
	id := ts.createSession(t, alice.SessionToken)
	ts.join(t, id, alice.SessionToken)
	ts.join(t, id, bob.SessionToken)
	ts.setRack(t, id, alice.Player.ID, "ঘ", "র", "ক")

	move := movePayload(cell("ঘ", 0, 0), cell("র", 0, 1))

	// Not bob's turn
	rr := ts.request(http.MethodPost, "/api/v1/sessions/"+id+"/moves", move, bob.SessionToken)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, model.CodeWrongTurn, errorCode(t, rr))

	// Letters missing from the rack are rejected the same way every time
	bad := movePayload(cell("ম", 0, 0))
	for range 2 {
		rr = ts.request(http.MethodPost, "/api/v1/sessions/"+id+"/moves", bad, alice.SessionToken)
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.Equal(t, model.CodeRackShortage, errorCode(t, rr))
	}

	// Shape errors never reach the rules
	rr = ts.request(http.MethodPost, "/api/v1/sessions/"+id+"/moves", movePayload(), alice.SessionToken)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/sessions/"+id+"/moves", move, alice.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	resp := decode[response.MoveResponse](t, rr)
	assert.Equal(t, "ঘর", resp.Move.Word)
	assert.Equal(t, 18, resp.Move.Score)
	assert.Equal(t, "ঘ", resp.State.Session.Board[0])
	assert.Equal(t, "র", resp.State.Session.Board[1])
	assert.Equal(t, bob.Player.ID, resp.State.Session.CurrentPlayerID)
	assert.Len(t, resp.State.Moves, 1)

	// The occupied cell is now rejected
	ts.setRack(t, id, bob.Player.ID, "ক")
	rr = ts.request(http.MethodPost, "/api/v1/sessions/"+id+"/moves", movePayload(cell("ক", 0, 0)), bob.SessionToken)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, model.CodeCellOccupied, errorCode(t, rr))
}

func TestPreviewAndHints(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.guest(t, "alice")
	bob := ts.guest(t, "bob")
	id := ts.createSession(t, alice.SessionToken)
	ts.join(t, id, alice.SessionToken)
	ts.join(t, id, bob.SessionToken)
	ts.setRack(t, id, bob.Player.ID, "ঘ", "র")

	rr := ts.request(http.MethodPost, "/api/v1/sessions/"+id+"/preview", movePayload(cell("ঘ", 0, 0), cell("র", 0, 1)), bob.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	eval := decode[response.Evaluation](t, rr)
	assert.Equal(t, 18, eval.Score)
	assert.Equal(t, []string{"ঘ", "র"}, eval.UsedLetters)

	// Nothing was committed
	rr = ts.request(http.MethodGet, "/api/v1/sessions/"+id, nil, bob.SessionToken)
	assert.Empty(t, decode[response.Snapshot](t, rr).Moves)

	rr = ts.request(http.MethodGet, "/api/v1/sessions/"+id+"/hints", nil, bob.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)
	var words []string
	for _, s := range decode[response.HintsResponse](t, rr).Suggestions {
		words = append(words, s.Word)
	}
	assert.Contains(t, words, "ঘর")

	outsider := ts.guest(t, "carol")
	rr = ts.request(http.MethodGet, "/api/v1/sessions/"+id+"/hints", nil, outsider.SessionToken)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSkipTurn(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.guest(t, "alice")
	bob := ts.guest(t, "bob")
	id := ts.createSession(t, alice.SessionToken)
	ts.join(t, id, alice.SessionToken)

	// Waiting sessions have no turn holder
	rr := ts.request(http.MethodPost, "/api/v1/sessions/"+id+"/skip", nil, alice.SessionToken)
	assert.Equal(t, http.StatusConflict, rr.Code)

	ts.join(t, id, bob.SessionToken)
	rr = ts.request(http.MethodPost, "/api/v1/sessions/"+id+"/skip", nil, alice.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)
	snap := decode[response.Snapshot](t, rr)
	assert.Equal(t, bob.Player.ID, snap.Session.CurrentPlayerID)
	assert.Equal(t, 1, snap.Session.ConsecutiveSkips)
}

func TestAddBotPlaysItsTurn(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.guest(t, "alice")
	id := ts.createSession(t, alice.SessionToken)
	ts.join(t, id, alice.SessionToken)

	rr := ts.request(http.MethodPost, "/api/v1/sessions/"+id+"/bots", map[string]string{"strategy": "pass"}, alice.SessionToken)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	botPlayer := decode[response.Player](t, rr)
	assert.True(t, botPlayer.IsBot)
	assert.Equal(t, "Passer 1", botPlayer.DisplayName)

	// The bot skips straight after alice does, handing the turn back
	rr = ts.request(http.MethodPost, "/api/v1/sessions/"+id+"/skip", nil, alice.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)
	snap := decode[response.Snapshot](t, rr)
	assert.Equal(t, alice.Player.ID, snap.Session.CurrentPlayerID)
	assert.Equal(t, 2, snap.Session.ConsecutiveSkips)

	rr = ts.request(http.MethodPost, "/api/v1/sessions/"+id+"/bots", map[string]string{"strategy": "chess"}, alice.SessionToken)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeUnknownStrategy, errorCode(t, rr))

	outsider := ts.guest(t, "mallory")
	rr = ts.request(http.MethodPost, "/api/v1/sessions/"+id+"/bots", nil, outsider.SessionToken)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestStaticData(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/tiles", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 209, decode[response.TilesResponse](t, rr).Total)

	rr = ts.request(http.MethodGet, "/api/v1/board/layout", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	layout := decode[response.LayoutResponse](t, rr)
	assert.Equal(t, 15, layout.Size)
	assert.Equal(t, 7, layout.Center.Row)
	assert.Equal(t, 7, layout.Center.Col)

	rr = ts.request(http.MethodGet, "/api/v1/dictionary/ঘর", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	word := decode[response.WordResponse](t, rr)
	assert.True(t, word.Valid)
	assert.True(t, word.InLexicon)

	rr = ts.request(http.MethodGet, "/api/v1/dictionary/abc", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, decode[response.WordResponse](t, rr).Valid)
}

func TestEventStream(t *testing.T) {
	ts := newTestServer(t)
	srv := httptest.NewServer(ts.handler)
	defer srv.Close()

	alice := ts.guest(t, "alice")
	bob := ts.guest(t, "bob")
	id := ts.createSession(t, alice.SessionToken)
	ts.join(t, id, alice.SessionToken)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/sessions/"+id+"/events?token="+alice.SessionToken, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	next := func() broadcast.Envelope {
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if data, ok := strings.CutPrefix(line, "data: "); ok {
				var env broadcast.Envelope
				require.NoError(t, json.Unmarshal([]byte(data), &env))
				return env
			}
		}
	}

	assert.Equal(t, model.EventStateUpdate, next().Type)

	ts.join(t, id, bob.SessionToken)
	assert.Equal(t, model.EventStateUpdate, next().Type)

	ts.request(http.MethodPost, "/api/v1/sessions/"+id+"/skip", nil, alice.SessionToken)
	assert.Equal(t, model.EventTurnSkipped, next().Type)
}

func TestEventStreamUnknownSession(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.guest(t, "alice")

	rr := ts.request(http.MethodGet, "/api/v1/sessions/nope/events", nil, alice.SessionToken)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestWebSocketTransport(t *testing.T) {
	ts := newTestServer(t)
	srv := httptest.NewServer(ts.handler)
	defer srv.Close()

	alice := ts.guest(t, "alice")
	bob := ts.guest(t, "bob")
	id := ts.createSession(t, alice.SessionToken)
	ts.join(t, id, alice.SessionToken)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + alice.SessionToken
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()
	_ = resp.Body.Close()

	read := func() map[string]json.RawMessage {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var frame map[string]json.RawMessage
		require.NoError(t, conn.ReadJSON(&frame))
		return frame
	}
	frameType := func(frame map[string]json.RawMessage) string {
		var s string
		require.NoError(t, json.Unmarshal(frame["type"], &s))
		return s
	}

	// Unknown session
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "joinGame", "session_id": "nope"}))
	frame := read()
	assert.Equal(t, "error", frameType(frame))
	var apiErr apierr.APIError
	require.NoError(t, json.Unmarshal(frame["payload"], &apiErr))
	assert.Equal(t, apierr.CodeSessionNotFound, apiErr.Code)

	// Attach, then see the next join
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "joinGame", "session_id": id}))
	assert.Equal(t, "stateUpdate", frameType(read()))

	ts.join(t, id, bob.SessionToken)
	frame = read()
	assert.Equal(t, "stateUpdate", frameType(frame))
	var snap response.Snapshot
	require.NoError(t, json.Unmarshal(frame["payload"], &snap))
	assert.Equal(t, "active", snap.Session.Status)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "dance"}))
	assert.Equal(t, "error", frameType(read()))

	// After leaving, the room is empty
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "leaveGame"}))
	assert.Eventually(t, func() bool {
		hub := ts.app.Broadcaster.GetHub(model.SessionID(id))
		return hub == nil || hub.ClientCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWebSocketRequiresAuth(t *testing.T) {
	ts := newTestServer(t)
	srv := httptest.NewServer(ts.handler)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
