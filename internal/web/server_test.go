package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/peterkuimelis/spiredeck/internal/archive"
	"github.com/peterkuimelis/spiredeck/internal/report"
)

const testRun = `{
  "play_id": "run-7",
  "character_chosen": "THE_SILENT",
  "floor_reached": 5,
  "master_deck": ["Strike_G", "Strike_G", "Strike_G", "Strike_G", "Strike_G",
                  "Defend_G", "Defend_G", "Defend_G", "Defend_G", "Defend_G",
                  "Neutralize+1", "Survivor", "Backflip"],
  "card_choices": [{"floor": 2, "picked": "Backflip"}],
  "campfire_choices": [{"floor": 4, "key": "SMITH", "data": "Neutralize"}]
}`

func newTestServer(t *testing.T, withArchive bool) *httptest.Server {
	t.Helper()
	opts := Options{Logger: zaptest.NewLogger(t)}
	if withArchive {
		store, err := archive.Open(filepath.Join(t.TempDir(), "archive.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })
		opts.Archive = store
	}
	srv := httptest.NewServer(NewServer(opts).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestIndex(t *testing.T) {
	srv := newTestServer(t, false)

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "<title>spiredeck</title>")

	resp, err = http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCharacters(t *testing.T) {
	srv := newTestServer(t, false)

	resp, err := http.Get(srv.URL + "/api/characters")
	require.NoError(t, err)
	chars := decodeBody[[]report.CharacterView](t, resp)
	assert.Len(t, chars, 4)
}

func TestReconstruct(t *testing.T) {
	srv := newTestServer(t, true)

	resp, err := http.Post(srv.URL+"/api/reconstruct", "application/json", strings.NewReader(testRun))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rep := decodeBody[report.Report](t, resp)
	assert.Equal(t, "run-7", rep.ID)
	assert.True(t, rep.Consistent)
	assert.Len(t, rep.Turns, 2)

	resp, err = http.Get(srv.URL + "/api/runs")
	require.NoError(t, err)
	summaries := decodeBody[[]archive.Summary](t, resp)
	require.Len(t, summaries, 1)
	assert.Equal(t, "run-7", summaries[0].ID)

	resp, err = http.Get(srv.URL + "/api/runs/run-7")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[report.Report](t, resp)
	assert.Equal(t, rep.Cards, got.Cards)

	resp, err = http.Get(srv.URL + "/api/runs/unknown")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/runs?limit=zero")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReconstructInvalid(t *testing.T) {
	srv := newTestServer(t, false)

	for _, body := range []string{
		`{"items_purchased": ["Anger"]}`,
		`{"campfire_choices": [{"floor": 1, "key": "SMITH"}]}`,
		`not json`,
	} {
		resp, err := http.Post(srv.URL+"/api/reconstruct", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		errBody := decodeBody[map[string]string](t, resp)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
		assert.NotEmpty(t, errBody["error"])
	}
}

func TestRunsWithoutArchive(t *testing.T) {
	srv := newTestServer(t, false)

	for _, path := range []string{"/api/runs", "/api/runs/run-7"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
}

// dialReplay starts a server without a test logger, since socket handlers
// can outlive the test, and connects to its replay endpoint.
func dialReplay(t *testing.T) (context.Context, *websocket.Conn) {
	t.Helper()
	srv := httptest.NewServer(NewServer(Options{Logger: zap.NewNop()}).Handler())
	t.Cleanup(srv.Close)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	conn.SetReadLimit(1 << 20)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return ctx, conn
}

func roundTrip(t *testing.T, ctx context.Context, conn *websocket.Conn, msg ClientMessage) ServerMessage {
	t.Helper()
	require.NoError(t, wsjson.Write(ctx, conn, msg))
	var resp ServerMessage
	require.NoError(t, wsjson.Read(ctx, conn, &resp))
	return resp
}

func TestReplaySocket(t *testing.T) {
	ctx, conn := dialReplay(t)

	resp := roundTrip(t, ctx, conn, ClientMessage{Type: MsgForward})
	assert.Equal(t, MsgError, resp.Type, "nothing loaded yet")

	resp = roundTrip(t, ctx, conn, ClientMessage{Type: MsgLoad, Run: json.RawMessage(testRun)})
	require.Equal(t, MsgState, resp.Type, resp.Error)
	require.NotNil(t, resp.Report)
	assert.Equal(t, "THE_SILENT", resp.Report.Character)
	assert.Equal(t, -1, resp.Deck.Floor)
	assert.Len(t, resp.Deck.Cards, 12)

	assert.Empty(t, resp.Events, "loading applies nothing")

	resp = roundTrip(t, ctx, conn, ClientMessage{Type: MsgForward})
	require.Equal(t, MsgState, resp.Type)
	require.NotNil(t, resp.Diff)
	assert.Equal(t, 2, resp.Diff.Floor)
	assert.Equal(t, []string{"Backflip"}, resp.Diff.Obtained)
	assert.Contains(t, resp.Deck.Cards, "Backflip")
	assert.Nil(t, resp.Report)
	require.Len(t, resp.Events, 2)
	assert.Equal(t, "Obtain", resp.Events[0].Type)
	assert.Equal(t, "Backflip", resp.Events[0].Card)
	assert.Equal(t, "forward", resp.Events[0].Stage)
	assert.Equal(t, "TurnApplied", resp.Events[1].Type)

	resp = roundTrip(t, ctx, conn, ClientMessage{Type: MsgForward})
	assert.Equal(t, 4, resp.Deck.Floor)
	assert.Contains(t, resp.Deck.Cards, "Neutralize+1")

	resp = roundTrip(t, ctx, conn, ClientMessage{Type: MsgForward})
	assert.Nil(t, resp.Diff, "already at the end")
	assert.Equal(t, 2, resp.Deck.Position)

	resp = roundTrip(t, ctx, conn, ClientMessage{Type: MsgBack})
	require.NotNil(t, resp.Diff)
	assert.Equal(t, 4, resp.Diff.Floor)
	assert.Contains(t, resp.Deck.Cards, "Neutralize")
	require.Len(t, resp.Events, 2)
	assert.Equal(t, "Downgrade", resp.Events[0].Type)
	assert.Equal(t, "reverse", resp.Events[0].Stage)

	resp = roundTrip(t, ctx, conn, ClientMessage{Type: MsgSeek, Floor: -1})
	assert.Equal(t, 0, resp.Deck.Position)
	assert.NotContains(t, resp.Deck.Cards, "Backflip")

	resp = roundTrip(t, ctx, conn, ClientMessage{Type: "jump"})
	assert.Equal(t, MsgError, resp.Type)
}

func TestReplaySocketBadRun(t *testing.T) {
	ctx, conn := dialReplay(t)

	resp := roundTrip(t, ctx, conn, ClientMessage{Type: MsgLoad, Run: json.RawMessage(`{"floor_reached": -3}`)})
	assert.Equal(t, MsgError, resp.Type)
	assert.Contains(t, resp.Error, "floor_reached")
}

func TestReplaySocketLargeRun(t *testing.T) {
	ctx, conn := dialReplay(t)

	masterDeck := make([]string, 0, 4000)
	for i := 0; i < 4000; i++ {
		masterDeck = append(masterDeck, "Strike_G")
	}
	run, err := json.Marshal(map[string]any{
		"character_chosen": "THE_SILENT",
		"floor_reached":    50,
		"master_deck":      masterDeck,
	})
	require.NoError(t, err)
	require.Greater(t, len(run), 32<<10)

	resp := roundTrip(t, ctx, conn, ClientMessage{Type: MsgLoad, Run: run})
	require.Equal(t, MsgState, resp.Type, resp.Error)
	require.NotNil(t, resp.Report)
	assert.Len(t, resp.Report.Cards, 4000)

	resp = roundTrip(t, ctx, conn, ClientMessage{Type: MsgSeek, Floor: 10})
	assert.Equal(t, MsgState, resp.Type, "connection survives a large load")
}
