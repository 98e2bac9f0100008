package httpserver

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/robalobadob/wordle/apps/round-server/internal/game"
)

type wsFrame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func dialRound(t *testing.T, e *testEnv, c *http.Client, id string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(e.ts.URL, "http") + "/rounds/" + id + "/ws"
	base, _ := url.Parse(e.ts.URL)
	header := http.Header{}
	for _, ck := range c.Jar.Cookies(base) {
		header.Add("Cookie", ck.String())
	}
	conn, res, err := websocket.DefaultDialer.Dial(u, header)
	if err != nil {
		status := 0
		if res != nil {
			status = res.StatusCode
		}
		t.Fatalf("dial: %v (status %d)", err, status)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) wsFrame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var f wsFrame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read: %v", err)
	}
	return f
}

func sendFrame(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	if err := conn.WriteJSON(v); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestWebSocketKeyboard(t *testing.T) {
	e := newTestEnv(t)
	c := e.client(t)
	v := e.newRound(t, c)
	conn := dialRound(t, e, c, v.ID)

	if f := readFrame(t, conn); f.Type != msgState {
		t.Fatalf("first frame = %+v", f)
	}

	sendFrame(t, conn, map[string]string{"type": "ping"})
	if f := readFrame(t, conn); f.Type != msgPong {
		t.Fatalf("ping reply = %+v", f)
	}

	sendFrame(t, conn, map[string]string{"type": "key", "key": "F1"})
	f := readFrame(t, conn)
	var er errorRes
	_ = json.Unmarshal(f.Payload, &er)
	if f.Type != msgError || er.Error != "invalid_submission" {
		t.Fatalf("bad key reply = %+v %+v", f, er)
	}

	for _, k := range []string{"c", "r", "a", "n", "e"} {
		sendFrame(t, conn, map[string]string{"type": "key", "key": k})
		if f := readFrame(t, conn); f.Type != msgState {
			t.Fatalf("key %s reply = %+v", k, f)
		}
	}
	sendFrame(t, conn, map[string]string{"type": "key", "key": "ENTER"})

	var state roundView
	f = readFrame(t, conn)
	if err := json.Unmarshal(f.Payload, &state); err != nil || f.Type != msgState {
		t.Fatalf("enter state = %+v %v", f, err)
	}
	if state.Outcome != game.OutcomeWon {
		t.Fatalf("outcome = %s", state.Outcome)
	}

	var res game.Result
	f = readFrame(t, conn)
	if err := json.Unmarshal(f.Payload, &res); err != nil || f.Type != msgResult {
		t.Fatalf("result frame = %+v %v", f, err)
	}
	if res.SecretWord != testSecret || res.Title != "Congratulations!" {
		t.Fatalf("result = %+v", res)
	}

	sendFrame(t, conn, map[string]string{"type": "new_round"})
	f = readFrame(t, conn)
	state = roundView{}
	_ = json.Unmarshal(f.Payload, &state)
	if f.Type != msgState || state.Outcome != game.OutcomeInProgress || state.ActiveRow != 0 {
		t.Fatalf("new round frame = %+v", state)
	}

	// The REST view sees the same round.
	var snap roundView
	e.call(t, c, http.MethodGet, "/rounds/"+v.ID, nil, &snap)
	if snap.Outcome != game.OutcomeInProgress || snap.Rows[0] != (game.Row{}) {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestWebSocketRejectsForeignRound(t *testing.T) {
	e := newTestEnv(t)
	v := e.newRound(t, e.client(t))

	u := "ws" + strings.TrimPrefix(e.ts.URL, "http") + "/rounds/" + v.ID + "/ws"
	_, res, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatal("dial succeeded without owner")
	}
	if res == nil || res.StatusCode != http.StatusNotFound {
		t.Fatalf("response = %+v", res)
	}
}
