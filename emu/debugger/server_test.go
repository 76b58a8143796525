package debugger

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-faster/jx"
	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"
)

type message struct {
	id    int64
	event string
	data  jx.Raw
}

func readMessage(t *testing.T, ws *websocket.Conn) message {
	t.Helper()

	ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, buf, err := ws.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}

	msg := message{id: -1}
	err = jx.DecodeBytes(buf).Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			msg.id, err = d.Int64()
		case "event":
			msg.event, err = d.Str()
		case "data":
			msg.data, err = d.Raw()
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		t.Fatalf("malformed message %s: %v", buf, err)
	}
	return msg
}

func sendRequest(t *testing.T, ws *websocket.Conn, req request) {
	t.Helper()

	var e jx.Encoder
	req.Encode(&e)
	if err := ws.WriteMessage(websocket.TextMessage, e.Bytes()); err != nil {
		t.Fatal(err)
	}
}

func decodeState(t *testing.T, msg message) State {
	t.Helper()

	var st State
	if err := st.Decode(jx.DecodeBytes(msg.data)); err != nil {
		t.Fatalf("malformed state %s: %v", msg.data, err)
	}
	return st
}

func TestWebsocketSession(t *testing.T) {
	cpu, dbg := newTestDebugger(t, []byte{
		0x60, 0x0A, // 200: LD V0, #0A
		0x12, 0x02, // 202: JP #202
	})

	srv := httptest.NewServer(Handler(dbg))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer ws.Close()

	// Initial state.
	msg := readMessage(t, ws)
	if msg.event != "halted" || msg.id != -1 {
		t.Fatalf("first message: got event %q id %d", msg.event, msg.id)
	}
	if st := decodeState(t, msg); st.Status != "running" || st.Halted {
		t.Fatalf("initial state: %+v", st)
	}

	sendRequest(t, ws, request{ID: 1, Event: "set-breakpoint", Addr: 0x202})
	msg = readMessage(t, ws)
	if msg.id != 1 || msg.event != "set-breakpoint" || string(msg.data) != "[514]" {
		t.Fatalf("set-breakpoint response: %+v (%s)", msg, msg.data)
	}

	done := runCPU(cpu, 20)

	msg = readMessage(t, ws)
	if msg.event != "halted" {
		t.Fatalf("got event %q, want halted", msg.event)
	}
	want := State{
		Status:    "paused",
		Halted:    true,
		Reason:    "breakpoint at $202",
		PC:        0x202,
		V:         [16]uint8{0: 0x0A},
		Cycles:    2,
		CallStack: []frameInfo{{"[bottom of stack]", "$202"}},
	}
	if diff := cmp.Diff(want, decodeState(t, msg)); diff != "" {
		t.Fatalf("halted state (-want +got):\n%s", diff)
	}

	sendRequest(t, ws, request{ID: 2, Event: "disasm", Addr: 0x200, Count: 2})
	msg = readMessage(t, ws)
	const wantDisasm = `[{"addr":512,"word":24586,"text":"LD V0, #0A"},{"addr":514,"word":4610,"text":"JP #202"}]`
	if msg.id != 2 || string(msg.data) != wantDisasm {
		t.Fatalf("disasm response: id %d, data %s", msg.id, msg.data)
	}

	sendRequest(t, ws, request{ID: 3, Event: "read-mem", Addr: 0x200, Count: 0})
	if msg = readMessage(t, ws); msg.id != 3 || msg.event != "error" {
		t.Fatalf("read-mem with count 0: got event %q id %d", msg.event, msg.id)
	}

	sendRequest(t, ws, request{ID: 4, Event: "frobnicate"})
	if msg = readMessage(t, ws); msg.id != 4 || msg.event != "error" {
		t.Fatalf("unknown event: got event %q id %d", msg.event, msg.id)
	}

	sendRequest(t, ws, request{ID: 5, Event: "detach"})
	msg = readMessage(t, ws)
	if msg.id != 5 || msg.event != "detach" {
		t.Fatalf("detach response: got event %q id %d", msg.event, msg.id)
	}
	waitDone(t, done)

	if cpu.Cycles != 20 {
		t.Errorf("cycles = %d, want 20", cpu.Cycles)
	}
}

func TestServeAndClose(t *testing.T) {
	cpu, dbg := newTestDebugger(t, []byte{0x12, 0x00})
	dbg.Pause()

	srv, err := Serve(dbg, "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ws, _, err := websocket.DefaultDialer.Dial("ws://"+srv.Addr()+"/ws", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer ws.Close()
	if msg := readMessage(t, ws); msg.event != "halted" {
		t.Fatalf("got event %q, want halted", msg.event)
	}

	done := runCPU(cpu, 10)
	if msg := readMessage(t, ws); msg.event != "halted" {
		t.Fatalf("got event %q, want halted", msg.event)
	}

	// Closing the server resumes the CPU.
	ws.Close()
	if err := srv.Close(); err != nil {
		t.Fatal(err)
	}
	waitDone(t, done)
}
