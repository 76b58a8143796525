package debugger

import (
	"context"
	"fmt"

	"github.com/go-faster/jx"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"chip8/emu/log"
	"chip8/hw/hwio"
)

const maxDisasmCount = 256

type wsdriver struct {
	dbg *Debugger
	ws  *websocket.Conn

	handlers map[string]wsHandlerFunc
	out      chan []byte
}

// wsHandlerFunc handles a request and encodes the data of its response.
type wsHandlerFunc func(req *request, e *jx.Encoder) error

func newWsDriver(dbg *Debugger, ws *websocket.Conn) *wsdriver {
	drv := &wsdriver{
		dbg:      dbg,
		ws:       ws,
		handlers: make(map[string]wsHandlerFunc),
		out:      make(chan []byte, 16),
	}

	stateHandler := func(action func()) wsHandlerFunc {
		return func(_ *request, e *jx.Encoder) error {
			if action != nil {
				action()
			}
			st := dbg.State()
			st.Encode(e)
			return nil
		}
	}
	drv.handlers["state"] = stateHandler(nil)
	drv.handlers["run"] = stateHandler(dbg.Run)
	drv.handlers["pause"] = stateHandler(dbg.Pause)
	drv.handlers["step"] = stateHandler(dbg.Step)
	drv.handlers["detach"] = stateHandler(dbg.Detach)

	pointsHandler := func(action func(uint16), list func() []uint16) wsHandlerFunc {
		return func(req *request, e *jx.Encoder) error {
			if action != nil {
				action(req.Addr)
			}
			encodeAddrs(e, list())
			return nil
		}
	}
	drv.handlers["set-breakpoint"] = pointsHandler(dbg.SetBreakpoint, dbg.Breakpoints)
	drv.handlers["clear-breakpoint"] = pointsHandler(dbg.ClearBreakpoint, dbg.Breakpoints)
	drv.handlers["breakpoints"] = pointsHandler(nil, dbg.Breakpoints)
	drv.handlers["set-watchpoint"] = pointsHandler(dbg.SetWatchpoint, dbg.Watchpoints)
	drv.handlers["clear-watchpoint"] = pointsHandler(dbg.ClearWatchpoint, dbg.Watchpoints)
	drv.handlers["watchpoints"] = pointsHandler(nil, dbg.Watchpoints)

	drv.handlers["read-mem"] = drv.handleReadMem
	drv.handlers["disasm"] = drv.handleDisasm
	return drv
}

func (d *wsdriver) drive(ctx context.Context) error {
	log.ModDbg.DebugZ("debugger connection initiated").End()

	halts, unsubscribe := d.dbg.subscribe()
	defer unsubscribe()

	st := d.dbg.State()
	d.out <- encodeMessage(-1, "halted", st.Encode)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer d.ws.Close()
		return d.writeLoop(ctx, halts)
	})
	g.Go(func() error {
		defer cancel()
		return d.readLoop(ctx)
	})
	return g.Wait()
}

func (d *wsdriver) writeLoop(ctx context.Context, halts <-chan State) error {
	for {
		var msg []byte
		select {
		case <-ctx.Done():
			return nil
		case msg = <-d.out:
		case st := <-halts:
			msg = encodeMessage(-1, "halted", st.Encode)
		}
		if err := d.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
			return fmt.Errorf("write: %w", err)
		}
	}
}

func (d *wsdriver) readLoop(ctx context.Context) error {
	for {
		// Wait for next request from the client.
		_, buf, err := d.ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}

		resp := d.handle(buf)
		select {
		case d.out <- resp:
		case <-ctx.Done():
			return nil
		}
	}
}

func (d *wsdriver) handle(buf []byte) []byte {
	req := request{ID: -1}
	if err := req.Decode(jx.DecodeBytes(buf)); err != nil {
		log.ModDbg.WarnZ("malformed debugger request").Blob("req", buf).Error("err", err).End()
		return encodeError(req.ID, fmt.Errorf("malformed request: %w", err))
	}

	log.ModDbg.DebugZ("received debugger request").
		Int("id", req.ID).
		String("event", req.Event).
		End()

	handler, ok := d.handlers[req.Event]
	if !ok {
		log.ModDbg.WarnZ("received unknown debugger event").String("event", req.Event).End()
		return encodeError(req.ID, fmt.Errorf("unknown event %q", req.Event))
	}

	// Handlers check their arguments before encoding anything.
	var herr error
	msg := encodeMessage(req.ID, req.Event, func(e *jx.Encoder) {
		herr = handler(&req, e)
	})
	if herr != nil {
		log.ModDbg.DebugZ("error handling debugger event").
			String("event", req.Event).
			Error("err", herr).
			End()
		return encodeError(req.ID, herr)
	}
	return msg
}

func (d *wsdriver) handleReadMem(req *request, e *jx.Encoder) error {
	if req.Count <= 0 || req.Count > hwio.MemSize {
		return fmt.Errorf("invalid count %d", req.Count)
	}
	buf, err := d.dbg.ReadMem(req.Addr, req.Count)
	if err != nil {
		return err
	}
	e.ObjStart()
	e.FieldStart("addr")
	e.UInt16(req.Addr & hwio.AddrMask)
	e.FieldStart("bytes")
	e.Base64(buf)
	e.ObjEnd()
	return nil
}

func (d *wsdriver) handleDisasm(req *request, e *jx.Encoder) error {
	if req.Count <= 0 || req.Count > maxDisasmCount {
		return fmt.Errorf("invalid count %d", req.Count)
	}
	lines, err := d.dbg.Disasm(req.Addr, req.Count)
	if err != nil {
		return err
	}
	e.ArrStart()
	for i := range lines {
		lines[i].Encode(e)
	}
	e.ArrEnd()
	return nil
}
