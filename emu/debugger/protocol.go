package debugger

import (
	"fmt"

	"github.com/go-faster/jx"
)

// Emulator and debugger client communicate via a websocket connection,
// following this simple protocol.
//
// The first ever exchanged message is sent by the emulator, an "halted" event
// carrying its current state. After which, the emulator waits for the client
// requests, to which it always responds. A response has the id and event of
// the request it responds to, or the "error" event. At any moment, the
// emulator may send an "halted" event when the CPU halts.
//
//	-> {"id": 3, "event": "disasm", "data": {"addr": 512, "count": 2}}
//	<- {"id": 3, "event": "disasm", "data": [{"addr": 512, "word": 24586, "text": "LD V0, #0A"}, ...]}
//	<- {"event": "halted", "data": {"status": "paused", "halted": true, ...}}

// request is a client->emulator request.
type request struct {
	ID    int64
	Event string

	// Arguments, depending on the event.
	Addr  uint16
	Count int
}

func (r *request) Decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			r.ID, err = d.Int64()
		case "event":
			r.Event, err = d.Str()
		case "data":
			err = d.Obj(func(d *jx.Decoder, key string) error {
				var err error
				switch key {
				case "addr":
					r.Addr, err = d.UInt16()
				case "count":
					r.Count, err = d.Int()
				default:
					err = d.Skip()
				}
				return err
			})
		default:
			err = d.Skip()
		}
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		return nil
	})
}

func (r *request) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(r.ID)
	e.FieldStart("event")
	e.Str(r.Event)
	e.FieldStart("data")
	e.ObjStart()
	e.FieldStart("addr")
	e.UInt16(r.Addr)
	e.FieldStart("count")
	e.Int(r.Count)
	e.ObjEnd()
	e.ObjEnd()
}

// encodeMessage encodes an emulator->client message. id is omitted when
// negative.
func encodeMessage(id int64, event string, data func(*jx.Encoder)) []byte {
	var e jx.Encoder
	e.ObjStart()
	if id >= 0 {
		e.FieldStart("id")
		e.Int64(id)
	}
	e.FieldStart("event")
	e.Str(event)
	e.FieldStart("data")
	data(&e)
	e.ObjEnd()
	return e.Bytes()
}

func encodeError(id int64, err error) []byte {
	return encodeMessage(id, "error", func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("msg")
		e.Str(err.Error())
		e.ObjEnd()
	})
}

func encodeAddrs(e *jx.Encoder, addrs []uint16) {
	e.ArrStart()
	for _, a := range addrs {
		e.UInt16(a)
	}
	e.ArrEnd()
}

func (st *State) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("status")
	e.Str(st.Status)
	e.FieldStart("halted")
	e.Bool(st.Halted)
	e.FieldStart("reason")
	e.Str(st.Reason)

	if st.Halted {
		e.FieldStart("pc")
		e.UInt16(st.PC)
		e.FieldStart("i")
		e.UInt16(st.I)
		e.FieldStart("v")
		e.ArrStart()
		for _, v := range st.V {
			e.UInt8(v)
		}
		e.ArrEnd()
		e.FieldStart("sp")
		e.UInt8(st.SP)
		e.FieldStart("dt")
		e.UInt8(st.DT)
		e.FieldStart("st")
		e.UInt8(st.ST)
		e.FieldStart("cycles")
		e.Int64(st.Cycles)
		e.FieldStart("callstack")
		e.ArrStart()
		for _, f := range st.CallStack {
			e.ArrStart()
			e.Str(f[0])
			e.Str(f[1])
			e.ArrEnd()
		}
		e.ArrEnd()
	}
	e.ObjEnd()
}

func (st *State) Decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "status":
			st.Status, err = d.Str()
		case "halted":
			st.Halted, err = d.Bool()
		case "reason":
			st.Reason, err = d.Str()
		case "pc":
			st.PC, err = d.UInt16()
		case "i":
			st.I, err = d.UInt16()
		case "v":
			i := 0
			err = d.Arr(func(d *jx.Decoder) error {
				if i >= len(st.V) {
					return fmt.Errorf("too many registers")
				}
				v, err := d.UInt8()
				st.V[i] = v
				i++
				return err
			})
		case "sp":
			st.SP, err = d.UInt8()
		case "dt":
			st.DT, err = d.UInt8()
		case "st":
			st.ST, err = d.UInt8()
		case "cycles":
			st.Cycles, err = d.Int64()
		case "callstack":
			st.CallStack = st.CallStack[:0]
			err = d.Arr(func(d *jx.Decoder) error {
				var fi frameInfo
				i := 0
				err := d.Arr(func(d *jx.Decoder) error {
					if i >= len(fi) {
						return fmt.Errorf("malformed frame")
					}
					s, err := d.Str()
					fi[i] = s
					i++
					return err
				})
				st.CallStack = append(st.CallStack, fi)
				return err
			})
		default:
			err = d.Skip()
		}
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		return nil
	})
}

func (l *Line) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("addr")
	e.UInt16(l.Addr)
	e.FieldStart("word")
	e.UInt16(l.Word)
	e.FieldStart("text")
	e.Str(l.Text)
	e.ObjEnd()
}
