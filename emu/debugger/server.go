package debugger

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/gorilla/websocket"

	"chip8/emu/log"
)

// Server serves the debugger websocket on /ws.
type Server struct {
	dbg *Debugger
	srv *http.Server
	ln  net.Listener
}

// Serve starts serving dbg on hostport, in the background.
func Serve(dbg *Debugger, hostport string) (*Server, error) {
	ln, err := net.Listen("tcp", hostport)
	if err != nil {
		return nil, err
	}

	s := &Server{
		dbg: dbg,
		srv: &http.Server{Handler: Handler(dbg)},
		ln:  ln,
	}

	go func() {
		log.ModDbg.InfoZ("Debugger server listening").String("addr", ln.Addr().String()).End()
		if err := s.srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			log.ModDbg.ErrorZ("Debugger server stopped").Error("err", err).End()
		}
	}()
	return s, nil
}

// Addr returns the address the server listens on.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Close stops the server and lets the CPU run freely.
func (s *Server) Close() error {
	s.dbg.Detach()
	return s.srv.Shutdown(context.Background())
}

// Handler returns the HTTP handler serving the debugger websocket.
func Handler(dbg *Debugger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", handleWebsocket(dbg))
	return mux
}

func handleWebsocket(dbg *Debugger) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.ModDbg.ErrorZ("failed to perform websocket handshake").Error("err", err).End()
			return
		}
		defer ws.Close()

		log.ModDbg.DebugZ("websocket handshake success").String("remote", r.RemoteAddr).End()

		if err := newWsDriver(dbg, ws).drive(r.Context()); err != nil {
			log.ModDbg.ErrorZ("connection to debugger ended").Error("err", err).End()
		}
	}
}
