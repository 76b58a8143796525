package rpc

import (
	"errors"
	"net"
	"net/http"
	"net/rpc"
	"strconv"
)

type emuProxy struct {
	emu Emu
}

func (ep *emuProxy) Reset(_, _ *struct{}) error             { ep.emu.Reset(); return nil }
func (ep *emuProxy) SetPause(pause bool, _ *struct{}) error { ep.emu.SetPause(pause); return nil }
func (ep *emuProxy) Stop(_, _ *struct{}) error              { ep.emu.Stop(); return nil }

func (ep *emuProxy) IsReady(_ *struct{}, reply *bool) error {
	*reply = true
	return nil
}

// Server exposes an Emu over HTTP-RPC.
type Server struct {
	ln  net.Listener
	srv *http.Server
}

// NewServer starts serving emu on localhost, port 0 picks a free port.
func NewServer(port int, emu Emu) (*Server, error) {
	rs := rpc.NewServer()
	if err := rs.RegisterName("emu", &emuProxy{emu: emu}); err != nil {
		return nil, err
	}

	ln, err := net.Listen("tcp", "localhost:"+strconv.Itoa(port))
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle(rpc.DefaultRPCPath, rs)
	s := &Server{ln: ln, srv: &http.Server{Handler: mux}}

	modRPC.InfoZ("rpc server listening").String("addr", ln.Addr().String()).End()
	go func() {
		if err := s.srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			modRPC.ErrorZ("rpc server stopped").Error("err", err).End()
		}
	}()
	return s, nil
}

// Port returns the port the server listens on.
func (s *Server) Port() int {
	return s.ln.Addr().(*net.TCPAddr).Port
}

func (s *Server) Close() error {
	return s.srv.Close()
}
