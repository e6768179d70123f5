// Package server owns the TCP accept loop and per-connection line framing.
package server

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"linecached/internal/proto"
)

// MaxLineBytes caps a single request line. A line exceeding the cap gets
// an Invalid command reply and the connection is closed.
const MaxLineBytes = 64 << 10

// Server accepts connections and feeds complete lines to the dispatcher.
// Every newline-terminated line in the read buffer is processed in order;
// a trailing partial line stays buffered until more bytes arrive.
type Server struct {
	addr string
	disp *proto.Dispatcher
	log  *logrus.Logger

	// Connection and traffic counters, readable while serving.
	Active   atomic.Int64
	Accepted atomic.Uint64
	Commands atomic.Uint64
}

// New builds a server bound to addr (host:port) once ListenAndServe runs.
func New(addr string, disp *proto.Dispatcher, log *logrus.Logger) *Server {
	return &Server{addr: addr, disp: disp, log: log}
}

// ListenAndServe binds the listener and accepts until ctx is canceled.
// A bind failure is returned to the caller.
func (s *Server) ListenAndServe(ctx context.Context) error {
	var lc net.ListenConfig
	lis, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, lis)
}

// Serve accepts on lis until ctx is canceled. Accept errors after
// cancellation are swallowed as part of shutdown.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	s.log.WithField("addr", lis.Addr()).Info("listening")

	go func() {
		<-ctx.Done()
		lis.Close()
	}()

	for {
		conn, err := lis.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		s.Accepted.Inc()
		s.Active.Inc()
		go s.handle(conn)
	}
}

// handle serves one connection until the client disconnects, sends close,
// or overruns the line cap.
func (s *Server) handle(conn net.Conn) {
	defer func() {
		conn.Close()
		s.Active.Dec()
	}()

	remote := conn.RemoteAddr().String()
	s.log.WithField("remote", remote).Debug("connection open")

	sc := bufio.NewScanner(conn)
	sc.Buffer(make([]byte, 4096), MaxLineBytes)
	// An unterminated tail left when the peer stops sending is dropped,
	// not dispatched as a line.
	sc.Split(func(data []byte, atEOF bool) (int, []byte, error) {
		if atEOF && bytes.IndexByte(data, '\n') < 0 {
			return len(data), nil, nil
		}
		return bufio.ScanLines(data, atEOF)
	})

	for sc.Scan() {
		line := sc.Text()
		if n := len(line); n > 0 && line[n-1] == '\r' {
			line = line[:n-1]
		}
		s.Commands.Inc()

		reply, closing := s.disp.HandleLine(line)
		if _, err := conn.Write(append([]byte(reply), '\n')); err != nil {
			s.log.WithField("remote", remote).WithError(err).Debug("write failed")
			return
		}
		if closing {
			// Half-close: the reply is flushed, the client can still
			// drain, no further requests are read.
			if tc, ok := conn.(*net.TCPConn); ok {
				tc.CloseWrite()
			}
			s.log.WithField("remote", remote).Debug("connection closed by request")
			return
		}
	}

	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			conn.Write(append([]byte(proto.ReplyInvalidCommand), '\n'))
			s.log.WithField("remote", remote).Warn("line over cap, dropping connection")
			// Drain what the client already sent so the reply is not
			// lost to a reset when the socket closes with unread data.
			if tc, ok := conn.(*net.TCPConn); ok {
				tc.CloseWrite()
			}
			conn.SetReadDeadline(time.Now().Add(time.Second))
			io.Copy(io.Discard, conn)
			return
		}
		s.log.WithField("remote", remote).WithError(err).Debug("read failed")
		return
	}
	s.log.WithField("remote", remote).Debug("connection closed by peer")
}
