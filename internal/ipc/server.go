package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
)

// Handler processes one listener control command.
type Handler interface {
	Handle(context.Context, Request) Response
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(context.Context, Request) Response

func (f HandlerFunc) Handle(ctx context.Context, req Request) Response {
	return f(ctx, req)
}

// Serve accepts control connections until the context is cancelled or
// the listener closes. Each connection carries exactly one
// newline-delimited JSON request and receives one JSON response; a
// malformed request gets an error response rather than a dropped
// connection. Cancellation is a clean shutdown: in-flight handlers are
// drained and Serve returns nil.
func Serve(ctx context.Context, listener net.Listener, handler Handler) error {
	var inflight sync.WaitGroup

	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				inflight.Wait()
				return nil
			}
			return fmt.Errorf("accept control connection: %w", err)
		}

		inflight.Add(1)
		go func(c net.Conn) {
			defer inflight.Done()
			defer c.Close()
			serveConn(ctx, c, handler)
		}(conn)
	}
}

// serveConn handles the single request/response exchange on one connection.
func serveConn(ctx context.Context, c net.Conn, handler Handler) {
	line, err := bufio.NewReader(c).ReadBytes('\n')
	if err != nil {
		_ = json.NewEncoder(c).Encode(Response{OK: false, Error: fmt.Sprintf("read request: %v", err)})
		return
	}

	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		_ = json.NewEncoder(c).Encode(Response{OK: false, Error: fmt.Sprintf("decode request: %v", err)})
		return
	}

	_ = json.NewEncoder(c).Encode(handler.Handle(ctx, req))
}
