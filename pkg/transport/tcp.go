package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"go.brendoncarroll.net/stdctx/logctx"
)

// DialTCP connects to a TCP echo peer.
func DialTCP(ctx context.Context, endpoint string, slice time.Duration) (*Polled, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", endpoint)
	if err != nil {
		return nil, err
	}
	return NewPolled(conn, slice), nil
}

// ServeEcho accepts connections from l and writes back everything read from
// each one, until l fails or ctx is cancelled.
// Cancelling ctx closes the listener and every open connection.
func ServeEcho(ctx context.Context, l net.Listener) error {
	wg := sync.WaitGroup{}
	defer wg.Wait()
	// closed before wg.Wait so handlers stop when ServeEcho returns for any reason
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		l.Close()
	}()
	for {
		conn, err := l.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		logctx.Infof(ctx, "accepted connection from %v", conn.RemoteAddr())
		connDone := make(chan struct{})
		wg.Add(2)
		go func() {
			defer wg.Done()
			select {
			case <-ctx.Done():
			case <-done:
			case <-connDone:
			}
			conn.Close()
		}()
		go func() {
			defer wg.Done()
			defer close(connDone)
			n, err := Echo(conn)
			if err != nil {
				logctx.Errorln(ctx, err)
			}
			logctx.Infof(ctx, "closed connection from %v after echoing %d bytes", conn.RemoteAddr(), n)
		}()
	}
}

// Echo copies everything read from rwc back to it and closes it.
func Echo(rwc io.ReadWriteCloser) (int64, error) {
	defer rwc.Close()
	// hide ReadFrom/WriteTo so the copy is a plain read then write loop
	dst := struct{ io.Writer }{rwc}
	src := struct{ io.Reader }{rwc}
	n, err := io.Copy(dst, src)
	if errors.Is(err, net.ErrClosed) {
		err = nil
	}
	return n, err
}
