package scanner

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
)

const chunkSize = 32 * 1024

// Clamd streams content to a clamd daemon with the INSTREAM command.
type Clamd struct {
	addr    string
	timeout time.Duration
	dialer  net.Dialer
}

func NewClamd(addr string, timeout time.Duration) *Clamd {
	return &Clamd{addr: addr, timeout: timeout, dialer: net.Dialer{Timeout: timeout}}
}

func (c *Clamd) Scan(ctx context.Context, r io.Reader) (Result, error) {
	unavailable := Result{Verdict: Unavailable}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	conn, err := c.dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return unavailable, fmt.Errorf("dial clamd: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return unavailable, err
		}
	}
	// unblock reads and writes if ctx is cancelled without a deadline
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	if err := stream(conn, r); err != nil {
		return unavailable, fmt.Errorf("stream to clamd: %w", err)
	}

	reply, err := bufio.NewReader(conn).ReadString(0)
	if err != nil && !(errors.Is(err, io.EOF) && reply != "") {
		return unavailable, fmt.Errorf("read clamd reply: %w", err)
	}
	return parseReply(reply)
}

func stream(w io.Writer, r io.Reader) error {
	if _, err := io.WriteString(w, "zINSTREAM\x00"); err != nil {
		return err
	}
	buf := make([]byte, 4+chunkSize)
	for {
		n, err := io.ReadFull(r, buf[4:])
		if n > 0 {
			binary.BigEndian.PutUint32(buf[:4], uint32(n))
			if _, werr := w.Write(buf[:4+n]); werr != nil {
				return werr
			}
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}
		if err != nil {
			return err
		}
	}
	_, err := w.Write([]byte{0, 0, 0, 0})
	return err
}

// parseReply understands "stream: OK", "stream: <name> FOUND" and
// "<message> ERROR".
func parseReply(reply string) (Result, error) {
	reply = strings.TrimSpace(strings.TrimRight(reply, "\x00"))
	switch {
	case strings.HasSuffix(reply, " OK"):
		return Result{Verdict: Safe}, nil
	case strings.HasSuffix(reply, " FOUND"):
		sig := strings.TrimSuffix(reply, " FOUND")
		if i := strings.Index(sig, ": "); i >= 0 {
			sig = sig[i+2:]
		}
		return Result{Verdict: Unsafe, Signature: sig}, nil
	}
	return Result{Verdict: Unavailable}, fmt.Errorf("clamd: unexpected reply %q", reply)
}
