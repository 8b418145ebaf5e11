package antivirus

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"strings"
	"time"
)

// clamd rejects INSTREAM chunks above StreamMaxLength; stay well under the default.
const chunkSize = 64 * 1024

// ClamAVScanner streams documents to a clamd daemon.
type ClamAVScanner struct {
	address string // host:port, or an absolute unix socket path
	timeout time.Duration
}

var _ Scanner = (*ClamAVScanner)(nil)

func NewClamAVScanner(address string, timeout time.Duration) *ClamAVScanner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ClamAVScanner{address: address, timeout: timeout}
}

func (c *ClamAVScanner) Name() string { return "clamav" }

func (c *ClamAVScanner) network() string {
	if strings.HasPrefix(c.address, "/") {
		return "unix"
	}
	return "tcp"
}

// Scan uses the INSTREAM command. Any transport failure is returned as Err so the
// upload is refused rather than stored unscanned.
func (c *ClamAVScanner) Scan(ctx context.Context, filename string, data []byte) Verdict {
	verdict := Verdict{Scanner: c.Name()}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, c.network(), c.address)
	if err != nil {
		verdict.Err = fmt.Errorf("connect to clamd: %w", err)
		return verdict
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if err := writeStream(conn, data); err != nil {
		verdict.Err = fmt.Errorf("stream %s to clamd: %w", filename, err)
		return verdict
	}

	reply, err := bufio.NewReader(conn).ReadString(0)
	if err != nil && reply == "" {
		verdict.Err = fmt.Errorf("read clamd reply: %w", err)
		return verdict
	}

	verdict.Infected, verdict.Threat, verdict.Err = parseReply(reply)
	return verdict
}

func writeStream(conn net.Conn, data []byte) error {
	if _, err := conn.Write([]byte("zINSTREAM\x00")); err != nil {
		return err
	}

	size := make([]byte, 4)
	for start := 0; start < len(data); start += chunkSize {
		end := start + chunkSize
		if end > len(data) {
			end = len(data)
		}
		binary.BigEndian.PutUint32(size, uint32(end-start))
		if _, err := conn.Write(size); err != nil {
			return err
		}
		if _, err := conn.Write(data[start:end]); err != nil {
			return err
		}
	}

	// zero-length chunk terminates the stream
	_, err := conn.Write([]byte{0, 0, 0, 0})
	return err
}

// parseReply understands "stream: OK", "stream: <name> FOUND" and "<msg> ERROR".
func parseReply(reply string) (infected bool, threat string, err error) {
	reply = strings.TrimSpace(strings.TrimRight(reply, "\x00"))

	switch {
	case strings.HasSuffix(reply, "FOUND"):
		body := reply
		if i := strings.Index(reply, ":"); i >= 0 {
			body = reply[i+1:]
		}
		return true, strings.TrimSpace(strings.TrimSuffix(body, "FOUND")), nil
	case strings.HasSuffix(reply, "ERROR"):
		return false, "", fmt.Errorf("clamd: %s", reply)
	case strings.HasSuffix(reply, "OK"):
		return false, "", nil
	default:
		return false, "", fmt.Errorf("clamd: unexpected reply %q", reply)
	}
}
