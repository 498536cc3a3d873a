package link

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/cwbudde/algo-guitar/guitar"
)

// Handler receives the decoded MCU events. Methods are called from the Run
// goroutine and must not block; guitar.Guitar satisfies it.
type Handler interface {
	OnCapture(flags guitar.CaptureFlags)
	SetMode(on bool)
	Readings() *guitar.Readings
}

// Link is a framed connection to the MCU.
type Link struct {
	rw     io.ReadWriter
	closer io.Closer
	logger *slog.Logger

	wmu sync.Mutex
	dec Decoder
}

// New wraps an open byte stream.
func New(rw io.ReadWriter, logger *slog.Logger) *Link {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	l := &Link{rw: rw, logger: logger}
	if c, ok := rw.(io.Closer); ok {
		l.closer = c
	}
	return l
}

// Open opens the named serial device at the given baud rate.
func Open(name string, baud int, logger *slog.Logger) (*Link, error) {
	p, err := serial.Open(name, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", name, err)
	}
	// A short read timeout lets Run notice cancellation.
	if err := p.SetReadTimeout(50 * time.Millisecond); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("serial read timeout: %w", err)
	}
	l := New(p, logger)
	l.logger.Info("link: port opened", "device", name, "baud", baud)
	return l, nil
}

// Close closes the underlying port when it is closable.
func (l *Link) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// Send writes one frame.
func (l *Link) Send(cmd Command, payload []byte) error {
	data, err := Encode(cmd, payload)
	if err != nil {
		return err
	}
	l.wmu.Lock()
	defer l.wmu.Unlock()
	if _, err := l.rw.Write(data); err != nil {
		return fmt.Errorf("link write: %w", err)
	}
	return nil
}

// Select asks the MCU to drive the multiplexer to channel. It implements
// guitar.Selector; write errors are logged since the scanner tick cannot
// return them.
func (l *Link) Select(channel int) {
	if err := l.Send(CmdSelect, []byte{byte(channel)}); err != nil {
		l.logger.Warn("link: select failed", "channel", channel, "err", err)
	}
}

// Run reads frames and dispatches them to h until ctx is done or the stream
// ends. Framing errors are logged and skipped.
func (l *Link) Run(ctx context.Context, h Handler) error {
	buf := make([]byte, 256)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := l.rw.Read(buf)
		if n > 0 {
			l.dec.Feed(buf[:n], func(f Frame, ferr error) {
				if ferr != nil {
					l.logger.Warn("link: framing error", "err", ferr)
					return
				}
				l.dispatch(f, h)
			})
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("link read: %w", err)
		}
	}
}

func (l *Link) dispatch(f Frame, h Handler) {
	switch f.Cmd {
	case CmdCapture:
		if len(f.Payload) != 1 {
			l.logger.Warn("link: bad capture payload", "len", len(f.Payload))
			return
		}
		h.OnCapture(guitar.CaptureFlags(f.Payload[0]))
	case CmdReadings:
		values, err := f.Readings()
		if err != nil {
			l.logger.Warn("link: bad readings payload", "err", err)
			return
		}
		h.Readings().SetAll(values[:])
	case CmdMode:
		if len(f.Payload) != 1 {
			l.logger.Warn("link: bad mode payload", "len", len(f.Payload))
			return
		}
		h.SetMode(f.Payload[0] != 0)
	default:
		l.logger.Debug("link: unhandled frame", "cmd", f.Cmd.String())
	}
}
