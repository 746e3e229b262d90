package serialport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	serial "go.bug.st/serial.v1"

	"github.com/AlbertDoesNothing/Myriad/internal/logger"
)

// ErrNoPortFound is returned when autodetection finds no usable serial port.
var ErrNoPortFound = errors.New("didn't find any available serial port")

const (
	// readBufferSize is the per-read scratch buffer. Commands are single
	// bytes, but a chatty host may batch writes.
	readBufferSize = 32

	// readPause is the idle delay between reads on the port.
	readPause = 50 * time.Millisecond

	// errorBackoff is the delay after a failed read before retrying.
	errorBackoff = 250 * time.Millisecond

	// pendingCommands bounds the bytes held between loop iterations. The
	// protocol carries no buffering guarantee beyond what the port holds,
	// so overflow is dropped.
	pendingCommands = 16
)

// port is the subset of serial.Port the receiver uses.
type port interface {
	Read(p []byte) (n int, err error)
	Close() error
}

// Receiver wraps a serial port with a background reader so the control loop
// can poll for command bytes without ever blocking.
type Receiver struct {
	port port
	path string

	bytes   chan byte
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// Mode returns the line settings for the command link: 8 data bits, no
// parity, one stop bit at the given speed.
func Mode(baud int) *serial.Mode {
	return &serial.Mode{
		BaudRate: baud,
		Parity:   serial.NoParity,
		DataBits: 8,
		StopBits: serial.OneStopBit,
	}
}

// Open opens the named port, or the first available port when path is empty,
// and returns a started receiver.
func Open(ctx context.Context, path string, baud int) (*Receiver, error) {
	p, name, err := openPort(ctx, path, baud)
	if err != nil {
		return nil, err
	}

	r := NewReceiver(p, name)
	r.Start(ctx)

	return r, nil
}

// NewReceiver wraps an already-open port. Call Start before polling.
func NewReceiver(p port, path string) *Receiver {
	return &Receiver{
		port:    p,
		path:    path,
		bytes:   make(chan byte, pendingCommands),
		closeCh: make(chan struct{}),
	}
}

// Start begins the background read routine.
func (r *Receiver) Start(ctx context.Context) {
	r.wg.Add(1)

	go func() {
		defer r.wg.Done()
		r.readRoutine(ctx)
	}()
}

// Poll returns one pending byte without blocking. The second result is false
// when nothing is pending.
func (r *Receiver) Poll() (byte, bool) {
	select {
	case b := <-r.bytes:
		return b, true
	default:
		return 0, false
	}
}

// Path returns the device name of the underlying port.
func (r *Receiver) Path() string {
	return r.path
}

// Close stops the read routine and closes the port. The port is closed first
// so a read blocked on an idle line is unblocked, then the routine is joined.
func (r *Receiver) Close() error {
	close(r.closeCh)
	err := r.port.Close()
	r.wg.Wait()

	return err
}

// readRoutine pulls bytes off the port and queues them for the control loop.
// Queue overflow is dropped: the protocol makes no buffering promise and a
// stale activation byte is worse than a lost one.
func (r *Receiver) readRoutine(ctx context.Context) {
	buf := make([]byte, readBufferSize)

	for {
		select {
		case <-r.closeCh:
			return
		case <-time.After(readPause):
		}

		n, err := r.port.Read(buf)
		if err != nil {
			logger.WarnKV(ctx, "Serial read failed", "port", r.path, "error", err)

			select {
			case <-r.closeCh:
				return
			case <-time.After(errorBackoff):
			}

			continue
		}

		for _, b := range buf[:n] {
			select {
			case r.bytes <- b:
			default:
				logger.DebugKV(ctx, "Command queue full, dropping byte", "byte", b)
			}
		}
	}
}

// Send opens the port, writes a single command byte and closes the port.
// Used by the host-side trigger binaries.
func Send(ctx context.Context, path string, baud int, b byte) error {
	p, name, err := openPort(ctx, path, baud)
	if err != nil {
		return err
	}

	defer func() {
		_ = p.Close()
	}()

	if _, err := p.Write([]byte{b}); err != nil {
		return fmt.Errorf("write to %s: %w", name, err)
	}

	return nil
}

// openPort opens the named port, or walks the available ports and takes the
// first one that opens when path is empty.
func openPort(ctx context.Context, path string, baud int) (serial.Port, string, error) {
	mode := Mode(baud)

	if path != "" {
		p, err := serial.Open(path, mode)
		if err != nil {
			return nil, "", fmt.Errorf("open %s: %w", path, err)
		}

		return p, path, nil
	}

	names, err := serial.GetPortsList()
	if err != nil {
		return nil, "", fmt.Errorf("list serial ports: %w", err)
	}

	for _, name := range names {
		p, err := serial.Open(name, mode)
		if err != nil {
			logger.DebugKV(ctx, "Skipping serial port", "port", name, "error", err)

			continue
		}

		logger.InfoKV(ctx, "Using serial port", "port", name)

		return p, name, nil
	}

	return nil, "", ErrNoPortFound
}
