// Package link talks to the sensor front-end MCU over a serial line.
//
// Every frame on the wire is
//
//	[SOF0][SOF1][LEN][CMD][payload...][CKS]
//
// where LEN counts CMD plus payload and CKS is the XOR of LEN, CMD and every
// payload byte.
package link

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cwbudde/algo-guitar/guitar"
)

const (
	SOF0 = 0xAA
	SOF1 = 0x55

	// MaxPayload bounds LEN so a corrupt length byte cannot stall the decoder
	// for long.
	MaxPayload = 32
)

// Command identifies a frame type.
type Command byte

const (
	// CmdSelect (host to MCU) drives the string multiplexer. Payload: channel.
	CmdSelect Command = 0x10
	// CmdCapture (MCU to host) reports a beam capture interrupt. Payload: flags.
	CmdCapture Command = 0x20
	// CmdReadings (MCU to host) carries one sampler sweep. Payload: 7 x uint16 LE.
	CmdReadings Command = 0x21
	// CmdMode (MCU to host) reports the effect switch level. Payload: 0 or 1.
	CmdMode Command = 0x22
)

func (c Command) String() string {
	switch c {
	case CmdSelect:
		return "select"
	case CmdCapture:
		return "capture"
	case CmdReadings:
		return "readings"
	case CmdMode:
		return "mode"
	default:
		return fmt.Sprintf("cmd(0x%02x)", byte(c))
	}
}

var (
	ErrChecksum    = errors.New("link: checksum mismatch")
	ErrFrameLength = errors.New("link: bad frame length")
)

// Frame is one decoded message.
type Frame struct {
	Cmd     Command
	Payload []byte
}

// Encode builds the on-wire representation of a frame.
func Encode(cmd Command, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayload {
		return nil, fmt.Errorf("%w: payload %d bytes", ErrFrameLength, len(payload))
	}
	length := byte(len(payload) + 1)
	cks := length ^ byte(cmd)
	for _, b := range payload {
		cks ^= b
	}
	out := make([]byte, 0, len(payload)+5)
	out = append(out, SOF0, SOF1, length, byte(cmd))
	out = append(out, payload...)
	return append(out, cks), nil
}

// ReadingsPayload packs one sampler sweep.
func ReadingsPayload(values [guitar.NumAnalogChannels]uint16) []byte {
	out := make([]byte, 2*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint16(out[2*i:], v)
	}
	return out
}

// Readings unpacks a CmdReadings payload.
func (f Frame) Readings() ([guitar.NumAnalogChannels]uint16, error) {
	var out [guitar.NumAnalogChannels]uint16
	if len(f.Payload) != 2*len(out) {
		return out, fmt.Errorf("%w: readings payload %d bytes", ErrFrameLength, len(f.Payload))
	}
	for i := range out {
		out[i] = binary.LittleEndian.Uint16(f.Payload[2*i:])
	}
	return out, nil
}

type decodeState int

const (
	waitSOF0 decodeState = iota
	waitSOF1
	waitLen
	waitBody
	waitCks
)

// Decoder reassembles frames from an arbitrary byte stream. It resynchronizes
// on the next SOF pair after any error.
type Decoder struct {
	state decodeState
	n     int
	body  []byte
	cks   byte
}

// Feed consumes bytes and calls emit for every complete frame or framing
// error, in stream order. The frame payload is only valid during the call.
func (d *Decoder) Feed(data []byte, emit func(Frame, error)) {
	for _, b := range data {
		switch d.state {
		case waitSOF0:
			if b == SOF0 {
				d.state = waitSOF1
			}
		case waitSOF1:
			switch b {
			case SOF1:
				d.state = waitLen
			case SOF0:
				// stay: a repeated SOF0 may start the real frame
			default:
				d.state = waitSOF0
			}
		case waitLen:
			if b < 1 || int(b) > MaxPayload+1 {
				d.state = waitSOF0
				emit(Frame{}, fmt.Errorf("%w: %d", ErrFrameLength, b))
				continue
			}
			d.n = int(b)
			d.cks = b
			d.body = d.body[:0]
			d.state = waitBody
		case waitBody:
			d.body = append(d.body, b)
			d.cks ^= b
			if len(d.body) == d.n {
				d.state = waitCks
			}
		case waitCks:
			d.state = waitSOF0
			if b != d.cks {
				emit(Frame{}, fmt.Errorf("%w: got 0x%02x want 0x%02x", ErrChecksum, b, d.cks))
				continue
			}
			emit(Frame{Cmd: Command(d.body[0]), Payload: d.body[1:]}, nil)
		}
	}
}

// Reset drops any partial frame.
func (d *Decoder) Reset() {
	d.state = waitSOF0
	d.body = d.body[:0]
}
