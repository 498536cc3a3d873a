package link

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/cwbudde/algo-guitar/guitar"
)

func TestEncodeLayout(t *testing.T) {
	got, err := Encode(CmdSelect, []byte{3})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := []byte{SOF0, SOF1, 2, 0x10, 3, 2 ^ 0x10 ^ 3}
	if !bytes.Equal(got, want) {
		t.Fatalf("frame mismatch: got % x want % x", got, want)
	}
	if _, err := Encode(CmdSelect, make([]byte, MaxPayload+1)); !errors.Is(err, ErrFrameLength) {
		t.Fatalf("expected ErrFrameLength, got %v", err)
	}
}

func collect(d *Decoder, data []byte) ([]Frame, []error) {
	var frames []Frame
	var errs []error
	d.Feed(data, func(f Frame, err error) {
		if err != nil {
			errs = append(errs, err)
			return
		}
		frames = append(frames, Frame{Cmd: f.Cmd, Payload: append([]byte(nil), f.Payload...)})
	})
	return frames, errs
}

func TestDecoderRoundTripAcrossSplits(t *testing.T) {
	a, _ := Encode(CmdCapture, []byte{byte(guitar.CaptureRising)})
	b, _ := Encode(CmdMode, []byte{1})
	stream := append(append([]byte{0x00, 0x13}, a...), b...)

	for split := 0; split <= len(stream); split++ {
		var d Decoder
		f1, e1 := collect(&d, stream[:split])
		f2, e2 := collect(&d, stream[split:])
		frames := append(f1, f2...)
		if len(e1)+len(e2) != 0 {
			t.Fatalf("split %d: unexpected errors %v %v", split, e1, e2)
		}
		if len(frames) != 2 {
			t.Fatalf("split %d: got %d frames", split, len(frames))
		}
		if frames[0].Cmd != CmdCapture || frames[0].Payload[0] != byte(guitar.CaptureRising) {
			t.Fatalf("split %d: bad first frame %+v", split, frames[0])
		}
		if frames[1].Cmd != CmdMode || frames[1].Payload[0] != 1 {
			t.Fatalf("split %d: bad second frame %+v", split, frames[1])
		}
	}
}

func TestDecoderChecksumAndResync(t *testing.T) {
	bad, _ := Encode(CmdMode, []byte{1})
	bad[len(bad)-1] ^= 0xFF
	good, _ := Encode(CmdMode, []byte{0})

	var d Decoder
	frames, errs := collect(&d, append(bad, good...))
	if len(errs) != 1 || !errors.Is(errs[0], ErrChecksum) {
		t.Fatalf("expected one checksum error, got %v", errs)
	}
	if len(frames) != 1 || frames[0].Payload[0] != 0 {
		t.Fatalf("expected the good frame after resync, got %+v", frames)
	}
}

func TestDecoderRejectsLength(t *testing.T) {
	var d Decoder
	_, errs := collect(&d, []byte{SOF0, SOF1, 0})
	if len(errs) != 1 || !errors.Is(errs[0], ErrFrameLength) {
		t.Fatalf("expected length error, got %v", errs)
	}
}

func TestReadingsPayloadRoundTrip(t *testing.T) {
	in := [guitar.NumAnalogChannels]uint16{5946, 1, 2, 40000, 4, 65535, 33000}
	f := Frame{Cmd: CmdReadings, Payload: ReadingsPayload(in)}
	out, err := f.Readings()
	if err != nil {
		t.Fatalf("Readings: %v", err)
	}
	if out != in {
		t.Fatalf("readings mismatch: got %v want %v", out, in)
	}
	if _, err := (Frame{Cmd: CmdReadings, Payload: []byte{1}}).Readings(); !errors.Is(err, ErrFrameLength) {
		t.Fatalf("expected ErrFrameLength, got %v", err)
	}
}

type pipe struct {
	r io.Reader
	w bytes.Buffer
}

func (p *pipe) Read(b []byte) (int, error)  { return p.r.Read(b) }
func (p *pipe) Write(b []byte) (int, error) { return p.w.Write(b) }

type nullOutput struct{}

func (nullOutput) Poll() guitar.Readiness { return guitar.NotReady }
func (nullOutput) SendSample(int16)       {}

func TestRunDispatchesToGuitar(t *testing.T) {
	g, err := guitar.NewGuitar(nil, nullOutput{}, guitar.WithRandomSource(guitar.NewRandomSource(1)))
	if err != nil {
		t.Fatalf("NewGuitar: %v", err)
	}

	var stream []byte
	readings := [guitar.NumAnalogChannels]uint16{5946, 1, 2, 3, 4, 5, 6}
	for _, fr := range []struct {
		cmd     Command
		payload []byte
	}{
		{CmdReadings, ReadingsPayload(readings)},
		{CmdMode, []byte{1}},
		{CmdCapture, []byte{byte(guitar.CaptureRising)}},
	} {
		b, _ := Encode(fr.cmd, fr.payload)
		stream = append(stream, b...)
	}

	p := &pipe{r: bytes.NewReader(stream)}
	l := New(p, nil)
	if err := l.Run(context.Background(), g); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := g.Readings().Reading(3); got != 3 {
		t.Fatalf("reading 3 not applied: %d", got)
	}
	if !g.Control().EffectEnabled() {
		t.Fatalf("mode frame not applied")
	}
	if !g.Control().PluckPending() || g.Control().ScannerEnabled() {
		t.Fatalf("capture frame should raise a pluck and freeze the scanner")
	}
}

func TestSelectWritesFrame(t *testing.T) {
	p := &pipe{r: bytes.NewReader(nil)}
	var sel guitar.Selector = New(p, nil)
	sel.Select(5)
	want, _ := Encode(CmdSelect, []byte{5})
	if !bytes.Equal(p.w.Bytes(), want) {
		t.Fatalf("select frame mismatch: got % x want % x", p.w.Bytes(), want)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := New(&pipe{r: bytes.NewReader([]byte{1, 2, 3})}, nil)
	if err := l.Run(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
