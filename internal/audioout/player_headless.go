//go:build headless

package audioout

import (
	"context"
	"io"
	"sync"
	"time"
)

// Player drains a reader at the real-time rate without a sound card.
type Player struct {
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPlayer pulls 10 ms blocks of interleaved stereo float32 from src.
func NewPlayer(sampleRate int, src io.Reader) (*Player, error) {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Player{cancel: cancel}
	frames := sampleRate / 100
	buf := make([]byte, frames*8)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		t := time.NewTicker(10 * time.Millisecond)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				_, _ = src.Read(buf)
			}
		}
	}()
	return p, nil
}

func (p *Player) Close() error {
	p.cancel()
	p.wg.Wait()
	return nil
}
