//go:build !headless

package audioout

import (
	"fmt"
	"io"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// Player streams a reader to the default sound card.
type Player struct {
	ctx    *oto.Context
	player *oto.Player
	mu     sync.Mutex
}

// NewPlayer opens the sound card for interleaved stereo float32 at
// sampleRate and starts pulling from src.
func NewPlayer(sampleRate int, src io.Reader) (*Player, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, fmt.Errorf("oto context: %w", err)
	}
	<-ready

	p := &Player{ctx: ctx, player: ctx.NewPlayer(src)}
	p.player.Play()
	return p, nil
}

// Close stops playback.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.player == nil {
		return nil
	}
	err := p.player.Close()
	p.player = nil
	return err
}
