//go:build js && wasm

package main

import (
	"encoding/binary"
	"math"
	"syscall/js"
	"unsafe"

	"github.com/cwbudde/algo-guitar/body"
	"github.com/cwbudde/algo-guitar/dsp"
	"github.com/cwbudde/algo-guitar/guitar"
	"github.com/cwbudde/algo-guitar/internal/audioout"
	"github.com/cwbudde/algo-guitar/internal/midiin"
)

const maxBlock = 128

var (
	globalGuitar *guitar.Guitar
	device       *audioout.Device
	bodyL        *body.Filter
	bodyR        *body.Filter
	outputBuffer []float32
	pcm          []byte
	monoL        []float32
	monoR        []float32
)

func main() {
	c := make(chan struct{})

	js.Global().Set("wasmInit", js.FuncOf(wasmInit))
	js.Global().Set("wasmPluck", js.FuncOf(wasmPluck))
	js.Global().Set("wasmKey", js.FuncOf(wasmKey))
	js.Global().Set("wasmRelease", js.FuncOf(wasmRelease))
	js.Global().Set("wasmSetEffect", js.FuncOf(wasmSetEffect))
	js.Global().Set("wasmSetBody", js.FuncOf(wasmSetBody))
	js.Global().Set("wasmProcessBlock", js.FuncOf(wasmProcessBlock))
	js.Global().Set("wasmGetMemoryBuffer", js.FuncOf(wasmGetMemoryBuffer))

	println("WASM guitar module loaded")
	<-c
}

func wasmInit(this js.Value, args []js.Value) interface{} {
	params := guitar.NewDefaultParams()
	if len(args) > 0 {
		params.SampleRate = args[0].Int()
		params.Duration = params.SampleRate
	}
	device = audioout.NewDevice(params.SampleRate, 4*maxBlock, dsp.NewConditioner(dsp.DefaultConditionerConfig(params.SampleRate)))
	g, err := guitar.NewGuitar(params, device)
	if err != nil {
		println("guitar init failed:", err.Error())
		return nil
	}
	globalGuitar = g
	outputBuffer = make([]float32, maxBlock*2)
	pcm = make([]byte, maxBlock*8)
	monoL = make([]float32, maxBlock)
	monoR = make([]float32, maxBlock)

	println("Guitar initialized at", params.SampleRate, "Hz")
	return nil
}

// wasmPluck(string, fretReading, intensity)
func wasmPluck(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 || globalGuitar == nil {
		return nil
	}
	globalGuitar.InjectPluck(args[0].Int(), uint16(args[1].Int()), uint16(args[2].Int()))
	return nil
}

// wasmKey(midiNote, velocity) plucks wherever the note is playable.
func wasmKey(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 || globalGuitar == nil {
		return nil
	}
	str, reading, ok := globalGuitar.Resolver().Locate(args[0].Int())
	if !ok {
		return false
	}
	globalGuitar.InjectPluck(str, reading, midiin.Intensity(globalGuitar.Params(), uint8(args[1].Int())))
	return true
}

func wasmRelease(this js.Value, args []js.Value) interface{} {
	if globalGuitar != nil {
		globalGuitar.ReleasePluck()
	}
	return nil
}

func wasmSetEffect(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || globalGuitar == nil {
		return nil
	}
	globalGuitar.SetMode(args[0].Bool())
	return nil
}

// wasmSetBody(enabled) switches the synthetic body filter.
func wasmSetBody(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || globalGuitar == nil {
		return nil
	}
	if !args[0].Bool() {
		bodyL, bodyR = nil, nil
		return nil
	}
	cfg := body.DefaultConfig()
	cfg.SampleRate = globalGuitar.Params().SampleRate
	ir, err := body.Generate(cfg)
	if err != nil {
		println("body IR failed:", err.Error())
		return nil
	}
	l, errL := body.NewFilter(ir, maxBlock)
	r, errR := body.NewFilter(ir, maxBlock)
	if errL != nil || errR != nil {
		println("body filter failed")
		return nil
	}
	bodyL, bodyR = l, r
	return nil
}

func wasmProcessBlock(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || globalGuitar == nil {
		return 0
	}
	numFrames := args[0].Int()
	if numFrames > maxBlock {
		numFrames = maxBlock
	}

	// Run the scheduler until the block's worth of slots is queued.
	for device.Buffered() < 2*numFrames {
		globalGuitar.Tick()
	}
	device.Read(pcm[:numFrames*8])
	for i := 0; i < 2*numFrames; i++ {
		outputBuffer[i] = math.Float32frombits(binary.LittleEndian.Uint32(pcm[4*i:]))
	}

	if bodyL != nil {
		for i := 0; i < numFrames; i++ {
			monoL[i] = outputBuffer[2*i]
			monoR[i] = outputBuffer[2*i+1]
		}
		l, errL := bodyL.Process(monoL[:numFrames])
		r, errR := bodyR.Process(monoR[:numFrames])
		if errL == nil && errR == nil {
			for i := 0; i < numFrames; i++ {
				outputBuffer[2*i] = l[i]
				outputBuffer[2*i+1] = r[i]
			}
		}
	}

	ptr := &outputBuffer[0]
	return js.ValueOf(uintptr(unsafe.Pointer(ptr)))
}

func wasmGetMemoryBuffer(this js.Value, args []js.Value) interface{} {
	return js.Global().Get("Go").Get("_inst").Get("exports").Get("mem").Get("buffer")
}
