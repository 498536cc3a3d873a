package guitar

import "testing"

func TestRenderIsDeterministic(t *testing.T) {
	p := smallParams()
	script := []ScriptEvent{
		{Frame: 0, Action: ActionPluck, String: 1, Intensity: fullIntensity},
		{Frame: 50, Action: ActionRelease},
		{Frame: 200, Action: ActionEffectOn},
		{Frame: 250, Action: ActionPluck, String: 3, FretReading: 33000, Intensity: 3000},
	}
	a, err := Render(p, script, 1000, 9)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	b, err := Render(p, script, 1000, 9)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(a) != 2000 {
		t.Fatalf("len = %d, want 2000", len(a))
	}
	nonzero := 0
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("render differs at %d", i)
		}
		if a[i] != 0 {
			nonzero++
		}
	}
	if nonzero == 0 {
		t.Fatalf("render is silent")
	}
	for i := 0; i < len(a); i += 2 {
		if a[i] != a[i+1] {
			t.Fatalf("frame %d channels differ: %d vs %d", i/2, a[i], a[i+1])
		}
	}
}

func TestRenderRejectsNegativeLength(t *testing.T) {
	if _, err := Render(nil, nil, -1, 0); err == nil {
		t.Fatalf("expected error")
	}
}
