package profile

import "testing"

func TestProfiler_StartEmptyMode(t *testing.T) {
	s := Profiler{}.Start()
	if _, ok := s.(ignore); !ok {
		t.Fatalf("Start() with empty mode = %T, want ignore", s)
	}

	s.Stop()
}

func TestProfiler_StartUnknownMode(t *testing.T) {
	s := Profiler{Mode: "bogus", Path: t.TempDir(), Quiet: true}.Start()
	if _, ok := s.(ignore); !ok {
		t.Fatalf("Start() with unknown mode = %T, want ignore", s)
	}

	s.Stop()
}

func TestModes(t *testing.T) {
	modes := Modes()
	if !Enabled() {
		if len(modes) != 0 {
			t.Errorf("Modes() = %v, want empty without %s tag", modes, Tag)
		}

		return
	}

	for i := 1; i < len(modes); i++ {
		if modes[i-1] >= modes[i] {
			t.Fatalf("Modes() not sorted: %v", modes)
		}
	}
}
