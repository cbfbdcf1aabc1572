package supervisor

import "testing"

func TestPhaseMachine_Paths(t *testing.T) {
	tests := []struct {
		name   string
		events []string
		want   string
	}{
		{"first round satisfies", []string{evGenerated, evSatisfied, evFinish}, PhaseSuccess},
		{"retry then satisfy", []string{evGenerated, evShort, evRetry, evGenerated, evSatisfied, evFinish}, PhaseSuccess},
		{"short and exhausted", []string{evGenerated, evShort, evExhausted}, PhasePartialSuccess},
		{"failed rounds abort", []string{evGenerationFailed, evRetry, evGenerationFailed, evAbort}, PhaseFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := newPhaseMachine()
			if err != nil {
				t.Fatalf("newPhaseMachine: %v", err)
			}
			if m.Phase() != PhaseAwaitingGeneration {
				t.Fatalf("initial phase = %q", m.Phase())
			}
			for _, ev := range tt.events {
				if err := m.fire(ev); err != nil {
					t.Fatalf("fire(%q): %v", ev, err)
				}
			}
			if m.Phase() != tt.want {
				t.Fatalf("phase = %q, want %q", m.Phase(), tt.want)
			}
		})
	}
}

func TestPhaseMachine_IllegalTransition(t *testing.T) {
	m, err := newPhaseMachine()
	if err != nil {
		t.Fatalf("newPhaseMachine: %v", err)
	}
	if err := m.fire(evFinish); err == nil {
		t.Fatal("expected error for finish before generation")
	}
	if m.Phase() != PhaseAwaitingGeneration {
		t.Fatalf("illegal event moved the machine to %q", m.Phase())
	}

	for _, ev := range []string{evGenerated, evSatisfied, evFinish} {
		if err := m.fire(ev); err != nil {
			t.Fatalf("fire(%q): %v", ev, err)
		}
	}
	if err := m.fire(evRetry); err == nil {
		t.Fatal("terminal phase must not accept events")
	}
}
