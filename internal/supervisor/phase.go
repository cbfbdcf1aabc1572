package supervisor

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// Phases of one supervision run. Untyped so they convert to
// statekit.StateID.
const (
	PhaseAwaitingGeneration = "awaiting_generation"
	PhaseAuditing           = "auditing"
	PhaseRetrying           = "retrying"
	PhaseSatisfied          = "satisfied"
	PhaseSuccess            = "success"
	PhasePartialSuccess     = "partial_success"
	PhaseFailed             = "failed"
)

const (
	evGenerated        = "generated"
	evGenerationFailed = "generation_failed"
	evSatisfied        = "satisfied"
	evShort            = "short"
	evRetry            = "retry"
	evExhausted        = "exhausted"
	evAbort            = "abort"
	evFinish           = "finish"
)

type runContext struct{}

// phaseMachine tracks the phase of a single Run. It is not shared between
// runs.
type phaseMachine struct {
	interpreter *statekit.Interpreter[runContext]
}

func newPhaseMachine() (*phaseMachine, error) {
	builder := statekit.NewMachine[runContext]("supervision").
		WithInitial(statekit.StateID(PhaseAwaitingGeneration)).
		WithContext(runContext{})

	builder.State(PhaseAwaitingGeneration).
		On(evGenerated).Target(PhaseAuditing).
		On(evGenerationFailed).Target(PhaseRetrying).
		Done()

	builder.State(PhaseAuditing).
		On(evSatisfied).Target(PhaseSatisfied).
		On(evShort).Target(PhaseRetrying).
		Done()

	builder.State(PhaseRetrying).
		On(evRetry).Target(PhaseAwaitingGeneration).
		On(evExhausted).Target(PhasePartialSuccess).
		On(evAbort).Target(PhaseFailed).
		Done()

	builder.State(PhaseSatisfied).
		On(evFinish).Target(PhaseSuccess).
		Done()

	builder.State(PhaseSuccess).Done()
	builder.State(PhasePartialSuccess).Done()
	builder.State(PhaseFailed).Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("build supervision machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()
	return &phaseMachine{interpreter: interpreter}, nil
}

// fire sends event and fails if it did not move the machine.
func (m *phaseMachine) fire(event string) error {
	before := m.Phase()
	m.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	if m.Phase() == before {
		return fmt.Errorf("illegal transition %q from phase %q", event, before)
	}
	return nil
}

// Phase returns the current phase.
func (m *phaseMachine) Phase() string {
	return string(m.interpreter.State().Value)
}
