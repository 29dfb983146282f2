package reactive

// Instrumentation receives engine events. Implementations must be cheap; they are
// called on the hot path. See the metrics package for a Prometheus implementation.
type Instrumentation interface {
	// Tracked is called when an effect is newly subscribed to a (target, key).
	Tracked(kind TargetKind)
	// Triggered is called once per triggered key with the number of effects that
	// key added to the run.
	Triggered(kind TargetKind, op TriggerOp, fanout int)
	// EffectRan is called after every effect run, scheduled or manual.
	EffectRan(e *EffectRunner, err error)
	// Flushed is called after a JobQueue flush that ran at least one job.
	Flushed(jobs int)
	// ReadonlyRejected is called when a read-only proxy refuses a mutation.
	ReadonlyRejected(kind TargetKind)
}

type noopInstrumentation struct{}

func (noopInstrumentation) Tracked(TargetKind)                   {}
func (noopInstrumentation) Triggered(TargetKind, TriggerOp, int) {}
func (noopInstrumentation) EffectRan(*EffectRunner, error)       {}
func (noopInstrumentation) Flushed(int)                          {}
func (noopInstrumentation) ReadonlyRejected(TargetKind)          {}
