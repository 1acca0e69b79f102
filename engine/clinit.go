package engine

import (
	"context"

	"github.com/xuperchain/classvm/metrics"
)

// initStatus is the outcome of driving a class through the <clinit>
// trampoline for one dispatch-loop step.
type initStatus uint8

const (
	// initReady means the class chain is fully initialized (or this
	// thread is already inside its own <clinit>); the instruction that
	// asked may proceed immediately.
	initReady initStatus = iota
	// initPending means a <clinit> frame was pushed and the instruction
	// pointer rewound to retry the triggering instruction; the dispatch
	// loop must resume execution there instead of completing the op.
	initPending
	// initFailed means an exception was raised (either directly, or
	// because a superclass's <clinit> already failed); the dispatch loop
	// must jump to the unwinder.
	initFailed
)

// triggerInit implements the <clinit> trampoline: rather than recursing
// into the dispatch loop to run a static initializer to completion, it
// pushes at most one <clinit> frame per call and rewinds the instruction
// pointer to retryPC so the loop naturally re-executes (and re-checks)
// the triggering instruction once that frame returns. A class hierarchy
// is walked root-first via needsInitChain so superclass initializers
// always run before a subclass's own.
func (t *Thread) triggerInit(ctx context.Context, class *Class, retryPC int) initStatus {
	t.ensureLinked(class)

	target := needsInitChain(class)
	if target == nil {
		return initReady
	}
	if !target.beginInit(t.ID) {
		if target.hasFailed() {
			t.throwByName(ClassNoClassDefFoundError, string(target.Name))
			return initFailed
		}
		// Either it finished while we waited, or this is a recursive
		// reference to a class already being initialized by this same
		// thread from within its own <clinit> — either way proceed.
		return initReady
	}

	t.IP = retryPC
	if target.Clinit == nil {
		target.completeInit(true)
		return t.triggerInit(ctx, class, retryPC)
	}
	if !t.checkStack(target.Clinit) {
		target.completeInit(false)
		return initFailed
	}
	if err := t.pushFrame(ctx, target.Clinit); err != nil {
		target.completeInit(false)
		t.throwByName(ClassUnsatisfiedLinkError, err.Error())
		return initFailed
	}
	t.Log.Debug("running class initializer", "class", string(target.Name))
	metrics.DefaultVMMetrics.ObserveTrampolineReentry()
	return initPending
}

// isClinitFrame reports whether f is running its class's own <clinit>.
func isClinitFrame(f Frame) bool {
	return f.Method != nil && f.Method.Class != nil && f.Method.Class.Clinit == f.Method
}
