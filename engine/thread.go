package engine

import "github.com/xuperchain/classvm/common/log"

// StackSizeInWords is the default operand/local stack capacity, expressed
// in logical Value slots (see stack.go's note on the dual-lane packing).
const StackSizeInWords = 64 * 1024

// FrameFootprint is the number of Value slots a frame header itself
// occupies between a frame's locals and its operand stack.
const FrameFootprint = 1

// Thread is a single execution context: one operand/local stack, one
// frame stack, and the collaborators it reaches out to for everything
// kept external to this package (class loading, allocation, monitors,
// safepoints, native binding).
type Thread struct {
	ID int64

	Stack []Value
	SP    int

	frames []Frame
	frame  int // index of current frame in `frames`, -1 = empty

	IP        int
	Code      *Code
	Exception *ThrowableObject

	State ThreadState

	Loader     ClassLoader
	HeapImpl   Heap
	MonitorImpl Monitor
	Safepoint  SafepointController
	WeakRefs   WeakReferenceList
	Libraries  []Library
	Builtins   BuiltinTable
	Bridge     CallBridge

	Log *log.Logger
}

// NewThread builds a Thread with a zeroed stack of StackSizeInWords slots
// and every collaborator wired from cfg.
func NewThread(id int64, cfg ThreadConfig) *Thread {
	size := cfg.StackSize
	if size == 0 {
		size = StackSizeInWords
	}
	logger := cfg.Log
	if logger == nil {
		discard := log.New("engine")
		discard.SetHandler(log.DiscardHandler())
		logger = &discard
	}
	return &Thread{
		ID:          id,
		Stack:       make([]Value, size),
		frame:       -1,
		Loader:      cfg.Loader,
		HeapImpl:    cfg.Heap,
		MonitorImpl: cfg.Monitor,
		Safepoint:   cfg.Safepoint,
		WeakRefs:    cfg.WeakRefs,
		Libraries:   cfg.Libraries,
		Builtins:    cfg.Builtins,
		Bridge:      cfg.Bridge,
		Log:         logger,
	}
}

// ThreadConfig bundles the collaborators a Thread needs; VM.NewThread
// (vm.go) is the usual way to obtain one, sharing collaborators across
// every thread of a running VM.
type ThreadConfig struct {
	StackSize int
	Loader    ClassLoader
	Heap      Heap
	Monitor   Monitor
	Safepoint SafepointController
	WeakRefs  WeakReferenceList
	Libraries []Library
	Builtins  BuiltinTable
	Bridge    CallBridge
	Log       *log.Logger
}

// curFrame returns the current frame header. Callers must only invoke this
// when frame >= 0 (i.e. code != nil), per the data-model invariant.
func (t *Thread) curFrame() *Frame {
	return &t.frames[t.frame]
}

// frameDepth returns the number of live frames, for StackOverflowError-ish
// diagnostics and debug tooling.
func (t *Thread) frameDepth() int {
	return t.frame + 1
}
