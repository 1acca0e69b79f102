// Package engine implements the frame-stack execution core of a
// class-based, stack-oriented bytecode VM: instruction dispatch, lazy
// symbolic resolution through a per-class constant pool, exception
// unwinding over handler tables, and native-method invocation through an
// embedder-supplied call bridge.
//
// The class-file parser, garbage collector, thread scheduler, monitor
// implementation and platform call trampoline are external collaborators
// reached only through the interfaces in collaborators.go.
package engine
