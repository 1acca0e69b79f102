package engine

import (
	"fmt"
	"strings"
)

// unwind walks the frame stack looking for a handler whose range covers the
// faulting pc and whose catch type matches t.Exception's class (or is a
// catch-all), never popping below floor (the depth the enclosing loop call
// started at, so a nested runToCompletion can never unwind frames that
// belong to an outer call). It never uses a host-language panic: the
// exception value is a heap object the dispatch loop threads through
// explicitly, and this function only ever pops frames and rewrites the
// instruction pointer. Returns true if execution should resume inside a
// handler, false if the exception escaped the topmost frame (the caller is
// then responsible for reporting it as uncaught).
func (t *Thread) unwind(floor int) bool {
	if t.frame >= 0 {
		// Spill the live instruction pointer into the current frame's
		// header so the loop below can read a consistent frame.IP for
		// every frame, including the one that's actually still running.
		t.curFrame().IP = t.IP
	}
	for t.frame > floor {
		frame := t.curFrame()
		code := frame.Method.CodeAttr()
		if code != nil {
			if pc, ok := t.findHandler(code, frame.IP-1); ok {
				t.IP = pc
				t.Code = code
				t.SP = frame.Base + code.MaxLocals + FrameFootprint
				t.pushObject(t.Exception)
				t.Exception = nil
				return true
			}
		}
		unwinding := *frame
		t.popFrame()
		if isClinitFrame(unwinding) {
			t.Log.Warn("class initializer failed", "class", string(unwinding.Method.Class.Name))
			unwinding.Method.Class.completeInit(false)
		}
	}
	return false
}

// findHandler scans code's exception table for a handler covering pc whose
// catch type resolves and matches the current exception's class (index 0
// means catch-all, used for compiled finally blocks).
func (t *Thread) findHandler(code *Code, pc int) (int, bool) {
	for _, h := range code.Handlers {
		if pc < h.StartPc || pc >= h.EndPc {
			continue
		}
		if h.CatchTypeIndex == 0 {
			return h.HandlerPc, true
		}
		catchClass, err := t.resolveClass(code.Pool, h.CatchTypeIndex)
		if err != nil {
			continue
		}
		if t.Exception.class == nil || t.Exception.class.IsSubclassOf(catchClass) {
			return h.HandlerPc, true
		}
	}
	return 0, false
}

// reportUncaught formats an uncaught exception's cause chain the way a
// human-readable stack trace is printed: innermost frame first, each cause
// introduced by "Caused by:".
func reportUncaught(exc *ThrowableObject) string {
	var b strings.Builder
	for e := exc; e != nil; e = e.Cause {
		if e != exc {
			b.WriteString("Caused by: ")
		}
		name := "<unresolved>"
		if e.class != nil {
			name = string(e.class.Name)
		}
		if e.Message != "" {
			fmt.Fprintf(&b, "%s: %s\n", name, e.Message)
		} else {
			fmt.Fprintf(&b, "%s\n", name)
		}
		for _, f := range e.Trace {
			fmt.Fprintf(&b, "\tat %s.%s(line %d)\n", f.Class, f.Method, f.Line)
		}
	}
	return b.String()
}
