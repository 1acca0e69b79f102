package engine

import "context"

// Frame is a method activation record: where its locals begin on the
// thread stack, the index of the frame it will return control to, the
// method it belongs to, and the caller's saved instruction pointer.
type Frame struct {
	Base   int
	Next   int
	Method *Method

	// IP is the saved instruction pointer. For the frame *below* the
	// current one it is the point to resume at on return; the current
	// frame's own IP is kept live in Thread.IP and only spilled here
	// immediately before a new frame is pushed on top of it.
	IP int

	// monitorHeld is the identity pushed to Monitor.Acquire on entry to a
	// synchronized method, so popFrame can release the exact same one
	// regardless of how the frame is torn down (normal return or unwind).
	monitorHeld   interface{}
	hasMonitor    bool
}

// monitorIdentity returns the identity a synchronized method's monitor is
// keyed on: the receiver for instance methods, the declaring class for
// static methods.
func (t *Thread) monitorIdentity(method *Method, base int) interface{} {
	if method.IsStatic() {
		return method.Class
	}
	return t.Stack[base].Ref
}

// checkStack verifies there is enough room on the thread stack to push a
// frame for method without overflowing. On failure it sets Exception to
// StackOverflowError and returns false; the caller must then jump to the
// unwinder instead of pushing the frame.
func (t *Thread) checkStack(method *Method) bool {
	base := t.SP - method.ParamWords
	locals := localsFor(method)
	maxStack := 0
	if code := method.CodeAttr(); code != nil {
		maxStack = code.MaxStack
	}
	need := base + locals + FrameFootprint + maxStack
	if need > len(t.Stack) {
		t.throwByName(ClassStackOverflowError, "")
		return false
	}
	return true
}

func localsFor(method *Method) int {
	if code := method.CodeAttr(); code != nil {
		return code.MaxLocals
	}
	return method.ParamWords
}

// pushFrame allocates and installs a new frame above the current one:
// spill the caller's IP, compute the callee's base from its parameter
// footprint, zero its extra locals, place the frame header, and — for a
// synchronized method — acquire its monitor. The caller must have already
// run checkStack successfully. ctx is only used for a synchronized
// method's monitor acquisition (a safepoint).
func (t *Thread) pushFrame(ctx context.Context, method *Method) error {
	if t.frame >= 0 {
		t.curFrame().IP = t.IP
	}

	base := t.SP - method.ParamWords
	locals := localsFor(method)

	for i := method.ParamWords; i < locals; i++ {
		if base+i < len(t.Stack) {
			t.Stack[base+i] = Value{}
		}
	}

	if code := method.CodeAttr(); code != nil {
		t.Code = code
	} else {
		t.Code = nil
	}

	f := Frame{Base: base, Next: t.frame, Method: method, IP: 0}
	t.frames = append(t.frames, f)
	t.frame = len(t.frames) - 1
	t.IP = 0
	t.SP = base + locals + FrameFootprint

	if method.IsSynchronized() {
		identity := t.monitorIdentity(method, base)
		if t.MonitorImpl != nil {
			if err := t.MonitorImpl.Acquire(ctx, identity); err != nil {
				return err
			}
		}
		t.frames[t.frame].monitorHeld = identity
		t.frames[t.frame].hasMonitor = true
	}
	return nil
}

// popFrame releases any held monitor and restores sp/frame/code/ip from
// the caller. Valid to call whether the frame is being torn down by a
// normal return or by the unwinder.
func (t *Thread) popFrame() {
	f := t.frames[t.frame]
	if f.hasMonitor && t.MonitorImpl != nil {
		t.MonitorImpl.Release(f.monitorHeld)
	}

	t.SP = f.Base
	t.frames = t.frames[:t.frame]
	t.frame = f.Next

	if t.frame >= 0 {
		cur := t.curFrame()
		t.Code = cur.Method.CodeAttr()
		t.IP = cur.IP
	} else {
		t.Code = nil
		t.IP = 0
	}
}
