package engine

import (
	"fmt"

	"github.com/xuperchain/classvm/metrics"
)

// ThrowableObject is the interpreter's view of a thrown object: enough to
// resolve a handler's catch type against it and to print an
// uncaught-exception trace. It satisfies HeapObject, so it travels through
// the operand stack like any other reference. The exception slot
// (Thread.Exception) holds only *ThrowableObject: athrow on any other
// HeapObject raises a new ThrowableObject carrying just that object's class.
type ThrowableObject struct {
	class   *Class
	Message string
	Cause   *ThrowableObject
	// Trace is a snapshot of (class, method, line) taken at throw time,
	// innermost frame first.
	Trace []TraceEntry
}

// Class implements HeapObject.
func (t *ThrowableObject) Class() *Class { return t.class }

// TraceEntry names one stack frame for uncaught-exception reporting.
type TraceEntry struct {
	Class  string
	Method string
	Line   int
}

// NewThrowable builds a Throwable of class with message, no cause yet.
func NewThrowable(class *Class, message string) *ThrowableObject {
	return &ThrowableObject{class: class, Message: message}
}

// builtin exception class name constants, resolved against the embedder's
// class loader the first time one needs throwing.
const (
	ClassNullPointerException        = "java/lang/NullPointerException"
	ClassArrayIndexOutOfBoundsException = "java/lang/ArrayIndexOutOfBoundsException"
	ClassNegativeArraySizeException  = "java/lang/NegativeArraySizeException"
	ClassClassCastException          = "java/lang/ClassCastException"
	ClassNoSuchFieldError            = "java/lang/NoSuchFieldError"
	ClassNoSuchMethodError           = "java/lang/NoSuchMethodError"
	ClassUnsatisfiedLinkError        = "java/lang/UnsatisfiedLinkError"
	ClassStackOverflowError          = "java/lang/StackOverflowError"
	ClassArithmeticException         = "java/lang/ArithmeticException"
	ClassNoClassDefFoundError        = "java/lang/NoClassDefFoundError"
)

// throwByName resolves className through the thread's class loader and
// sets t.Exception to a fresh Throwable with message, ready for the
// unwinder to pick up on the caller's next `goto throw_`.
func (t *Thread) throwByName(className, message string) {
	metrics.DefaultVMMetrics.ObserveExceptionThrown(className)
	class, err := t.Loader.ResolveClass([]byte(className))
	if err != nil {
		// The exception class itself failed to resolve: fall back to a
		// bare Throwable-shaped object with no class so the unwinder still
		// has something to report, rather than losing the fault.
		t.Exception = &ThrowableObject{Message: message + " (and " + className + " could not be resolved: " + err.Error() + ")", Trace: t.captureTrace()}
		return
	}
	exc := NewThrowable(class, message)
	exc.Trace = t.captureTrace()
	t.Exception = exc
}

// captureTrace snapshots the current frame stack, innermost first, for an
// uncaught-exception report.
func (t *Thread) captureTrace() []TraceEntry {
	trace := make([]TraceEntry, 0, t.frame+1)
	for i := t.frame; i >= 0; i-- {
		f := t.frames[i]
		ip := f.IP
		if i == t.frame {
			ip = t.IP
		}
		line := 0
		if code := f.Method.CodeAttr(); code != nil {
			line = lineForPC(code, ip)
		}
		trace = append(trace, TraceEntry{
			Class:  string(f.Method.Class.Name),
			Method: string(f.Method.Name),
			Line:   line,
		})
	}
	return trace
}

// lineForPC finds the source line covering pc in code's line table, which
// is sorted by StartPc; it returns the entry with the greatest StartPc not
// exceeding pc, or 0 if the table is empty.
func lineForPC(code *Code, pc int) int {
	line := 0
	for _, e := range code.LineTable {
		if e.StartPc > pc {
			break
		}
		line = e.Line
	}
	return line
}

// VMError is an internal engine fault distinct from the bytecode-level
// Throwable taxonomy above: malformed constant pool, corrupt handler
// table, resolver misuse. It is a plain Go error, split into a reason
// string and a thin wrapper the way a trap/trap-error pair usually is.
type VMError struct {
	Reason string
}

func (e *VMError) Error() string { return e.Reason }

// NewVMError builds a VMError with reason.
func NewVMError(reason string) *VMError { return &VMError{Reason: reason} }

// NewVMErrorf builds a VMError with a formatted reason.
func NewVMErrorf(format string, args ...interface{}) *VMError {
	return &VMError{Reason: fmt.Sprintf(format, args...)}
}
