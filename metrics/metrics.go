// Package metrics collects the interpreter's Prometheus metrics:
// package-level vectors registered once against the default registry,
// exposed through a struct so callers don't reach for global state
// directly.
package metrics

import prom "github.com/prometheus/client_golang/prometheus"

var (
	// DefaultVMMetrics is the process-wide instance, registered against the
	// default Prometheus registry on package init.
	DefaultVMMetrics = newVMMetrics()
)

func init() {
	prom.MustRegister(DefaultVMMetrics.methodsInvoked)
	prom.MustRegister(DefaultVMMetrics.exceptionsThrown)
	prom.MustRegister(DefaultVMMetrics.clinitRuns)
	prom.MustRegister(DefaultVMMetrics.nativeCallsBound)
	prom.MustRegister(DefaultVMMetrics.nativeCallsInvoked)
	prom.MustRegister(DefaultVMMetrics.trampolineReentries)
	prom.MustRegister(DefaultVMMetrics.callLatency)
}

// VMMetrics is the collection of metrics one embedded VM reports.
type VMMetrics struct {
	methodsInvoked      *prom.CounterVec
	exceptionsThrown    *prom.CounterVec
	clinitRuns          *prom.CounterVec
	nativeCallsBound    *prom.CounterVec
	nativeCallsInvoked  *prom.CounterVec
	trampolineReentries prom.Counter
	callLatency         *prom.HistogramVec
}

func newVMMetrics() *VMMetrics {
	return &VMMetrics{
		methodsInvoked: prom.NewCounterVec(
			prom.CounterOpts{
				Name: "classvm_methods_invoked_total",
				Help: "Number of method invocations dispatched, by call kind (bytecode/native)",
			},
			[]string{"kind"}),
		exceptionsThrown: prom.NewCounterVec(
			prom.CounterOpts{
				Name: "classvm_exceptions_thrown_total",
				Help: "Number of exceptions thrown, by exception class",
			},
			[]string{"class"}),
		clinitRuns: prom.NewCounterVec(
			prom.CounterOpts{
				Name: "classvm_clinit_runs_total",
				Help: "Number of <clinit> frames run to completion, by outcome",
			},
			[]string{"class", "outcome"}),
		nativeCallsBound: prom.NewCounterVec(
			prom.CounterOpts{
				Name: "classvm_native_binds_total",
				Help: "Number of native symbol resolutions, by outcome",
			},
			[]string{"outcome"}),
		nativeCallsInvoked: prom.NewCounterVec(
			prom.CounterOpts{
				Name: "classvm_native_calls_total",
				Help: "Number of native bridge calls made, by builtin/library origin",
			},
			[]string{"origin"}),
		trampolineReentries: prom.NewCounter(
			prom.CounterOpts{
				Name: "classvm_clinit_trampoline_reentries_total",
				Help: "Number of times the <clinit> trampoline rewound the instruction pointer to retry a triggering instruction",
			}),
		callLatency: prom.NewHistogramVec(
			prom.HistogramOpts{
				Name:    "classvm_call_duration_seconds",
				Help:    "Wall-clock duration of a Thread.Run call, by method name",
				Buckets: prom.DefBuckets,
			},
			[]string{"method"}),
	}
}

// ObserveMethodInvoked records one dispatched call of the given kind.
func (m *VMMetrics) ObserveMethodInvoked(kind string) {
	m.methodsInvoked.WithLabelValues(kind).Inc()
}

// ObserveExceptionThrown records one exception object constructed, keyed
// by its class name.
func (m *VMMetrics) ObserveExceptionThrown(class string) {
	m.exceptionsThrown.WithLabelValues(class).Inc()
}

// ObserveClinitRun records one completed <clinit> frame.
func (m *VMMetrics) ObserveClinitRun(class string, ok bool) {
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	m.clinitRuns.WithLabelValues(class, outcome).Inc()
}

// ObserveNativeBind records one native-symbol resolution attempt.
func (m *VMMetrics) ObserveNativeBind(ok bool) {
	outcome := "bound"
	if !ok {
		outcome = "unsatisfied"
	}
	m.nativeCallsBound.WithLabelValues(outcome).Inc()
}

// ObserveNativeCall records one native bridge invocation.
func (m *VMMetrics) ObserveNativeCall(builtin bool) {
	origin := "library"
	if builtin {
		origin = "builtin"
	}
	m.nativeCallsInvoked.WithLabelValues(origin).Inc()
}

// ObserveTrampolineReentry records one <clinit> trampoline rewind.
func (m *VMMetrics) ObserveTrampolineReentry() {
	m.trampolineReentries.Inc()
}

// CallTimer starts a histogram timer for a top-level Thread.Run call;
// callers defer the returned func to record the observation.
func (m *VMMetrics) CallTimer(method string) func() {
	timer := prom.NewTimer(m.callLatency.WithLabelValues(method))
	return func() { timer.ObserveDuration() }
}
