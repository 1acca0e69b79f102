package classloader

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/xuperchain/classvm/engine"
)

// Loader is an in-memory engine.ClassLoader: classes are registered from
// serialized ClassFileMsg blobs and cached by name. It also finishes the
// class-shape work the interpreter core expects to already be done —
// wiring Class.Super and Class.Interfaces — which means a class's
// superclass and interfaces must already be registered before it is.
type Loader struct {
	mu      sync.Mutex
	classes map[string]*engine.Class
}

// NewLoader returns an empty Loader.
func NewLoader() *Loader {
	return &Loader{classes: make(map[string]*engine.Class)}
}

// Register decodes a class-file blob, wires its superclass and interface
// tables against already-registered classes, and caches the result.
func (l *Loader) Register(data []byte) (*engine.Class, error) {
	msg, err := Unmarshal(data)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	class := buildClass(msg)

	if msg.SuperName != "" {
		super, ok := l.classes[msg.SuperName]
		if !ok {
			return nil, errors.Errorf("register %s: superclass %s not registered", msg.Name, msg.SuperName)
		}
		class.Super = super
	}

	for _, ifaceName := range msg.Interfaces {
		iface, ok := l.classes[ifaceName]
		if !ok {
			return nil, errors.Errorf("register %s: interface %s not registered", msg.Name, ifaceName)
		}
		class.Interfaces = append(class.Interfaces, engine.InterfaceEntry{
			Interface:   iface,
			MethodTable: declaredVirtualMethods(iface),
		})
	}

	l.classes[msg.Name] = class
	return class, nil
}

// declaredVirtualMethods snapshots an interface's own method table, in
// declaration order, for use as an InterfaceEntry.MethodTable.
func declaredVirtualMethods(iface *engine.Class) []*engine.Method {
	methods := make([]*engine.Method, 0, len(iface.Methods))
	for _, m := range iface.Methods {
		if m.IsStatic() {
			continue
		}
		methods = append(methods, m)
	}
	return methods
}

// ResolveClass implements engine.ClassLoader.
func (l *Loader) ResolveClass(name []byte) (*engine.Class, error) {
	l.mu.Lock()
	class, ok := l.classes[string(name)]
	l.mu.Unlock()
	if !ok {
		return nil, errors.Errorf("class not found: %s", name)
	}
	return class, nil
}

// SimpleHeap is a GC-free engine.Heap: allocation just calls the engine's
// own object constructors, and Set is a no-op since Go's own garbage
// collector already keeps every reachable *Object/*ArrayObject alive.
type SimpleHeap struct{}

// NewSimpleHeap returns a SimpleHeap.
func NewSimpleHeap() *SimpleHeap { return &SimpleHeap{} }

func (h *SimpleHeap) Allocate(class *engine.Class) (*engine.Object, error) {
	return engine.NewObject(class), nil
}

func (h *SimpleHeap) AllocateArray(arrayClass *engine.Class, kind engine.ElemKind, elemType *engine.Class, length int) (*engine.ArrayObject, error) {
	if length < 0 {
		return nil, errors.Errorf("negative array length: %d", length)
	}
	return engine.NewArrayObject(arrayClass, kind, elemType, length), nil
}

func (h *SimpleHeap) Set(target, ref engine.HeapObject) {}

// SimpleMonitor is a map-of-mutexes engine.Monitor, keyed by whatever
// identity (a *Class or a HeapObject) the caller passes. It ignores ctx
// cancellation: acquisition always eventually succeeds.
type SimpleMonitor struct {
	mu    sync.Mutex
	locks map[interface{}]*sync.Mutex
}

// NewSimpleMonitor returns an empty SimpleMonitor.
func NewSimpleMonitor() *SimpleMonitor {
	return &SimpleMonitor{locks: make(map[interface{}]*sync.Mutex)}
}

func (m *SimpleMonitor) lockFor(identity interface{}) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lk, ok := m.locks[identity]
	if !ok {
		lk = &sync.Mutex{}
		m.locks[identity] = lk
	}
	return lk
}

func (m *SimpleMonitor) Acquire(ctx context.Context, identity interface{}) error {
	m.lockFor(identity).Lock()
	return nil
}

func (m *SimpleMonitor) Release(identity interface{}) {
	m.lockFor(identity).Unlock()
}

// SimpleSafepoint is a no-op engine.SafepointController for embedders with
// no stop-the-world GC to coordinate with.
type SimpleSafepoint struct{}

func (SimpleSafepoint) EnterIdle(t *engine.Thread)                        {}
func (SimpleSafepoint) EnterActive(t *engine.Thread, prior engine.ThreadState) {}

// SimpleWeakRefs is a slice-backed engine.WeakReferenceList with no
// clearing pass: it exists so allocation of a weak-reference-flagged
// class has somewhere to register, not to implement actual weak semantics.
type SimpleWeakRefs struct {
	mu   sync.Mutex
	refs []engine.HeapObject
}

// NewSimpleWeakRefs returns an empty SimpleWeakRefs.
func NewSimpleWeakRefs() *SimpleWeakRefs { return &SimpleWeakRefs{} }

func (w *SimpleWeakRefs) Register(obj engine.HeapObject) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.refs = append(w.refs, obj)
}

// Len reports how many objects have been registered, for tests.
func (w *SimpleWeakRefs) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.refs)
}
