package engine

import (
	"sync"

	"github.com/xuperchain/classvm/metrics"
)

const (
	// ClassSuper is ACC_SUPER: invokespecial against this class dispatches
	// through the caller's superclass vtable rather than direct binding.
	ClassSuper uint16 = 1 << iota
	ClassInterface
)

const (
	// VMFlagWeakReference marks a class whose instances must be linked
	// onto the VM-global weak-reference list on allocation instead of
	// being traced strongly.
	VMFlagWeakReference uint16 = 1 << iota
)

// InterfaceEntry is one (interface, method table) pair of a class's
// interface table, used by invokeinterface to index a method by its
// interface-relative offset.
type InterfaceEntry struct {
	Interface   *Class
	MethodTable []*Method
}

type initState uint8

const (
	stateNotStarted initState = iota
	stateInitializing
	stateInitialized
	stateFailed
)

// Class is a loaded class's runtime descriptor. Loading and verification
// happen outside this package; Class is the shape the interpreter expects
// to find once the (external) class loader hands one back.
type Class struct {
	Name       []byte
	Flags      uint16
	Super      *Class
	Interfaces []InterfaceEntry
	Fields     []*Field
	Methods    []*Method
	VTable     []*Method
	Statics    []HeapObject
	FieldWords int
	VMFlags    uint16

	// Clinit is the class's <clinit> method, or nil if it declares none.
	Clinit *Method

	mu       sync.Mutex
	cond     *sync.Cond
	linked   bool
	state    initState
	ownerTID int64
}

// NewClass builds a Class with its initializer state machine ready to use.
func NewClass(name []byte) *Class {
	c := &Class{Name: name}
	c.cond = sync.NewCond(&c.mu)
	return c
}

func (c *Class) IsInterface() bool { return c.Flags&ClassInterface != 0 }
func (c *Class) HasSuperFlag() bool { return c.Flags&ClassSuper != 0 }

// IsSubclassOf reports whether c is class, or a proper subclass of it,
// walking the super chain by identity.
func (c *Class) IsSubclassOf(class *Class) bool {
	for k := c; k != nil; k = k.Super {
		if k == class {
			return true
		}
	}
	return false
}

// IsProperSubclassOf reports whether c is a strict descendant of class.
func (c *Class) IsProperSubclassOf(class *Class) bool {
	return c != class && c.IsSubclassOf(class)
}

// implementsInterface reports whether iface appears anywhere in c's
// interface table or an ancestor's.
func (c *Class) implementsInterface(iface *Class) bool {
	for k := c; k != nil; k = k.Super {
		for _, e := range k.Interfaces {
			if e.Interface == iface {
				return true
			}
		}
	}
	return false
}

// findInterfaceEntry returns the InterfaceEntry for iface, searching the
// super chain, or nil if not implemented.
func (c *Class) findInterfaceEntry(iface *Class) *InterfaceEntry {
	for k := c; k != nil; k = k.Super {
		for i := range k.Interfaces {
			if k.Interfaces[i].Interface == iface {
				return &k.Interfaces[i]
			}
		}
	}
	return nil
}

// findDeclaredMethod looks only at c's own method table (no superclass
// walk), matching name and spec byte-wise.
func (c *Class) findDeclaredMethod(name, spec []byte) *Method {
	for _, m := range c.Methods {
		if m.matches(name, spec) {
			return m
		}
	}
	return nil
}

// findDeclaredField looks only at c's own field table.
func (c *Class) findDeclaredField(name, spec []byte) *Field {
	for _, f := range c.Fields {
		if sameNameSpec(f.Name, f.Spec, name, spec) {
			return f
		}
	}
	return nil
}

// needsLinking reports whether link has not yet run for the class. It reads
// the linked flag only, so a class whose vtable is legitimately empty (no
// virtual methods, no super) counts as linked once link has run.
func (c *Class) needsLinking() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.linked
}

// link builds the vtable by copying the superclass's table and overlaying
// this class's own virtual methods, assigning fresh offsets to methods
// that don't override anything. Idempotent and safe to call redundantly;
// callers should still prefer checking needsLinking first. Linking is
// deliberately kept independent of the initializer state machine below: an
// unset linked flag means "needs linking", not "needs <clinit>", and the
// dispatcher must resolve the former before consulting the latter.
func (c *Class) link() {
	c.mu.Lock()
	if c.linked {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	var vtable []*Method
	if c.Super != nil {
		vtable = append(vtable, c.Super.VTable...)
	}
	for _, m := range c.Methods {
		if m.IsStatic() || bytesEqual(m.Name, []byte("<init>")) {
			continue
		}
		overridden := false
		for i, existing := range vtable {
			if existing.matches(m.Name, m.Spec) {
				m.Offset = i
				vtable[i] = m
				overridden = true
				break
			}
		}
		if !overridden {
			m.Offset = len(vtable)
			vtable = append(vtable, m)
		}
	}
	c.mu.Lock()
	c.VTable = vtable
	c.linked = true
	c.mu.Unlock()
}

// beginInit drives the class-initialization state machine: NotStarted ->
// Initializing(owner) -> Initialized | Failed. Linking is tracked
// separately (see link). It returns run=true when the caller (the
// dispatcher) must push a frame for <clinit> and call completeInit when it
// returns; run=false means the class is already initialized (or being
// initialized by this same thread re-entrantly) and the caller should
// proceed with the original instruction.
func (c *Class) beginInit(threadID int64) (run bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for {
		switch c.state {
		case stateInitialized, stateFailed:
			return false
		case stateInitializing:
			if c.ownerTID == threadID {
				return false // recursive init from within <clinit> itself
			}
			c.cond.Wait()
		case stateNotStarted:
			c.state = stateInitializing
			c.ownerTID = threadID
			return true
		}
	}
}

// completeInit transitions a class out of Initializing once its <clinit>
// frame has returned (or failed with an uncaught exception).
func (c *Class) completeInit(ok bool) {
	c.mu.Lock()
	if ok {
		c.state = stateInitialized
	} else {
		c.state = stateFailed
	}
	c.cond.Broadcast()
	c.mu.Unlock()
	metrics.DefaultVMMetrics.ObserveClinitRun(string(c.Name), ok)
}

// isInitialized reports whether <clinit> has completed successfully.
func (c *Class) isInitialized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == stateInitialized
}

// hasFailed reports whether c's own <clinit> (or an ancestor's, walked by
// the caller via needsInitChain) previously ran to completion with an
// uncaught exception. A failed class never attempts <clinit> again.
func (c *Class) hasFailed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == stateFailed
}

// needsInitChain walks c's superclass chain and returns the class closest
// to the root that has not yet been initialized, so a caller driving the
// <clinit> trampoline always runs superclass initializers before the
// subclass's own. Returns nil once the whole chain is initialized.
func needsInitChain(c *Class) *Class {
	if c == nil || c.isInitialized() {
		return nil
	}
	if s := needsInitChain(c.Super); s != nil {
		return s
	}
	return c
}
