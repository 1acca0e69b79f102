package engine

import (
	"sync"
	"testing"
	"time"
)

func TestBeginInitSingleRun(t *testing.T) {
	c := NewClass([]byte("Demo"))
	c.state = stateNotStarted

	if run := c.beginInit(1); !run {
		t.Fatal("first beginInit should report run=true")
	}
	if run := c.beginInit(1); run {
		t.Fatal("recursive beginInit from the owning thread must not re-run <clinit>")
	}

	var wg sync.WaitGroup
	results := make([]bool, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.beginInit(int64(100 + i))
		}(i)
	}
	time.Sleep(10 * time.Millisecond)
	c.completeInit(true)
	wg.Wait()

	for i, r := range results {
		if r {
			t.Fatalf("waiter %d should never be told to run <clinit> itself", i)
		}
	}
	if !c.isInitialized() {
		t.Fatal("class should be initialized after completeInit(true)")
	}
}

func TestNeedsInitChain(t *testing.T) {
	base := NewClass([]byte("Base"))
	mid := NewClass([]byte("Mid"))
	mid.Super = base
	leaf := NewClass([]byte("Leaf"))
	leaf.Super = mid

	if got := needsInitChain(leaf); got != base {
		t.Fatalf("expected Base to be the first class needing init, got %v", got)
	}

	base.beginInit(1)
	base.completeInit(true)
	if got := needsInitChain(leaf); got != mid {
		t.Fatalf("expected Mid next, got %v", got)
	}

	mid.beginInit(1)
	mid.completeInit(true)
	if got := needsInitChain(leaf); got != leaf {
		t.Fatalf("expected Leaf next, got %v", got)
	}
}

func TestLinkBuildsVtableOverridingSuper(t *testing.T) {
	base := NewClass([]byte("Base"))
	baseGreet := &Method{Class: base, Name: []byte("greet"), Spec: []byte("()I")}
	base.Methods = []*Method{baseGreet}
	base.link()
	if len(base.VTable) != 1 || base.VTable[0] != baseGreet {
		t.Fatalf("base vtable = %v", base.VTable)
	}

	derived := NewClass([]byte("Derived"))
	derived.Super = base
	derivedGreet := &Method{Class: derived, Name: []byte("greet"), Spec: []byte("()I")}
	derived.Methods = []*Method{derivedGreet}
	derived.link()

	if len(derived.VTable) != 1 {
		t.Fatalf("derived vtable length = %d, want 1", len(derived.VTable))
	}
	if derived.VTable[0] != derivedGreet {
		t.Fatal("derived vtable did not overlay the override at the inherited offset")
	}
	if derivedGreet.Offset != baseGreet.Offset {
		t.Fatalf("override offset %d != base offset %d", derivedGreet.Offset, baseGreet.Offset)
	}
}
