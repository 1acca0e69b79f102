package engine

import "testing"

func newTestThread(t *testing.T) *Thread {
	t.Helper()
	return NewThread(1, ThreadConfig{StackSize: 64})
}

func dumpInts(th *Thread, n int) []int32 {
	out := make([]int32, n)
	for i := 0; i < n; i++ {
		out[i] = th.Stack[th.SP-n+i].asInt32()
	}
	return out
}

func TestDupFamily(t *testing.T) {
	cases := []struct {
		name string
		push []int32
		op   func(th *Thread)
		want []int32
	}{
		{"dup", []int32{1}, (*Thread).dup, []int32{1, 1}},
		{"dupX1", []int32{1, 2}, (*Thread).dupX1, []int32{2, 1, 2}},
		{"dupX2", []int32{1, 2, 3}, (*Thread).dupX2, []int32{3, 1, 2, 3}},
		{"dup2", []int32{1, 2}, (*Thread).dup2, []int32{1, 2, 1, 2}},
		{"dup2X1", []int32{1, 2, 3}, (*Thread).dup2X1, []int32{2, 3, 1, 2, 3}},
		{"dup2X2", []int32{1, 2, 3, 4}, (*Thread).dup2X2, []int32{3, 4, 1, 2, 3, 4}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			th := newTestThread(t)
			for _, v := range c.push {
				th.pushInt(v)
			}
			c.op(th)
			got := dumpInts(th, len(c.want))
			for i := range c.want {
				if got[i] != c.want[i] {
					t.Fatalf("%s: got %v, want %v", c.name, got, c.want)
				}
			}
		})
	}
}

func TestSwapAndPop(t *testing.T) {
	th := newTestThread(t)
	th.pushInt(1)
	th.pushInt(2)
	th.swap()
	if got := dumpInts(th, 2); got[0] != 2 || got[1] != 1 {
		t.Fatalf("swap: got %v", got)
	}
	th.pop()
	if th.SP != 1 {
		t.Fatalf("pop: SP = %d, want 1", th.SP)
	}
}

func TestLongRoundTrip(t *testing.T) {
	th := newTestThread(t)
	th.pushLong(1<<40 + 7)
	if v := th.popLong(); v != 1<<40+7 {
		t.Fatalf("got %d", v)
	}
	if th.SP != 0 {
		t.Fatalf("SP after popLong = %d, want 0", th.SP)
	}
}
