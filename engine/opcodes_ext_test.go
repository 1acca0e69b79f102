package engine

import (
	"context"
	"testing"
)

// TestLcmpAndConversions exercises the comparison/conversion opcode family
// added alongside the core arithmetic set: lcmp and the i2x/l2i narrowing
// and widening conversions.
func TestLcmpAndConversions(t *testing.T) {
	var negOneInt8 int8 = -1
	cases := []struct {
		name string
		spec string
		pool []interface{}
		code []byte
		want int32
	}{
		{
			name: "lcmp greater",
			spec: "()I",
			code: []byte{opBipush, 5, opI2l, opBipush, 3, opI2l, opLcmp, opIreturn},
			want: 1,
		},
		{
			name: "lcmp less",
			spec: "()I",
			code: []byte{opBipush, 3, opI2l, opBipush, 5, opI2l, opLcmp, opIreturn},
			want: -1,
		},
		{
			name: "lcmp equal",
			spec: "()I",
			code: []byte{opBipush, 9, opI2l, opBipush, 9, opI2l, opLcmp, opIreturn},
			want: 0,
		},
		{
			name: "i2b truncates and sign-extends",
			spec: "()I",
			code: []byte{opSipush, 0x00, 0xC8, opI2b, opIreturn}, // 200 -> -56
			want: -56,
		},
		{
			name: "i2c zero-extends",
			spec: "()I",
			code: []byte{opBipush, byte(negOneInt8), opI2c, opIreturn}, // -1 -> 65535
			want: 65535,
		},
		{
			name: "i2s truncates a boxed constant",
			spec: "()I",
			code: []byte{opLdc, 0x01, opI2s, opIreturn}, // 40000 -> -25536
			pool: []interface{}{nil, int32(40000)},
			want: -25536,
		},
		{
			name: "l2i narrows a boxed long",
			spec: "()I",
			code: []byte{opLdc2W, 0x00, 0x01, opL2i, opIreturn}, // 4294967298 -> 2
			pool: []interface{}{nil, int64(4294967298)},
			want: 2,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			loader := newFakeLoader()
			class := NewClass([]byte("Conv"))
			method := simpleMethod(class, "m", c.spec, 0, 4, c.code, c.pool)
			method.Flags = MethodStatic
			class.Methods = []*Method{method}
			loader.add(class)

			th := newEngineTestThread(loader)
			res := th.Run(context.Background(), "Conv", "m", c.spec, nil)
			if res.Exception != nil {
				t.Fatalf("unexpected exception: %s", res.Exception.Message)
			}
			if got := res.Value.asInt32(); got != c.want {
				t.Fatalf("got %d, want %d", got, c.want)
			}
		})
	}
}

// TestLdcW checks ldc_w decodes its operand as a 2-byte
// big-endian constant-pool index, unlike ldc's 1-byte index.
func TestLdcW(t *testing.T) {
	loader := newFakeLoader()
	class := NewClass([]byte("LdcW"))
	pool := []interface{}{nil, int32(77)}
	method := simpleMethod(class, "m", "()I", 0, 1,
		[]byte{opLdcW, 0x00, 0x01, opIreturn}, pool)
	method.Flags = MethodStatic
	class.Methods = []*Method{method}
	loader.add(class)

	th := newEngineTestThread(loader)
	res := th.Run(context.Background(), "LdcW", "m", "()I", nil)
	if res.Exception != nil {
		t.Fatalf("unexpected exception: %s", res.Exception.Message)
	}
	if got := res.Value.asInt32(); got != 77 {
		t.Fatalf("got %d, want 77", got)
	}
}

// TestGotoWSkipsDeadCode checks goto_w decodes a 4-byte signed branch
// offset, wide enough to jump past a method body goto never could reach.
func TestGotoWSkipsDeadCode(t *testing.T) {
	loader := newFakeLoader()
	class := NewClass([]byte("GotoW"))
	// 0: goto_w -> +7 (skip the iconst_1/ireturn dead branch at 5,6)
	// 5: iconst_1 ; 6: ireturn  (never reached)
	// 7: iconst_2 ; 8: ireturn
	code := []byte{opGotoW, 0x00, 0x00, 0x00, 0x07, opIconst1, opIreturn, opIconst2, opIreturn}
	method := simpleMethod(class, "m", "()I", 0, 1, code, nil)
	method.Flags = MethodStatic
	class.Methods = []*Method{method}
	loader.add(class)

	th := newEngineTestThread(loader)
	res := th.Run(context.Background(), "GotoW", "m", "()I", nil)
	if res.Exception != nil {
		t.Fatalf("unexpected exception: %s", res.Exception.Message)
	}
	if got := res.Value.asInt32(); got != 2 {
		t.Fatalf("got %d, want 2", got)
	}
}

// TestJsrRetSubroutine drives a minimal jsr/ret pair: jsr pushes a return
// address and jumps to a two-instruction subroutine that saves it into a
// local and immediately rets back.
func TestJsrRetSubroutine(t *testing.T) {
	loader := newFakeLoader()
	class := NewClass([]byte("Jsr"))
	// 0: jsr -> 5          (pushes return address 3)
	// 3: iconst_1 ; 4: ireturn
	// 5: istore 0 ; 7: ret 0
	code := []byte{opJsr, 0x00, 0x05, opIconst1, opIreturn, opIstore, 0x00, opRet, 0x00}
	method := simpleMethod(class, "m", "()I", 1, 2, code, nil)
	method.Flags = MethodStatic
	class.Methods = []*Method{method}
	loader.add(class)

	th := newEngineTestThread(loader)
	res := th.Run(context.Background(), "Jsr", "m", "()I", nil)
	if res.Exception != nil {
		t.Fatalf("unexpected exception: %s", res.Exception.Message)
	}
	if got := res.Value.asInt32(); got != 1 {
		t.Fatalf("got %d, want 1", got)
	}
}

// TestWideLoadStore checks the wide prefix widens istore/iload's local
// index to 16 bits.
func TestWideLoadStore(t *testing.T) {
	loader := newFakeLoader()
	class := NewClass([]byte("Wide"))
	code := []byte{
		opBipush, 42,
		opWide, opIstore, 0x00, 0x00,
		opWide, opIload, 0x00, 0x00,
		opIreturn,
	}
	method := simpleMethod(class, "m", "()I", 1, 1, code, nil)
	method.Flags = MethodStatic
	class.Methods = []*Method{method}
	loader.add(class)

	th := newEngineTestThread(loader)
	res := th.Run(context.Background(), "Wide", "m", "()I", nil)
	if res.Exception != nil {
		t.Fatalf("unexpected exception: %s", res.Exception.Message)
	}
	if got := res.Value.asInt32(); got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
}

// TestWideIinc checks the wide prefix widens both iinc's local index and
// its immediate delta to 16 bits.
func TestWideIinc(t *testing.T) {
	loader := newFakeLoader()
	class := NewClass([]byte("WideIinc"))
	code := []byte{
		opBipush, 10,
		opIstore, 0x00,
		opWide, opIinc, 0x00, 0x00, 0x00, 0x05,
		opIload, 0x00,
		opIreturn,
	}
	method := simpleMethod(class, "m", "()I", 1, 1, code, nil)
	method.Flags = MethodStatic
	class.Methods = []*Method{method}
	loader.add(class)

	th := newEngineTestThread(loader)
	res := th.Run(context.Background(), "WideIinc", "m", "()I", nil)
	if res.Exception != nil {
		t.Fatalf("unexpected exception: %s", res.Exception.Message)
	}
	if got := res.Value.asInt32(); got != 15 {
		t.Fatalf("got %d, want 15", got)
	}
}

// TestIfAcmp checks if_acmpeq/if_acmpne compare object references by
// identity rather than corrupting the stack by popping ints.
func TestIfAcmp(t *testing.T) {
	// 0: aload 0 ; 2: aload 1 ; 4: if_acmpeq -> 9
	// 7: iconst_0 ; 8: ireturn
	// 9: iconst_1 ; 10: ireturn
	eqCode := []byte{
		opAload, 0x00,
		opAload, 0x01,
		opIfAcmpeq, 0x00, 0x05,
		opIconst0, opIreturn,
		opIconst1, opIreturn,
	}
	neCode := []byte{
		opAload, 0x00,
		opAload, 0x01,
		opIfAcmpne, 0x00, 0x05,
		opIconst0, opIreturn,
		opIconst1, opIreturn,
	}

	loader := newFakeLoader()
	class := NewClass([]byte("Acmp"))
	eq := simpleMethod(class, "eq", "(Ljava/lang/Object;Ljava/lang/Object;)I", 2, 1, eqCode, nil)
	eq.Flags = MethodStatic
	eq.ParamWords, eq.ParamCount = 2, 2
	ne := simpleMethod(class, "ne", "(Ljava/lang/Object;Ljava/lang/Object;)I", 2, 1, neCode, nil)
	ne.Flags = MethodStatic
	ne.ParamWords, ne.ParamCount = 2, 2
	class.Methods = []*Method{eq, ne}
	loader.add(class)

	object := NewObject(NewClass([]byte("Thing")))
	other := NewObject(NewClass([]byte("Thing")))

	th := newEngineTestThread(loader)
	res := th.Run(context.Background(), "Acmp", "eq", "(Ljava/lang/Object;Ljava/lang/Object;)I", nil,
		refValue(object), refValue(object))
	if res.Exception != nil {
		t.Fatalf("unexpected exception: %s", res.Exception.Message)
	}
	if got := res.Value.asInt32(); got != 1 {
		t.Fatalf("same reference: got %d, want 1 (equal)", got)
	}

	th2 := newEngineTestThread(loader)
	res2 := th2.Run(context.Background(), "Acmp", "ne", "(Ljava/lang/Object;Ljava/lang/Object;)I", nil,
		refValue(object), refValue(other))
	if res2.Exception != nil {
		t.Fatalf("unexpected exception: %s", res2.Exception.Message)
	}
	if got := res2.Value.asInt32(); got != 1 {
		t.Fatalf("different references: got %d, want 1 (not-equal branch taken)", got)
	}
}
