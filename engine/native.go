package engine

import (
	"context"

	"github.com/xuperchain/classvm/metrics"
)

// TypeTag classifies one native-call argument or return slot for the
// CallBridge: everything is marshalled as either a 32-bit word, a 64-bit
// word, or a pointer-sized handle, never as a typed native value.
type TypeTag uint8

const (
	TypeWord32  TypeTag = iota // B, S, C, I, Z, F
	TypeWord64                 // J, D
	TypePointer                // L..., [..., and the leading receiver/thread slot
	TypeVoid                   // V, return position only
)

// typeTagForSpec maps a single field-descriptor byte to its marshalling
// width. Array and object descriptors ('[' and 'L') are both pointers.
func typeTagForSpec(b byte) TypeTag {
	switch b {
	case 'J', 'D':
		return TypeWord64
	case 'L', '[':
		return TypePointer
	default:
		return TypeWord32
	}
}

// bindNative resolves method's native symbol against the thread's library
// list first, then its builtin table, caching the result on the Method so
// later calls skip the lookup. Raises UnsatisfiedLinkError and returns nil
// if nothing binds.
func (t *Thread) bindNative(method *Method) *NativeMethodData {
	if data := method.NativeData(); data != nil {
		return data
	}
	symbol := method.NativeSymbol()
	if symbol == nil {
		t.throwByName(ClassUnsatisfiedLinkError, string(method.Name))
		return nil
	}

	var fn NativeFunc
	found := false
	builtin := false
	for _, lib := range t.Libraries {
		if f, ok := lib.Resolve(symbol); ok {
			fn, found = f, true
			break
		}
	}
	if !found && t.Builtins != nil {
		if f, ok := t.Builtins.Resolve(symbol); ok {
			fn, found, builtin = f, true, true
		}
	}
	if !found {
		t.Log.Debug("native bind failed", "symbol", string(symbol))
		metrics.DefaultVMMetrics.ObserveNativeBind(false)
		t.throwByName(ClassUnsatisfiedLinkError, string(symbol))
		return nil
	}
	t.Log.Debug("bound native method", "symbol", string(symbol), "builtin", builtin)
	metrics.DefaultVMMetrics.ObserveNativeBind(true)

	paramTypes, ret := parseNativeSignature(method.Spec)
	if !method.IsStatic() {
		// The marshalled parameter vector carries the thread pointer first
		// (added by invokeNative itself) and, for an instance method, the
		// receiver immediately after — before any declared parameter.
		paramTypes = append([]TypeTag{TypePointer}, paramTypes...)
	}
	data := &NativeMethodData{
		Func:       fn,
		ParamTypes: paramTypes,
		ArgSize:    method.ParamWords,
		ReturnType: ret,
		Builtin:    builtin,
	}
	method.Code = data
	return data
}

// parseNativeSignature derives per-argument TypeTags and the return tag
// from a method descriptor of the form "(TT...)T".
func parseNativeSignature(spec []byte) (params []TypeTag, ret TypeTag) {
	i := 1 // skip '('
	for i < len(spec) && spec[i] != ')' {
		for spec[i] == '[' {
			i++
		}
		if spec[i] == 'L' {
			params = append(params, TypePointer)
			for spec[i] != ';' {
				i++
			}
			i++
			continue
		}
		params = append(params, typeTagForSpec(spec[i]))
		i++
	}
	i++ // skip ')'
	if i < len(spec) {
		if spec[i] == 'V' {
			ret = TypeVoid
		} else {
			ret = typeTagForSpec(spec[i])
		}
	}
	return params, ret
}

// invokeNative marshals the thread-supplied argument words for a bound
// native method through the CallBridge: a leading pointer-typed slot
// carries the thread/receiver handle, the call is wrapped in a safepoint
// transition unless it is a recognized builtin (builtins are assumed not
// to block and so skip the handshake), and the bridge's single uint64
// result is pushed back according to ReturnType.
func (t *Thread) invokeNative(ctx context.Context, data *NativeMethodData, argBase int) error {
	argv := make([]uint64, 0, len(data.ParamTypes)+1)
	typev := make([]TypeTag, 0, len(data.ParamTypes)+1)

	argv = append(argv, uint64(t.ID))
	typev = append(typev, TypePointer)

	idx := argBase
	for _, tag := range data.ParamTypes {
		v := t.Stack[idx]
		if tag == TypePointer {
			argv = append(argv, ptrHandle(v.Ref))
		} else {
			argv = append(argv, v.Num)
		}
		typev = append(typev, tag)
		if tag == TypeWord64 {
			idx += 2
		} else {
			idx++
		}
	}

	if !data.Builtin && t.Safepoint != nil {
		prior := t.State
		t.Safepoint.EnterIdle(t)
		defer t.Safepoint.EnterActive(t, prior)
	}

	metrics.DefaultVMMetrics.ObserveNativeCall(data.Builtin)
	result, err := t.Bridge.Call(data.Func, argv, typev)
	if err != nil {
		return err
	}

	switch data.ReturnType {
	case TypeVoid:
		// nothing to push
	case TypeWord64:
		t.pushLong(int64(result))
	case TypePointer:
		t.pushObject(handlePtr(result))
	default:
		t.pushInt(int32(result))
	}
	return nil
}

// ptrHandle/handlePtr convert between a HeapObject reference and the
// opaque uint64 handle the CallBridge's C-ABI-facing argument vector
// carries. The embedder's bridge is expected to round-trip these through
// its own handle table; nil maps to zero.
func ptrHandle(obj HeapObject) uint64 {
	if obj == nil {
		return 0
	}
	if h, ok := obj.(interface{ Handle() uint64 }); ok {
		return h.Handle()
	}
	return 0
}

func handlePtr(h uint64) HeapObject {
	// Resolving a returned handle back to a HeapObject is the embedder's
	// heap's job; the engine has no handle table of its own. Native
	// methods that return objects are expected to go through the Heap
	// collaborator directly rather than round-tripping through this path.
	return nil
}
