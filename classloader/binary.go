package classloader

import (
	"github.com/golang/protobuf/proto"
	"github.com/pkg/errors"

	"github.com/xuperchain/classvm/engine"
)

// Marshal encodes a ClassFileMsg to its stable binary form.
func Marshal(msg *ClassFileMsg) ([]byte, error) {
	data, err := proto.Marshal(msg)
	if err != nil {
		return nil, errors.Wrap(err, "marshal class file")
	}
	return data, nil
}

// Unmarshal decodes a binary class-file blob.
func Unmarshal(data []byte) (*ClassFileMsg, error) {
	msg := &ClassFileMsg{}
	if err := proto.Unmarshal(data, msg); err != nil {
		return nil, errors.Wrap(err, "unmarshal class file")
	}
	return msg, nil
}

// buildClass converts a decoded ClassFileMsg into a runtime *engine.Class.
// Super and Interfaces are left unset here: Loader.Register wires them
// against already-registered classes by name. Building a class never links
// it; the engine builds the vtable on first use.
func buildClass(msg *ClassFileMsg) *engine.Class {
	class := engine.NewClass([]byte(msg.Name))
	class.Flags = uint16(msg.Flags)

	class.Fields = make([]*engine.Field, len(msg.Fields))
	for i, f := range msg.Fields {
		class.Fields[i] = &engine.Field{
			Class:  class,
			Name:   []byte(f.Name),
			Spec:   []byte(f.Spec),
			Flags:  uint16(f.Flags),
			Offset: i,
		}
	}

	staticCount := 0
	instanceCount := 0
	for _, f := range class.Fields {
		if f.IsStatic() {
			f.Offset = staticCount
			staticCount++
		} else {
			f.Offset = instanceCount
			instanceCount++
		}
	}
	class.FieldWords = instanceCount
	class.Statics = make([]engine.HeapObject, staticCount)

	class.Methods = make([]*engine.Method, len(msg.Methods))
	for i, m := range msg.Methods {
		method := &engine.Method{
			Class:      class,
			Name:       []byte(m.Name),
			Spec:       []byte(m.Spec),
			Flags:      uint16(m.Flags),
			ParamWords: int(m.ParamWords),
			ParamCount: int(m.ParamCount),
		}
		switch {
		case m.NativeSymbol != "":
			method.Flags |= engine.MethodNative
			method.Code = []byte(m.NativeSymbol)
		case m.Code != nil:
			method.Code = buildCode(class, m.Code)
		}
		class.Methods[i] = method
		if string(method.Name) == "<clinit>" {
			class.Clinit = method
		}
	}

	return class
}

// buildCode converts a CodeMsg into an *engine.Code, decoding each
// constant-pool slot into the unresolved representation the engine's
// resolver expects (a class name, a *Reference, or an already-boxed
// ldc/ldc2_w constant).
func buildCode(owner *engine.Class, msg *CodeMsg) *engine.Code {
	code := &engine.Code{
		Bytes:     msg.Bytes,
		MaxLocals: int(msg.MaxLocals),
		MaxStack:  int(msg.MaxStack),
	}

	code.Handlers = make([]engine.ExceptionHandler, len(msg.Handlers))
	for i, h := range msg.Handlers {
		code.Handlers[i] = engine.ExceptionHandler{
			StartPc:        int(h.StartPc),
			EndPc:          int(h.EndPc),
			HandlerPc:      int(h.HandlerPc),
			CatchTypeIndex: int(h.CatchTypeIndex),
		}
	}

	code.LineTable = make([]engine.LineTableEntry, len(msg.LineTable))
	for i, l := range msg.LineTable {
		code.LineTable[i] = engine.LineTableEntry{StartPc: int(l.StartPc), Line: int(l.Line)}
	}

	entries := make([]interface{}, len(msg.Pool))
	for i, e := range msg.Pool {
		switch constEntryKind(e.Kind) {
		case constClassName:
			entries[i] = []byte(e.ClassName)
		case constFieldRef, constMethodRef:
			entries[i] = &engine.Reference{
				OwnerClass: []byte(e.RefOwner),
				Name:       []byte(e.RefName),
				Spec:       []byte(e.RefSpec),
			}
		case constInt32:
			entries[i] = e.Int32Value
		case constInt64:
			entries[i] = e.Int64Value
		default:
			entries[i] = nil
		}
	}
	code.Pool = engine.NewConstantPool(owner, entries)
	return code
}
