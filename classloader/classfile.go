// Package classloader is a minimal, in-memory ClassLoader/Heap
// implementation for the CLI and for tests that want a real (if
// bare-bones) way to get bytecode into the engine, rather than hand
// building *engine.Class fixtures. It sits entirely outside the
// interpreter core: the core only ever calls back through
// engine.ClassLoader/engine.Heap, never into this package directly.
package classloader

// The wire format below is a hand-written, legacy-style protobuf message
// set (no .proto/protoc step): each type only implements the minimal
// proto.Message interface (Reset/String/ProtoMessage) plus the struct
// tags proto.Marshal's reflection-based encoder needs. This is the same
// shape golang/protobuf supported for years before code generation became
// mandatory, and is enough to give a Code attribute a stable, versioned
// binary encoding without a codegen toolchain.

// ClassFileMsg is the serialized form of one loaded class.
type ClassFileMsg struct {
	Name       string          `protobuf:"bytes,1,opt,name=name"`
	SuperName  string          `protobuf:"bytes,2,opt,name=super_name"`
	Flags      uint32          `protobuf:"varint,3,opt,name=flags"`
	Interfaces []string        `protobuf:"bytes,4,rep,name=interfaces"`
	Fields     []*FieldInfoMsg `protobuf:"bytes,5,rep,name=fields"`
	Methods    []*MethodInfoMsg `protobuf:"bytes,6,rep,name=methods"`
}

func (m *ClassFileMsg) Reset()         { *m = ClassFileMsg{} }
func (m *ClassFileMsg) String() string { return "ClassFileMsg{" + m.Name + "}" }
func (*ClassFileMsg) ProtoMessage()    {}

// FieldInfoMsg is one declared field.
type FieldInfoMsg struct {
	Name  string `protobuf:"bytes,1,opt,name=name"`
	Spec  string `protobuf:"bytes,2,opt,name=spec"`
	Flags uint32 `protobuf:"varint,3,opt,name=flags"`
}

func (m *FieldInfoMsg) Reset()         { *m = FieldInfoMsg{} }
func (m *FieldInfoMsg) String() string { return "FieldInfoMsg{" + m.Name + "}" }
func (*FieldInfoMsg) ProtoMessage()    {}

// MethodInfoMsg is one declared method: either a Code body or (if
// NativeSymbol is non-empty) an unbound native method.
type MethodInfoMsg struct {
	Name         string      `protobuf:"bytes,1,opt,name=name"`
	Spec         string      `protobuf:"bytes,2,opt,name=spec"`
	Flags        uint32      `protobuf:"varint,3,opt,name=flags"`
	ParamWords   uint32      `protobuf:"varint,4,opt,name=param_words"`
	ParamCount   uint32      `protobuf:"varint,5,opt,name=param_count"`
	Code         *CodeMsg    `protobuf:"bytes,6,opt,name=code"`
	NativeSymbol string      `protobuf:"bytes,7,opt,name=native_symbol"`
}

func (m *MethodInfoMsg) Reset()         { *m = MethodInfoMsg{} }
func (m *MethodInfoMsg) String() string { return "MethodInfoMsg{" + m.Name + m.Spec + "}" }
func (*MethodInfoMsg) ProtoMessage()    {}

// CodeMsg is a method body: bytecode, frame sizing, exception handlers,
// a debug line table, and the constant pool it indexes into.
type CodeMsg struct {
	Bytes     []byte              `protobuf:"bytes,1,opt,name=bytes"`
	MaxLocals uint32              `protobuf:"varint,2,opt,name=max_locals"`
	MaxStack  uint32              `protobuf:"varint,3,opt,name=max_stack"`
	Handlers  []*ExceptionHandlerMsg `protobuf:"bytes,4,rep,name=handlers"`
	LineTable []*LineEntryMsg     `protobuf:"bytes,5,rep,name=line_table"`
	Pool      []*ConstEntryMsg    `protobuf:"bytes,6,rep,name=pool"`
}

func (m *CodeMsg) Reset()         { *m = CodeMsg{} }
func (m *CodeMsg) String() string { return "CodeMsg{}" }
func (*CodeMsg) ProtoMessage()    {}

// ExceptionHandlerMsg is one exception-table row.
type ExceptionHandlerMsg struct {
	StartPc        uint32 `protobuf:"varint,1,opt,name=start_pc"`
	EndPc          uint32 `protobuf:"varint,2,opt,name=end_pc"`
	HandlerPc      uint32 `protobuf:"varint,3,opt,name=handler_pc"`
	CatchTypeIndex uint32 `protobuf:"varint,4,opt,name=catch_type_index"`
}

func (m *ExceptionHandlerMsg) Reset()         { *m = ExceptionHandlerMsg{} }
func (m *ExceptionHandlerMsg) String() string { return "ExceptionHandlerMsg{}" }
func (*ExceptionHandlerMsg) ProtoMessage()    {}

// LineEntryMsg maps a bytecode offset to a source line.
type LineEntryMsg struct {
	StartPc uint32 `protobuf:"varint,1,opt,name=start_pc"`
	Line    uint32 `protobuf:"varint,2,opt,name=line"`
}

func (m *LineEntryMsg) Reset()         { *m = LineEntryMsg{} }
func (m *LineEntryMsg) String() string { return "LineEntryMsg{}" }
func (*LineEntryMsg) ProtoMessage()    {}

// constEntryKind tags which field of ConstEntryMsg is meaningful, since
// this hand-written format has no oneof support without codegen.
type constEntryKind uint32

const (
	constUnused constEntryKind = iota
	constClassName
	constFieldRef
	constMethodRef
	constInt32
	constInt64
)

// ConstEntryMsg is one constant-pool slot, always stored unresolved: the
// engine's resolver rewrites the in-memory ConstantPool entry the first
// time it's used, this message just needs to describe what to resolve.
type ConstEntryMsg struct {
	Kind       uint32 `protobuf:"varint,1,opt,name=kind"`
	ClassName  string `protobuf:"bytes,2,opt,name=class_name"`
	RefOwner   string `protobuf:"bytes,3,opt,name=ref_owner"`
	RefName    string `protobuf:"bytes,4,opt,name=ref_name"`
	RefSpec    string `protobuf:"bytes,5,opt,name=ref_spec"`
	Int32Value int32  `protobuf:"zigzag32,6,opt,name=int32_value"`
	Int64Value int64  `protobuf:"zigzag64,7,opt,name=int64_value"`
}

func (m *ConstEntryMsg) Reset()         { *m = ConstEntryMsg{} }
func (m *ConstEntryMsg) String() string { return "ConstEntryMsg{}" }
func (*ConstEntryMsg) ProtoMessage()    {}
