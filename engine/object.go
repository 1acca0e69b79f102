package engine

// ElemKind identifies the element type of a primitive array, matching the
// newarray type-tag byte values.
type ElemKind uint8

const (
	ElemBool ElemKind = iota + 4
	ElemChar
	ElemFloat
	ElemDouble
	ElemByte
	ElemShort
	ElemInt
	ElemLong
	ElemRef // anewarray / multianewarray reference element
)

// HeapObject is satisfied by every object the interpreter can hold a
// reference to. Allocation and field mutation are mediated by the Heap
// collaborator (see collaborators.go); HeapObject itself only exposes the
// bits the dispatcher needs to read without going back through Heap.
type HeapObject interface {
	Class() *Class
}

// Object is a plain instance: its class pointer plus word-addressed
// instance fields, laid out according to the class's field table offsets.
type Object struct {
	class  *Class
	Fields []Value
}

// NewObject allocates an instance of class with zeroed fields. Embedders
// normally reach this through Heap.Allocate; it is exported so a minimal
// in-process Heap implementation (see classloader.SimpleHeap) has
// something to return.
func NewObject(class *Class) *Object {
	return &Object{
		class:  class,
		Fields: make([]Value, class.FieldWords),
	}
}

// Class implements HeapObject.
func (o *Object) Class() *Class { return o.class }

// ArrayObject is an array instance: element kind, length, and backing
// storage. Reference-typed arrays store live references in each Value's
// Ref lane; primitive arrays store their payload in the Num lane.
type ArrayObject struct {
	class    *Class
	ElemKind ElemKind
	ElemType *Class // only set when ElemKind == ElemRef
	Data     []Value
}

// NewArrayObject allocates an array of the given element kind and length.
func NewArrayObject(arrayClass *Class, kind ElemKind, elemType *Class, length int) *ArrayObject {
	return &ArrayObject{
		class:    arrayClass,
		ElemKind: kind,
		ElemType: elemType,
		Data:     make([]Value, length),
	}
}

// Class implements HeapObject.
func (a *ArrayObject) Class() *Class { return a.class }

// Length returns the element count.
func (a *ArrayObject) Length() int { return len(a.Data) }

// StringObject boxes a UTF-16-ish byte payload the way the VM's
// ldc-resolved String constants do. Its identity still satisfies
// HeapObject so it can live in a Value.Ref lane like any other reference.
type StringObject struct {
	class *Class
	Bytes []byte
}

// NewStringObject boxes bytes as a string instance of class.
func NewStringObject(class *Class, bytes []byte) *StringObject {
	return &StringObject{class: class, Bytes: bytes}
}

// Class implements HeapObject.
func (s *StringObject) Class() *Class { return s.class }

// BoxedPrimitive boxes a scalar static so the static table stays a uniform
// array of references (spec requirement for getstatic/putstatic).
type BoxedPrimitive struct {
	class *Class
	Kind  ElemKind
	Num   uint64
}

// Class implements HeapObject.
func (b *BoxedPrimitive) Class() *Class { return b.class }
