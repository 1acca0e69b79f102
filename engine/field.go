package engine

// Field is an immutable field descriptor: owning class, name/spec pair,
// flags, and the word offset it occupies (instance fields in Object.Fields,
// static fields in Class.Statics).
type Field struct {
	Class  *Class
	Name   []byte
	Spec   []byte
	Flags  uint16
	Offset int
}

const (
	FieldStatic uint16 = 1 << iota
)

func (f *Field) IsStatic() bool { return f.Flags&FieldStatic != 0 }

func sameNameSpec(name, spec []byte, wantName, wantSpec []byte) bool {
	return bytesEqual(name, wantName) && bytesEqual(spec, wantSpec)
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
