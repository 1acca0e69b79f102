package engine

// execArrayLoad runs the array-load family: push array[index] for the
// given opcode's element width. Raises NullPointerException or
// ArrayIndexOutOfBoundsException as appropriate instead of returning.
func (t *Thread) execArrayLoad(op byte) {
	index := t.popInt()
	arr, ok := t.popArrayRef()
	if !ok {
		return
	}
	if index < 0 || int(index) >= arr.Length() {
		t.throwByName(ClassArrayIndexOutOfBoundsException, indexMsg(index, arr.Length()))
		return
	}
	v := arr.Data[index]
	switch op {
	case opLaload:
		t.pushLong(v.asInt64())
	case opAaload:
		t.pushObject(v.Ref)
	default: // iaload, baload, and friends all carry a 32-bit payload
		t.pushInt(v.asInt32())
	}
}

// execArrayStore runs the array-store family.
func (t *Thread) execArrayStore(op byte) {
	var v Value
	switch op {
	case opLastore:
		v = int64Value(t.popLong())
	case opAastore:
		v = refValue(t.popObject())
	default:
		v = int32Value(t.popInt())
	}
	index := t.popInt()
	arr, ok := t.popArrayRef()
	if !ok {
		return
	}
	if index < 0 || int(index) >= arr.Length() {
		t.throwByName(ClassArrayIndexOutOfBoundsException, indexMsg(index, arr.Length()))
		return
	}
	if op == opAastore && v.Ref != nil && arr.ElemType != nil && !instanceOf(v.Ref, arr.ElemType) {
		t.throwByName(ClassClassCastException, "")
		return
	}
	arr.Data[index] = v
}

// popArrayRef pops the array reference beneath the index on an
// array-load/store site, raising NullPointerException and returning
// ok=false if it was null.
func (t *Thread) popArrayRef() (*ArrayObject, bool) {
	ref := t.popObject()
	if ref == nil {
		t.throwByName(ClassNullPointerException, "")
		return nil, false
	}
	arr, ok := ref.(*ArrayObject)
	if !ok {
		return nil, false
	}
	return arr, true
}

func indexMsg(index int32, length int) string {
	return "Index " + itoa(int(index)) + " out of bounds for length " + itoa(length)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// execNewarray allocates a primitive array of the newarray type tag.
func (t *Thread) execNewarray(kind ElemKind) {
	length := t.popInt()
	if length < 0 {
		t.throwByName(ClassNegativeArraySizeException, itoa(int(length)))
		return
	}
	arr, err := t.HeapImpl.AllocateArray(nil, kind, nil, int(length))
	if err != nil {
		t.throwByName(ClassNullPointerException, err.Error())
		return
	}
	t.pushObject(arr)
}

// execAnewarray allocates a reference array of the resolved element class.
func (t *Thread) execAnewarray(elemType *Class) {
	length := t.popInt()
	if length < 0 {
		t.throwByName(ClassNegativeArraySizeException, itoa(int(length)))
		return
	}
	arr, err := t.HeapImpl.AllocateArray(nil, ElemRef, elemType, int(length))
	if err != nil {
		t.throwByName(ClassNullPointerException, err.Error())
		return
	}
	t.pushObject(arr)
}

// execMultianewarray allocates a `dims`-dimensional array of elemType,
// popping one length per dimension (outermost first on the operand
// stack) and nesting ArrayObjects of ElemRef down to the innermost
// dimension.
func (t *Thread) execMultianewarray(elemType *Class, dims int) {
	lengths := make([]int32, dims)
	for i := dims - 1; i >= 0; i-- {
		lengths[i] = t.popInt()
	}
	for _, l := range lengths {
		if l < 0 {
			t.throwByName(ClassNegativeArraySizeException, itoa(int(l)))
			return
		}
	}
	arr, err := t.buildMultiarray(elemType, lengths)
	if err != nil {
		t.throwByName(ClassNullPointerException, err.Error())
		return
	}
	t.pushObject(arr)
}

func (t *Thread) buildMultiarray(elemType *Class, lengths []int32) (*ArrayObject, error) {
	n := int(lengths[0])
	if len(lengths) == 1 {
		return t.HeapImpl.AllocateArray(nil, ElemRef, elemType, n)
	}
	outer, err := t.HeapImpl.AllocateArray(nil, ElemRef, elemType, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		inner, err := t.buildMultiarray(elemType, lengths[1:])
		if err != nil {
			return nil, err
		}
		outer.Data[i] = refValue(inner)
	}
	return outer, nil
}

// execArraylength pushes the length of the array reference on top of the
// stack, raising NullPointerException if it is null.
func (t *Thread) execArraylength() {
	arr, ok := t.popArrayRef()
	if !ok {
		return
	}
	t.pushInt(int32(arr.Length()))
}
