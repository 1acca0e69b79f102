package engine

// findMethod resolves a virtual call site: receiverClass must already be
// linked. symbolic names the method slot found at resolution time (which
// carries the correct vtable Offset even though it may belong to a
// superclass); the actual callee is whatever receiverClass's own vtable
// holds at that offset.
func (t *Thread) findMethod(receiverClass *Class, symbolic *Method) *Method {
	t.ensureLinked(receiverClass)
	if symbolic.Offset < 0 || symbolic.Offset >= len(receiverClass.VTable) {
		return symbolic
	}
	return receiverClass.VTable[symbolic.Offset]
}

// findInterfaceMethod resolves an invokeinterface call site: look up the
// interface entry on the receiver's actual class, find the method in that
// entry's table whose name and descriptor match the symbolic method, and
// dispatch through the receiver's vtable at that method's offset.
func (t *Thread) findInterfaceMethod(receiverClass *Class, iface *Class, symbolic *Method) (*Method, error) {
	t.ensureLinked(receiverClass)
	entry := receiverClass.findInterfaceEntry(iface)
	if entry == nil {
		t.throwByName(ClassNoSuchMethodError, string(iface.Name)+"."+string(symbolic.Name))
		return nil, NewVMError("receiver does not implement interface")
	}
	for _, m := range entry.MethodTable {
		if m.matches(symbolic.Name, symbolic.Spec) {
			// The interface's own table entry only names the signature;
			// the concrete override lives in the receiver's vtable at the
			// same virtual offset.
			return t.findMethod(receiverClass, m), nil
		}
	}
	t.throwByName(ClassNoSuchMethodError, string(iface.Name)+"."+string(symbolic.Name))
	return nil, NewVMError("interface method not found")
}

// isSpecialMethod reports whether invokespecial against method, issued
// from callerClass against a compile-time target of compileTimeOwner, must
// redirect through callerClass's superclass's virtual table rather than
// binding directly to the referenced method: true iff callerClass carries
// ACC_SUPER, method's name is not "<init>", and compileTimeOwner is a
// proper superclass of callerClass. Constructors, private methods, and any
// call whose compile-time target is not a proper superclass always bind
// directly.
func isSpecialMethod(method *Method, callerClass, compileTimeOwner *Class) bool {
	if bytesEqual(method.Name, []byte("<init>")) {
		return false
	}
	if !callerClass.HasSuperFlag() {
		return false
	}
	return callerClass.IsProperSubclassOf(compileTimeOwner)
}

// instanceOf reports whether obj is a (possibly indirect) instance of
// class: its own class, a subclass, or a class implementing it as an
// interface. Arrays and null are the caller's responsibility (checkcast/
// instanceof in ops_object.go handle those cases explicitly).
func instanceOf(obj HeapObject, class *Class) bool {
	if obj == nil {
		return false
	}
	objClass := obj.Class()
	if objClass == nil {
		return false
	}
	if class.IsInterface() {
		return objClass.implementsInterface(class)
	}
	return objClass.IsSubclassOf(class)
}
