package engine

// resolveClass resolves the constant-pool entry at index within method's
// pool to a *Class, rewriting the pool slot on first success. Re-entrant:
// ResolveClass may itself trigger loading of other classes, and a racing
// thread resolving the same slot converges on the same result (constpool.go).
func (t *Thread) resolveClass(pool *ConstantPool, index int) (*Class, error) {
	if c := pool.ClassAt(index); c != nil {
		return c, nil
	}
	name := pool.ClassNameAt(index)
	if name == nil {
		return nil, NewVMErrorf("constant pool entry %d is not a class", index)
	}
	class, err := t.Loader.ResolveClass(name)
	if err != nil {
		t.Log.Debug("resolve class failed", "name", string(name), "err", err)
		return nil, err
	}
	t.Log.Debug("resolved class", "name", string(name))
	pool.rewrite(index, class)
	return class, nil
}

// resolveField resolves a fieldref constant-pool entry to a *Field,
// searching owner and its superclasses for a declared field matching the
// reference's name and descriptor.
func (t *Thread) resolveField(pool *ConstantPool, index int) (*Field, error) {
	if f := pool.FieldAt(index); f != nil {
		return f, nil
	}
	ref := pool.ReferenceAt(index)
	if ref == nil {
		return nil, NewVMErrorf("constant pool entry %d is not a field reference", index)
	}
	owner, err := t.Loader.ResolveClass(ref.OwnerClass)
	if err != nil {
		return nil, err
	}
	for k := owner; k != nil; k = k.Super {
		if f := k.findDeclaredField(ref.Name, ref.Spec); f != nil {
			pool.rewrite(index, f)
			return f, nil
		}
	}
	t.throwByName(ClassNoSuchFieldError, string(ref.OwnerClass)+"."+string(ref.Name))
	return nil, NewVMError("no such field")
}

// resolveMethod resolves a methodref constant-pool entry to a *Method,
// searching owner and its superclasses for a declared method. It does not
// perform virtual dispatch (see lookup.go's findMethod for that); it only
// answers "what method does this symbolic reference name".
func (t *Thread) resolveMethod(pool *ConstantPool, index int) (*Method, error) {
	if m := pool.MethodAt(index); m != nil {
		return m, nil
	}
	ref := pool.ReferenceAt(index)
	if ref == nil {
		return nil, NewVMErrorf("constant pool entry %d is not a method reference", index)
	}
	owner, err := t.Loader.ResolveClass(ref.OwnerClass)
	if err != nil {
		return nil, err
	}
	for k := owner; k != nil; k = k.Super {
		if m := k.findDeclaredMethod(ref.Name, ref.Spec); m != nil {
			pool.rewrite(index, m)
			return m, nil
		}
	}
	for _, e := range owner.Interfaces {
		for _, m := range e.MethodTable {
			if m.matches(ref.Name, ref.Spec) {
				pool.rewrite(index, m)
				return m, nil
			}
		}
	}
	t.throwByName(ClassNoSuchMethodError, string(ref.OwnerClass)+"."+string(ref.Name))
	return nil, NewVMError("no such method")
}

// ensureLinked links class if its vtable has not been built yet. Safe to
// call unconditionally before any virtual dispatch or field-offset use.
func (t *Thread) ensureLinked(class *Class) {
	if class.needsLinking() {
		if class.Super != nil {
			t.ensureLinked(class.Super)
		}
		class.link()
	}
}
