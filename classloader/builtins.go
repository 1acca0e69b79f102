package classloader

import (
	"github.com/pkg/errors"

	"github.com/xuperchain/classvm/common/log"
	"github.com/xuperchain/classvm/engine"
)

// nativeFunc is the concrete type SimpleBridge expects behind
// engine.NativeFunc: a symbol bound this way takes the marshalled
// argument/type vectors directly rather than through any C ABI.
type nativeFunc func(argv []uint64, typev []engine.TypeTag) (uint64, error)

// Builtins is a minimal engine.BuiltinTable of native symbols implemented
// in Go, for embedders and tests that want a runnable native method
// without linking a real dynamic library.
type Builtins struct {
	log     log.Logger
	symbols map[string]nativeFunc
}

// NewBuiltins returns a table preloaded with a couple of diagnostic
// symbols: printInt logs an int32 argument, and printLong logs an int64
// argument, both by way of the Logger a real embedder would already be
// using elsewhere.
func NewBuiltins(logger log.Logger) *Builtins {
	b := &Builtins{log: logger, symbols: make(map[string]nativeFunc)}
	b.symbols["classvm/lang/Console.printInt(I)V"] = b.printInt
	b.symbols["classvm/lang/Console.printLong(J)V"] = b.printLong
	return b
}

// Resolve implements engine.BuiltinTable.
func (b *Builtins) Resolve(symbol []byte) (engine.NativeFunc, bool) {
	fn, ok := b.symbols[string(symbol)]
	return fn, ok
}

// printInt discards the leading thread-handle argument and logs the int
// argument that follows it.
func (b *Builtins) printInt(argv []uint64, typev []engine.TypeTag) (uint64, error) {
	if len(argv) < 2 {
		return 0, errors.New("printInt: missing argument")
	}
	b.log.Info("printInt", "value", int32(argv[1]))
	return 0, nil
}

func (b *Builtins) printLong(argv []uint64, typev []engine.TypeTag) (uint64, error) {
	if len(argv) < 2 {
		return 0, errors.New("printLong: missing argument")
	}
	b.log.Info("printLong", "value", int64(argv[1]))
	return 0, nil
}

// SimpleBridge is a minimal engine.CallBridge: it invokes the nativeFunc
// directly with no C ABI marshalling, for native symbols implemented in
// Go (see Builtins) rather than in an actual dynamic library.
type SimpleBridge struct{}

// Call implements engine.CallBridge.
func (SimpleBridge) Call(fn engine.NativeFunc, argv []uint64, typev []engine.TypeTag) (uint64, error) {
	f, ok := fn.(nativeFunc)
	if !ok {
		return 0, errors.Errorf("native function has unexpected type %T", fn)
	}
	return f(argv, typev)
}
