package config

import "testing"

func TestNewVMConfigDefaults(t *testing.T) {
	vc := NewVMConfig()
	if vc.StackWords != DefaultStackWords {
		t.Fatalf("StackWords = %d, want %d", vc.StackWords, DefaultStackWords)
	}
	if vc.MaxCallDepth != DefaultMaxCallDepth {
		t.Fatalf("MaxCallDepth = %d, want %d", vc.MaxCallDepth, DefaultMaxCallDepth)
	}
	if vc.RPC.Port != DefaultRPCPort {
		t.Fatalf("RPC.Port = %q, want %q", vc.RPC.Port, DefaultRPCPort)
	}
	if vc.Log.Module != "classvm" {
		t.Fatalf("Log.Module = %q, want classvm", vc.Log.Module)
	}
	if vc.Native.Builtins == nil {
		t.Fatal("Native.Builtins should be initialized, not nil")
	}
}

func TestDecodeNativeBuiltins(t *testing.T) {
	vc := NewVMConfig()
	vc.Native.Builtins["timeoutMillis"] = 250

	var dst struct {
		TimeoutMillis int `mapstructure:"timeoutMillis"`
	}
	if err := DecodeNativeBuiltins(vc, &dst); err != nil {
		t.Fatalf("DecodeNativeBuiltins: %v", err)
	}
	if dst.TimeoutMillis != 250 {
		t.Fatalf("TimeoutMillis = %d, want 250", dst.TimeoutMillis)
	}
}
