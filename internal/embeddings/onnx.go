package embeddings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// ErrONNXRuntimeMissing indicates the ONNX runtime shared library was not found.
var ErrONNXRuntimeMissing = errors.New("onnx runtime library not found")

var libraryNames = map[string]string{
	"linux":  "libonnxruntime.so",
	"darwin": "libonnxruntime.dylib",
}

// ONNXLibraryPath returns where the ONNX runtime library is expected:
// ONNX_PATH when set, otherwise ~/.config/policybot/lib/<library>.
func ONNXLibraryPath() string {
	if p := os.Getenv("ONNX_PATH"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	name, ok := libraryNames[runtime.GOOS]
	if !ok {
		return ""
	}
	return filepath.Join(home, ".config", "policybot", "lib", name)
}

// ensureONNXPath checks the library exists and exports ONNX_PATH for
// fastembed-go, which reads it during initialization.
func ensureONNXPath() error {
	p := ONNXLibraryPath()
	if p == "" {
		return fmt.Errorf("%w: unsupported platform %s/%s", ErrONNXRuntimeMissing, runtime.GOOS, runtime.GOARCH)
	}
	if _, err := os.Stat(p); err != nil {
		return fmt.Errorf("%w at %s (set ONNX_PATH or install onnxruntime): %v", ErrONNXRuntimeMissing, p, err)
	}
	return os.Setenv("ONNX_PATH", p)
}
