//go:build !whisper_cpp

package whisper

// Default stub (no cgo) so the project builds without the whisper_cpp tag.

// NativeAvailable reports whether the whisper.cpp backend is compiled in.
func NativeAvailable() bool { return false }

// Open loads the model at path. Without the whisper_cpp tag this is the stub engine.
func Open(path string) (Model, error) {
	m, err := OpenStub(path)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// SystemInfo describes the compiled engine.
func SystemInfo() string {
	return "WHISPER : stub engine (built without whisper_cpp) | CPU only"
}
