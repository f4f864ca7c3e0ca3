package crypto

import (
	"runtime"

	"didvault/internal/domain"
)

// Wipe zeroes the provided buffer. This is best-effort and aims to
// reduce the chance of the compiler eliding the write.
//
//go:noinline
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
	// Ensure b is considered live until after the loop.
	runtime.KeepAlive(&b)
}

// WipeKey zeroes k in place.
func WipeKey(k *domain.SymmetricKey) { Wipe(k.Slice()) }
