//go:build !safe

// Package bytesconv provides the zero-copy []byte<->string conversions
// the compact-serialization tokenizer uses on its hot path (splitting a
// token into header/payload/signature segments touches these millions of
// times under load). Build with the "safe" tag to fall back to the
// allocating stdlib conversions instead.
package bytesconv

import "unsafe"

// BytesToString reinterprets b as a string without copying. The caller
// must not mutate b for as long as the returned string is alive.
func BytesToString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(b), len(b))
}

// StringToBytes reinterprets s as a []byte without copying. The caller
// must not mutate the returned slice.
func StringToBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}
