// Package layout implements container-of recovery: given a pointer to a
// field embedded at a known offset within a larger struct, recover a
// pointer to the enclosing struct. This is how hal/capability resolves a
// Lifecycle/Power/Diagnostic subinterface pointer back to the concrete
// driver struct that embeds it, the same way the teacher's uapi package
// reasons about fixed offsets within a kernel ABI struct via
// unsafe.Sizeof/unsafe.Pointer, generalized from "verify a struct's wire
// layout" to "recover the struct from one of its fields."
package layout

import "unsafe"

// OffsetOf returns the byte offset of field (a pointer into some struct
// value of type T) relative to base (a pointer to that same struct
// value). Both pointers must point into the same allocation; callers
// establish this by taking field's address from a literal field
// selector on *base, e.g.:
//
//	off := layout.OffsetOf(unsafe.Pointer(base), unsafe.Pointer(&base.Lifecycle))
func OffsetOf(base, field unsafe.Pointer) uintptr {
	return uintptr(field) - uintptr(base)
}

// ContainerOf recovers a pointer to the enclosing struct given a pointer
// to an embedded field and that field's byte offset within the struct.
// The caller supplies offset (computed once, e.g. via OffsetOf against a
// zero-value instance, and cached) rather than a type parameter, since Go
// has no reflect-free way to ask "what struct embeds this field type"
// without the caller telling it.
func ContainerOf(field unsafe.Pointer, offset uintptr) unsafe.Pointer {
	return unsafe.Pointer(uintptr(field) - offset)
}
