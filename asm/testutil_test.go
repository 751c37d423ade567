package asm

import (
	"fmt"
	"testing"
)

// assert mirrors the teacher's vm/vm_test.go helper of the same name:
// a single Fatalf wrapper so every test reads as a flat list of checks
// instead of a tree of if-t.Fatal blocks.
func assert(t *testing.T, cond bool, format string, args ...any) {
	if !cond {
		t.Fatalf(fmt.Sprintf("%v %s", cond, format), args...)
	}
}
