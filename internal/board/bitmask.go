package board

import (
	"fmt"
	"math/bits"

	"golang.org/x/exp/constraints"
)

// Width returns the number of bits in the mask type T.
func Width[T constraints.Unsigned]() uint {
	return uint(bits.OnesCount64(uint64(^T(0))))
}

// Nth returns a mask of type T with only bit n set.
func Nth[T constraints.Unsigned](n uint) T {
	if n >= Width[T]() {
		panic(fmt.Sprintf("bit %d out of range for %d-bit mask", n, Width[T]()))
	}
	return T(1) << n
}

// IsNthSet reports whether bit n of m is set.
func IsNthSet[T constraints.Unsigned](m T, n uint) bool {
	return m&Nth[T](n) != 0
}

// SetNth returns m with bit n set.
func SetNth[T constraints.Unsigned](m T, n uint) T {
	return m | Nth[T](n)
}

// ClearNth returns m with bit n cleared.
func ClearNth[T constraints.Unsigned](m T, n uint) T {
	return m &^ Nth[T](n)
}

// FlipNth returns m with bit n toggled.
func FlipNth[T constraints.Unsigned](m T, n uint) T {
	return m ^ Nth[T](n)
}

// Complement returns m with every bit inverted.
func Complement[T constraints.Unsigned](m T) T {
	return ^m
}
