package slist

import "golang.org/x/exp/constraints"

// Equal reports whether a and b hold equal elements in the same order.
func Equal[T comparable](a, b *List[T]) bool {
	return EqualFunc(a, b, func(x, y T) bool { return x == y })
}

// EqualFunc is like Equal but compares elements with eq.
func EqualFunc[T any](a, b *List[T], eq func(x, y T) bool) bool {
	if a.size != b.size {
		return false
	}
	for x, y := a.head.next, b.head.next; x != nil; x, y = x.next, y.next {
		if !eq(x.value, y.value) {
			return false
		}
	}
	return true
}

// CompareFunc compares a and b lexicographically using cmp on elements.
// A list that is a strict prefix of the other compares less.
func CompareFunc[T any](a, b *List[T], cmp func(x, y T) int) int {
	x, y := a.head.next, b.head.next
	for ; x != nil && y != nil; x, y = x.next, y.next {
		if c := cmp(x.value, y.value); c != 0 {
			return c
		}
	}
	switch {
	case x == nil && y == nil:
		return 0
	case x == nil:
		return -1
	default:
		return 1
	}
}

// Compare compares a and b lexicographically. Elements are ordered by <
// only, so two elements neither of which is less than the other count as
// equivalent.
func Compare[T constraints.Ordered](a, b *List[T]) int {
	return CompareFunc(a, b, func(x, y T) int {
		switch {
		case x < y:
			return -1
		case y < x:
			return 1
		}
		return 0
	})
}

func Less[T constraints.Ordered](a, b *List[T]) bool { return Compare(a, b) < 0 }

func LessOrEqual[T constraints.Ordered](a, b *List[T]) bool { return !Less(b, a) }

func Greater[T constraints.Ordered](a, b *List[T]) bool { return Less(b, a) }

func GreaterOrEqual[T constraints.Ordered](a, b *List[T]) bool { return !Less(a, b) }
