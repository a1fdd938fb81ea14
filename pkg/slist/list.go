// Package slist implements a generic singly linked list with a
// before-begin sentinel, so that insertion and removal after any position,
// including in front of the first element, take O(1).
//
// A List is not safe for concurrent use. Callers that share a List between
// goroutines must synchronize access themselves.
package slist

import (
	"fmt"
	"iter"
)

// List is a singly linked list of T. The zero value is an empty list
// ready to use. A List must not be copied after first use, use Clone.
type List[T any] struct {
	noCopy noCopy

	head node[T] // before-begin sentinel, never holds a value
	size int
}

// New returns an empty list.
func New[T any]() *List[T] {
	return new(List[T])
}

// Of returns a list holding values in the given order.
func Of[T any](values ...T) *List[T] {
	l := New[T]()
	tail := &l.head
	for _, v := range values {
		tail = l.link(tail, v)
	}
	return l
}

// FromSeq returns a list holding the values yielded by seq, in order.
func FromSeq[T any](seq iter.Seq[T]) *List[T] {
	l := New[T]()
	tail := &l.head
	for v := range seq {
		tail = l.link(tail, v)
	}
	return l
}

// Len returns the number of elements. O(1).
func (l *List[T]) Len() int { return l.size }

// IsEmpty reports whether l has no elements.
func (l *List[T]) IsEmpty() bool { return l.size == 0 }

// Begin returns the position of the first element, or End if l is empty.
func (l *List[T]) Begin() Iterator[T] {
	return Iterator[T]{c: cursor[T]{n: l.head.next}}
}

// End returns the one-past-the-end position.
func (l *List[T]) End() Iterator[T] { return Iterator[T]{} }

// BeforeBegin returns the sentinel position that precedes the first
// element. It is valid even when l is empty and may only be used as an
// anchor for InsertAfter and EraseAfter.
func (l *List[T]) BeforeBegin() Iterator[T] {
	return Iterator[T]{c: cursor[T]{n: &l.head, before: true}}
}

func (l *List[T]) ConstBegin() ConstIterator[T] { return l.Begin().Const() }

func (l *List[T]) ConstEnd() ConstIterator[T] { return ConstIterator[T]{} }

func (l *List[T]) ConstBeforeBegin() ConstIterator[T] { return l.BeforeBegin().Const() }

// Front returns the first element. ok is false if l is empty.
func (l *List[T]) Front() (v T, ok bool) {
	if l.head.next == nil {
		return
	}
	return l.head.next.value, true
}

// InsertAfter inserts v immediately after pos and returns its position.
// pos must be the before-begin position of l or an element of l.
// It panics if pos is the end position.
func (l *List[T]) InsertAfter(pos Position[T], v T) Iterator[T] {
	n := l.mustAnchor(pos, "insert after")
	return Iterator[T]{c: cursor[T]{n: l.link(n, v)}}
}

// EraseAfter removes the element following pos and returns the position
// that now follows pos, which may be End. It panics if pos is the end
// position or has no successor.
func (l *List[T]) EraseAfter(pos Position[T]) Iterator[T] {
	n := l.mustAnchor(pos, "erase after")
	victim := n.next
	if victim == nil {
		panic("slist: erase after last position")
	}
	n.next = victim.next
	victim.release()
	l.size--
	return Iterator[T]{c: cursor[T]{n: n.next}}
}

// PushFront inserts v in front of the first element.
func (l *List[T]) PushFront(v T) {
	l.link(&l.head, v)
}

// PopFront removes the first element.
// The caller must make sure that l is not empty.
func (l *List[T]) PopFront() {
	first := l.head.next
	l.head.next = first.next
	first.release()
	l.size--
}

// Clear removes all elements. O(Len).
func (l *List[T]) Clear() {
	n := l.head.next
	for n != nil {
		next := n.next
		n.release()
		n = next
	}
	l.head.next = nil
	l.size = 0
}

// Swap exchanges the contents of l and other in O(1). Positions of
// elements move with the elements, the before-begin positions stay with
// their lists.
func (l *List[T]) Swap(other *List[T]) {
	l.head.next, other.head.next = other.head.next, l.head.next
	l.size, other.size = other.size, l.size
}

// Swap exchanges the contents of a and b in O(1).
func Swap[T any](a, b *List[T]) {
	a.Swap(b)
}

// Clone returns an independent copy of l. No node is shared between l
// and the copy.
func (l *List[T]) Clone() *List[T] {
	c := New[T]()
	tail := &c.head
	for n := l.head.next; n != nil; n = n.next {
		tail = c.link(tail, n.value)
	}
	return c
}

// CloneFunc is like Clone but copies every element with clone, which
// may fail. If it does, the partial copy is released and the error is
// returned. l is never modified.
func (l *List[T]) CloneFunc(clone func(T) (T, error)) (*List[T], error) {
	c := New[T]()
	tail := &c.head
	i := 0
	for n := l.head.next; n != nil; n = n.next {
		v, err := clone(n.value)
		if err != nil {
			c.Clear()
			return nil, fmt.Errorf("slist: failed to clone element #%d: %w", i, err)
		}
		tail = c.link(tail, v)
		i++
	}
	return c, nil
}

// Assign replaces the contents of l with a copy of src.
func (l *List[T]) Assign(src *List[T]) {
	tmp := src.Clone()
	l.Swap(tmp)
	tmp.Clear()
}

// AssignFunc replaces the contents of l with a copy of src made by
// clone. If clone fails, l is left unchanged.
func (l *List[T]) AssignFunc(src *List[T], clone func(T) (T, error)) error {
	tmp, err := src.CloneFunc(clone)
	if err != nil {
		return err
	}
	l.Swap(tmp)
	tmp.Clear()
	return nil
}

// All returns an iterator over the elements of l, in order.
func (l *List[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for n := l.head.next; n != nil; n = n.next {
			if !yield(n.value) {
				return
			}
		}
	}
}

// Slice returns the elements of l in a new slice.
func (l *List[T]) Slice() []T {
	s := make([]T, 0, l.size)
	for n := l.head.next; n != nil; n = n.next {
		s = append(s, n.value)
	}
	return s
}

func (l *List[T]) String() string {
	return fmt.Sprint(l.Slice())
}

// link creates a node holding v right after n.
func (l *List[T]) link(n *node[T], v T) *node[T] {
	nn := &node[T]{value: v, next: n.next}
	n.next = nn
	l.size++
	return nn
}

func (l *List[T]) mustAnchor(pos Position[T], op string) *node[T] {
	c := pos.position()
	n := c.n
	switch {
	case n == nil:
		panic(fmt.Sprintf("slist: %s end position", op))
	case n.erased:
		panic(fmt.Sprintf("slist: %s erased position", op))
	case c.before && n != &l.head:
		panic(fmt.Sprintf("slist: %s before-begin position of another list", op))
	}
	return n
}
