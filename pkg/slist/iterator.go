package slist

// Position is a location in a List: a real element, the before-begin
// sentinel or the end. Both Iterator and ConstIterator are positions, so
// either can be passed wherever a position is accepted.
type Position[T any] interface {
	position() cursor[T]
}

// cursor is the traversal core shared by both iterator flavors.
type cursor[T any] struct {
	n *node[T]

	// before marks the before-begin position. The sentinel node itself
	// carries no mark.
	before bool
}

func (c cursor[T]) advance() cursor[T] {
	switch {
	case c.n == nil:
		panic("slist: advance past end")
	case c.n.erased:
		panic("slist: advance of erased position")
	}
	return cursor[T]{n: c.n.next}
}

func (c cursor[T]) ref() *T {
	switch {
	case c.n == nil:
		panic("slist: dereference of end position")
	case c.before:
		panic("slist: dereference of before-begin position")
	case c.n.erased:
		panic("slist: dereference of erased position")
	}
	return &c.n.value
}

// Iterator is a forward iterator with write access to the element.
// It does not own the node it refers to and stays valid only while that
// node is in a list.
type Iterator[T any] struct {
	c cursor[T]
}

func (it Iterator[T]) position() cursor[T] { return it.c }

// Const returns a read-only view of the same position.
func (it Iterator[T]) Const() ConstIterator[T] {
	return ConstIterator[T]{c: it.c}
}

// Equal reports whether it and p refer to the same node.
func (it Iterator[T]) Equal(p Position[T]) bool {
	return it.c.n == p.position().n
}

// IsEnd reports whether it is the one-past-the-end position.
func (it Iterator[T]) IsEnd() bool { return it.c.n == nil }

// Next advances it and returns the new position.
func (it *Iterator[T]) Next() Iterator[T] {
	it.c = it.c.advance()
	return *it
}

// PostNext advances it and returns the position it had before.
func (it *Iterator[T]) PostNext() Iterator[T] {
	old := *it
	it.c = it.c.advance()
	return old
}

// Value returns the element at it.
func (it Iterator[T]) Value() T { return *it.c.ref() }

// Ptr returns a pointer to the element at it. The pointer is valid as
// long as the element stays in the list.
func (it Iterator[T]) Ptr() *T { return it.c.ref() }

// Set replaces the element at it.
func (it Iterator[T]) Set(v T) { *it.c.ref() = v }

// ConstIterator is a forward iterator with read-only access.
type ConstIterator[T any] struct {
	c cursor[T]
}

func (it ConstIterator[T]) position() cursor[T] { return it.c }

// Equal reports whether it and p refer to the same node.
func (it ConstIterator[T]) Equal(p Position[T]) bool {
	return it.c.n == p.position().n
}

func (it ConstIterator[T]) IsEnd() bool { return it.c.n == nil }

// Next advances it and returns the new position.
func (it *ConstIterator[T]) Next() ConstIterator[T] {
	it.c = it.c.advance()
	return *it
}

// PostNext advances it and returns the position it had before.
func (it *ConstIterator[T]) PostNext() ConstIterator[T] {
	old := *it
	it.c = it.c.advance()
	return old
}

// Value returns a copy of the element at it.
func (it ConstIterator[T]) Value() T { return *it.c.ref() }
