package slist

// node is a chain link. The next field is the only owning reference to
// the following node.
type node[T any] struct {
	value T
	next  *node[T]

	erased bool // released by PopFront, EraseAfter or Clear
}

// release unlinks n from the chain and drops its value so that a stale
// position can neither reach the rest of the chain nor read old data.
func (n *node[T]) release() {
	var zero T
	n.value = zero
	n.next = nil
	n.erased = true
}

// noCopy may be embedded into structs which must not be copied
// after the first use. See go vet -copylocks.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
