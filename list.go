package semamu

// list is a doubly-linked list, derived from container/list.List.
// It holds the semaphore's wait queue: PushBack enqueues at the tail,
// Front is the longest waiter, and Remove takes an element out of
// any position in O(1), which is what cancellation needs.
//
// The zero value is an empty list ready to use. list is not safe
// for concurrent use; Semaphore guards it with its own mutex.
type list[T any] struct {
	root element[T]
	len  int
}

// init initializes or clears list l.
func (l *list[T]) init() *list[T] {
	l.root.next = &l.root
	l.root.prev = &l.root
	l.len = 0
	return l
}

func (l *list[T]) lazyInit() {
	if l.root.next == nil {
		l.init()
	}
}

// Len returns the number of elements of list l.
func (l *list[T]) Len() int {
	return l.len
}

// Front returns the first element of list l or nil.
func (l *list[T]) Front() *element[T] {
	if l.len == 0 {
		return nil
	}
	return l.root.next
}

// PushBack inserts a new element with value v at
// the back of list l and returns it.
func (l *list[T]) PushBack(v T) *element[T] {
	l.lazyInit()
	e := &element[T]{Value: v}
	e.prev = l.root.prev
	e.next = &l.root
	e.prev.next = e
	e.next.prev = e
	e.list = l
	l.len++
	return e
}

// Remove removes e from l if e is an element of list l,
// and reports whether it did so.
func (l *list[T]) Remove(e *element[T]) bool {
	if e.list != l {
		return false
	}

	e.prev.next = e.next
	e.next.prev = e.prev
	e.next = nil // avoid memory leaks
	e.prev = nil // avoid memory leaks
	e.list = nil
	l.len--
	return true
}

// element is a node of list.
type element[T any] struct {
	next, prev *element[T]

	// list is the list this element belongs to,
	// or nil once the element has been removed.
	list *list[T]

	Value T
}
