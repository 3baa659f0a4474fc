package stack

import "errors"

var (
	ErrOverflow   = errors.New("stack overflow")
	ErrUnderflow  = errors.New("stack underflow")
	ErrOutOfRange = errors.New("stack index out of range")
)

// Stack is a fixed-capacity array of words with a stack pointer. Slots
// below the pointer are live; slots above it keep whatever was last
// written there until reused.
type Stack struct {
	a []uint
	l int
}

// NewStack creates a new stack with room for size slots
func NewStack(size int, elm ...uint) *Stack {
	stack := Stack{
		a: make([]uint, size),
		l: 0,
	}

	for _, e := range elm {
		if stack.l >= size {
			break
		}
		stack.a[stack.l] = e
		stack.l++
	}

	return &stack
}

// Push adds an element to the top of the stack
func (s *Stack) Push(elm uint) error {
	if s.l >= len(s.a) {
		return ErrOverflow
	}

	s.a[s.l] = elm
	s.l++

	return nil
}

// Pop removes and returns the top element of the stack
func (s *Stack) Pop() (uint, error) {
	if s.l < 1 {
		return 0, ErrUnderflow
	}

	s.l--
	return s.a[s.l], nil
}

// Peek returns the top element of the stack without removing it
func (s *Stack) Peek() (uint, error) {
	if s.l < 1 {
		return 0, ErrUnderflow
	}

	return s.a[s.l-1], nil
}

// Get returns the live slot at index i
func (s *Stack) Get(i int) (uint, error) {
	if i < 0 || i >= s.l {
		return 0, ErrOutOfRange
	}

	return s.a[i], nil
}

// Set overwrites the live slot at index i
func (s *Stack) Set(i int, v uint) error {
	if i < 0 || i >= s.l {
		return ErrOutOfRange
	}

	s.a[i] = v
	return nil
}

// Resize moves the stack pointer to n without touching slot contents
func (s *Stack) Resize(n int) error {
	if n < 0 {
		return ErrUnderflow
	}
	if n > len(s.a) {
		return ErrOverflow
	}

	s.l = n
	return nil
}

// Clear zeroes the slots in [from, to)
func (s *Stack) Clear(from, to int) {
	from, to = max(from, 0), min(to, len(s.a))
	if from < to {
		clear(s.a[from:to])
	}
}

// Size returns the number of live slots
func (s *Stack) Size() int {
	return s.l
}

// Cap returns the fixed capacity of the stack
func (s *Stack) Cap() int {
	return len(s.a)
}

// Array returns a copy of the live slots, bottom first
func (s *Stack) Array() []uint {
	return append([]uint(nil), s.a[:s.l]...)
}
