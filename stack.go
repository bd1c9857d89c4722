package main

// The stack holds 32-bit cells; arithmetic on them wraps. Popping an empty
// stack yields 0, which programs rely on, so underflow is never an error.
type stack []int32

func (s *stack) push(val int32) {
	*s = append(*s, val)
}

func (s *stack) pop() (val int32) {
	if i := len(*s) - 1; i >= 0 {
		val, *s = (*s)[i], (*s)[:i]
	}
	return val
}

// peek returns the value n places below the top, or 0 if the stack is not
// that deep.
func (s stack) peek(n int) int32 {
	if i := len(s) - 1 - n; n >= 0 && i >= 0 {
		return s[i]
	}
	return 0
}

func (s stack) depth() int { return len(s) }
