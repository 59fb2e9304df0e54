package recall

import "fmt"

// Fragment is one incremental piece of a streamed reply. A fragment with a
// non-nil Err is always the last one of its turn.
type Fragment struct {
	Text string
	Err  error
}

// ErrorFragment returns the terminal fragment reporting err. Its Text is a
// printable marker so plain consumers can show it inline.
func ErrorFragment(err error) Fragment {
	return Fragment{Text: fmt.Sprintf("[Error: %v]", err), Err: err}
}
