package framepump

import (
	"runtime"
	"strconv"
)

// ExecContext identifies an execution context. Values are comparable; two
// tokens are equal iff they were captured on the same context. The zero
// value matches no context.
type ExecContext struct {
	id uint64
}

// CurrentContext returns the token of the calling goroutine.
func CurrentContext() ExecContext {
	return ExecContext{id: goroutineID()}
}

// IsZero reports whether c is the zero token.
func (c ExecContext) IsZero() bool { return c.id == 0 }

func (c ExecContext) String() string {
	if c.id == 0 {
		return "ctx(none)"
	}
	return "ctx(" + strconv.FormatUint(c.id, 10) + ")"
}

// goroutineID parses the "goroutine N [...]" header of runtime.Stack.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] < '0' || buf[i] > '9' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}
