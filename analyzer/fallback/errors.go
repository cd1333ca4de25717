package fallback

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrDefect marks an internal invariant violation of the pass. A template
// that hits one is not compiled.
var ErrDefect = errors.New("this-fallback defect")

// defect is the panic value used to abort a walk.
type defect struct {
	msg string
}

func raise(format string, args ...any) {
	panic(&defect{msg: fmt.Sprintf(format, args...)})
}

// recoverDefect turns a raised defect into an error wrapping ErrDefect.
// Any other panic is re-raised.
func recoverDefect(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	d, ok := r.(*defect)
	if !ok {
		panic(r)
	}
	*errp = errors.Wrap(ErrDefect, d.msg)
}
