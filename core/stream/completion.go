package stream

// Completion is the terminal signal of a stream: either a normal finish
// or a failure carrying an error.
type Completion struct {
	err error
}

// Finished signals normal termination.
var Finished = Completion{}

// Failure signals termination with err.
// A nil err is treated as Finished.
func Failure(err error) Completion {
	return Completion{err: err}
}

// Err returns the failure cause, or nil for Finished.
func (c Completion) Err() error {
	return c.err
}

// IsFinished reports whether the stream terminated normally.
func (c Completion) IsFinished() bool {
	return c.err == nil
}

// String implements fmt.Stringer.
func (c Completion) String() string {
	if c.err == nil {
		return "finished"
	}
	return "failure(" + c.err.Error() + ")"
}
