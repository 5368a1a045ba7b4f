package errors

// Error is a string constant error. Sentinel errors of the engine are declared
// with this type so that they can be compared with ==.
type Error string

func (e Error) Error() string { return string(e) }
