package host

// Exception is the host exception object built by Native.
type Exception struct {
	Class   ExceptionClass
	Message string
}

func (e *Exception) Error() string {
	return string(e.Class) + ": " + e.Message
}
