package model

const (
	MsgTitleRequired = "Title cannot be empty."
	MsgTooLongFmt    = "%s must be at most %s characters."
)

// ValidationError is returned when a draft cannot be saved as it is. It is
// recoverable: the draft stays in the editor.
type ValidationError struct {
	Field   Field
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
