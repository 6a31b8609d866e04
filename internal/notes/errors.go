package notes

const (
	OpList   = "list"
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// RemoteOperationError reports a failed store call. Its message is the
// store's own, so it can be shown to the user as is.
type RemoteOperationError struct {
	Op  string
	Err error
}

func (e *RemoteOperationError) Error() string {
	if e.Err == nil {
		return e.Op + " failed"
	}
	return e.Err.Error()
}

func (e *RemoteOperationError) Unwrap() error {
	return e.Err
}
