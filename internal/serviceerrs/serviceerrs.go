package serviceerrs

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrNotConnected  = errors.New("not connected to the DB")
)

// StoreError wraps any driver or connection level failure of a store
// operation. It is never retried by the store itself.
type StoreError struct {
	Err error
	Op  string
}

func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return "store: " + e.Op + " failed"
	}
	return "store: " + e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
