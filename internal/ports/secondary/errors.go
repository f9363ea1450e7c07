package secondary

import (
	"errors"
	"fmt"
)

// ErrAuthRequired is returned when an operation needs a signed-in identity
// and none is available.
var ErrAuthRequired = errors.New("user not authenticated")

// GatewayError reports an operation the remote data store rejected or could
// not be reached for.
type GatewayError struct {
	Op      string // e.g. "create debt", "rpc update_debt_amount"
	Status  int    // HTTP status, 0 when the request never got a response
	Code    string // backend error code, when provided
	Message string
	Err     error // transport error, when the request failed before a response
}

func (e *GatewayError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s failed (%d): %s", e.Op, e.Status, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Op, e.Message)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// StorageError reports a failure of the local key/value persistence.
type StorageError struct {
	Op  string // "get", "set", "remove", "update"
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
