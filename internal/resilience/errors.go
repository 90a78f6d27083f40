// Package resilience provides retry, circuit breaking and rate limiting
// for the service's external dependencies.
package resilience

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/lib/pq"
)

// StoreUnavailableError wraps the last transient error after all retry
// attempts against the persistence layer were exhausted.
type StoreUnavailableError struct {
	Attempts int
	Err      error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("store unavailable after %d attempts: %v", e.Attempts, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error { return e.Err }

// IsTransient reports whether an error is a connection-class failure
// worth retrying. Classification is by error type, never message text:
// postgres class 08 (connection exceptions), a bad driver connection,
// or a network-level error.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Class() == "08"
	}

	if errors.Is(err, driver.ErrBadConn) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
