package vm

import "fmt"

// An OutOfRangeError reports a logical address beyond the end of the
// simulated address space. A translation rejected with this error leaves the
// statistics untouched.
type OutOfRangeError struct {
	Address uint64
	Limit   uint64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("address %d out of range [0, %d)", e.Address, e.Limit)
}
