package database

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected is returned when a gateway is used before Connect succeeded.
	ErrNotConnected = errors.New("database not connected")
	// ErrConnection wraps any failure to reach the store during Connect.
	ErrConnection = errors.New("database connection failed")
)

func connectionError(err error) error {
	return fmt.Errorf("%w: %w", ErrConnection, err)
}
