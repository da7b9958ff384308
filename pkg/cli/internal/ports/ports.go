// Package ports provides listen address availability checking.
package ports

import (
	"fmt"
	"net"
)

// Check reports an error if addr cannot be bound right now.
func Check(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("address %s is not available: %w", addr, err)
	}
	_ = ln.Close()
	return nil
}

// IsAvailable reports whether addr can be bound.
func IsAvailable(addr string) bool {
	return Check(addr) == nil
}
