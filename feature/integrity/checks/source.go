package checks

import (
	"context"
	"fmt"
)

// Authenticator is the part of the source client the source check uses.
type Authenticator interface {
	Login(ctx context.Context) error
}

// CheckSource proves the source credentials by logging in.
func CheckSource(ctx context.Context, source Authenticator) error {
	if err := source.Login(ctx); err != nil {
		return fmt.Errorf("source authentication failed: %w", err)
	}
	return nil
}
