package sqlite

import (
	"fmt"

	"github.com/oakframe/oak/core/auth"
)

// ErrEmailTaken is returned by Insert when the email is already registered.
// It wraps auth.ErrIdentityExists so callers can match either sentinel.
var ErrEmailTaken = fmt.Errorf("email is already registered: %w", auth.ErrIdentityExists)
