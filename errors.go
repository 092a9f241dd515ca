package acb

import (
	"github.com/thefrozenfishy/acb/internal/types"
)

// FormatError is an alias to types.FormatError.
// Re-exported from internal/types so subpackages can share the type.
type FormatError = types.FormatError

// NotFoundError is an alias to types.NotFoundError.
// Re-exported from internal/types so subpackages can share the type.
type NotFoundError = types.NotFoundError

// ConsistencyError is an alias to types.ConsistencyError.
// Re-exported from internal/types so subpackages can share the type.
type ConsistencyError = types.ConsistencyError

// UsageError is an alias to types.UsageError.
// Re-exported from internal/types so subpackages can share the type.
type UsageError = types.UsageError

// TextDecodeError is an alias to types.TextDecodeError.
// Re-exported from internal/types so subpackages can share the type.
type TextDecodeError = types.TextDecodeError
