// Package lifecycle holds shared timeouts for fx start/stop hooks.
package lifecycle

import "time"

// DefaultTimeout bounds every start/stop hook.
const DefaultTimeout = 10 * time.Second
