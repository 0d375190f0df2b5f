package jose

import (
	"time"
)

// Clock is the time source of the Leeway and Future validators and of the
// Blocklist's expiry bookkeeping. Read's own exp/nbf/iat checks use the
// ValidationPolicy's clock instead (WithClock, default time.Now).
// It can be overridden to use any other time value, useful for testing.
//
// Usage: now := Clock()
var Clock = time.Now
