package stages

import (
	"time"

	"github.com/google/uuid"
)

// timeNow and newID are package-level variables so tests can pin them.
var (
	timeNow = time.Now
	newID   = func() string { return uuid.NewString() }
)

// now returns the current time at the store's millisecond resolution.
func now() time.Time {
	return timeNow().UTC().Truncate(time.Millisecond)
}
