package decision

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// NewTransactionID generates an identifier of the form TXN-YYYYMMDD-NNNNN
// with a zero-padded 5-digit random suffix. The format is fixed for
// compatibility with the existing logs sheet. Roughly 100k IDs per day
// means collisions are possible; it is a display/correlation handle, not
// a unique key (logs carry their own UUID primary key).
func NewTransactionID(now time.Time) string {
	return fmt.Sprintf("TXN-%s-%05d", now.Format("20060102"), rand.IntN(100000))
}
