package decision

import (
	"regexp"
	"strings"
	"testing"
	"time"
)

var txnPattern = regexp.MustCompile(`^TXN-\d{8}-\d{5}$`)

func TestNewTransactionID(t *testing.T) {
	now := time.Date(2026, time.March, 7, 15, 4, 5, 0, time.UTC)

	for i := 0; i < 100; i++ {
		id := NewTransactionID(now)
		if !txnPattern.MatchString(id) {
			t.Fatalf("NewTransactionID() = %q, want TXN-YYYYMMDD-NNNNN", id)
		}
		if !strings.HasPrefix(id, "TXN-20260307-") {
			t.Fatalf("NewTransactionID() = %q, want date part 20260307", id)
		}
	}
}
