package reservation

import (
	"fmt"
	"strings"
	"time"
)

// OrderCodePrefix starts every order code.
const OrderCodePrefix = "RNT"

// SequencePeriod is the per-month bucket used for order numbering, e.g. "2026-10".
func SequencePeriod(t time.Time) string {
	return t.Format("2006-01")
}

// FormatOrderCode builds a human-readable code such as RNT-1026-0042 from the
// booking month and the month's sequence number. Uniqueness is enforced by
// the ledger, not by this function.
func FormatOrderCode(prefix string, t time.Time, seq int) string {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		prefix = OrderCodePrefix
	}
	return fmt.Sprintf("%s-%02d%02d-%04d", prefix, int(t.Month()), t.Year()%100, seq)
}
