package billing

import (
	"fmt"
	"math/rand"
	"time"
)

// GenerateInvoiceNumber returns INV-YYYYMMDD-NNN for the date of now with a
// random three digit suffix. Uniqueness is left to the store.
func GenerateInvoiceNumber(now time.Time, r *rand.Rand) string {
	return fmt.Sprintf("INV-%s-%03d", now.Format("20060102"), r.Intn(1000))
}
