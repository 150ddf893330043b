// Package expiry classifies inventory items into dashboard buckets
// from their expiry date. The boundary rule lives here and nowhere
// else.
package expiry

import "time"

// Bucket is a derived classification. Buckets are computed on demand
// and never stored.
type Bucket string

const (
	Expired      Bucket = "expired"
	ExpiringSoon Bucket = "expiring_soon"
	ToReturn     Bucket = "to_return"
)

// DateLayout is the wire format for expiry dates.
const DateLayout = "2006-01-02"

// DefaultHorizonMonths is how far ahead "expiring soon" reaches.
const DefaultHorizonMonths = 5

// Classifier buckets expiry dates against a horizon measured in
// calendar months.
type Classifier struct {
	horizonMonths int
}

// NewClassifier creates a classifier with the given horizon. A
// non-positive horizon falls back to the default.
func NewClassifier(months int) *Classifier {
	if months <= 0 {
		months = DefaultHorizonMonths
	}
	return &Classifier{horizonMonths: months}
}

// HorizonMonths returns the configured horizon.
func (c *Classifier) HorizonMonths() int {
	return c.horizonMonths
}

// Classify buckets a single expiry date against today (truncated to
// midnight). The rule: expiry before today is Expired; from today up
// to and including today+horizon is ExpiringSoon; anything later is
// ToReturn. Horizon addition uses calendar months with the native
// normalization of time.AddDate, so Jan 31 + 5 months rolls over to
// Jul 1. ok is false when the date does not parse.
func (c *Classifier) Classify(today time.Time, expiryDate string) (Bucket, bool) {
	exp, err := ParseDate(expiryDate)
	if err != nil {
		return "", false
	}

	day := Midnight(today)
	horizon := day.AddDate(0, c.horizonMonths, 0)

	switch {
	case exp.Before(day):
		return Expired, true
	case !exp.After(horizon):
		return ExpiringSoon, true
	default:
		return ToReturn, true
	}
}

// IsExpired reports whether the date classifies as Expired. Unparsable
// dates are not expired.
func (c *Classifier) IsExpired(today time.Time, expiryDate string) bool {
	bucket, ok := c.Classify(today, expiryDate)
	return ok && bucket == Expired
}

// Midnight truncates t to the start of its calendar day, normalized to
// UTC so it compares cleanly against parsed expiry dates.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses an ISO calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
