package auth

import "time"

// SetClock overrides the issuer clock in tests.
func (t *TokenIssuer) SetClock(now func() time.Time) { t.now = now }
