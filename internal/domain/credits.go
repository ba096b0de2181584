package domain

import "context"

type creditsKey struct{}

// Credits is the upstream credit balance read from response metadata.
// The handler puts a mutable pointer into the context before calling the service;
// the transport writes after each upstream response; the handler reads it for response headers.
type Credits struct {
	Remaining int
	Limit     int
	Known     bool // true once any upstream response carried the headers
}

// NewContextWithCredits returns a context with an embedded credits collector.
func NewContextWithCredits(ctx context.Context) (context.Context, *Credits) {
	c := &Credits{}
	return context.WithValue(ctx, creditsKey{}, c), c
}

// CreditsFromContext extracts the credits collector from context. Returns nil if not set.
func CreditsFromContext(ctx context.Context) *Credits {
	c, _ := ctx.Value(creditsKey{}).(*Credits)
	return c
}

// Record stores the latest balance. The last response wins.
func (c *Credits) Record(remaining, limit int) {
	if c != nil {
		c.Remaining = remaining
		c.Limit = limit
		c.Known = true
	}
}
