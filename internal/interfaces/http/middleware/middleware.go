// Package middleware contains the HTTP middleware units of the apikit
// pipeline. Each unit is a constructor returning a gin.HandlerFunc; units
// short-circuit by writing the normalized error envelope and aborting the
// handler chain.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/quarkgate/apikit/pkg/errors"
)

// abortWithError terminates the request with the normalized error envelope.
func abortWithError(c *gin.Context, appErr *errors.AppError) {
	c.AbortWithStatusJSON(appErr.Status, appErr.Envelope(c.Request.Context()))
}

// Chain is an ordered sequence of middleware units. Order is significant:
// units run top to bottom on the way in and bottom to top on the way out.
type Chain struct {
	units []gin.HandlerFunc
}

// NewChain builds a chain from the given units.
func NewChain(units ...gin.HandlerFunc) Chain {
	return Chain{units: append([]gin.HandlerFunc(nil), units...)}
}

// Append returns a new chain with the extra units added at the end.
func (ch Chain) Append(units ...gin.HandlerFunc) Chain {
	merged := make([]gin.HandlerFunc, 0, len(ch.units)+len(units))
	merged = append(merged, ch.units...)
	merged = append(merged, units...)
	return Chain{units: merged}
}

// Handlers returns the units in registration order.
func (ch Chain) Handlers() []gin.HandlerFunc {
	return append([]gin.HandlerFunc(nil), ch.units...)
}

// Apply registers every unit on the engine in order.
func (ch Chain) Apply(engine *gin.Engine) {
	for _, unit := range ch.units {
		engine.Use(unit)
	}
}
