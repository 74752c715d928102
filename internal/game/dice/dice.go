// Package dice provides the randomness used by chat games such as !roll.
package dice

import "go.uber.org/zap"

// Source is a provider of uniform random integers.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Roller draws from a Source and logs every draw at debug level.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewRoller creates a Roller that draws from src and logs to logger.
//
// Precondition: src and logger must be non-nil.
func NewRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Points returns a value in [0, limit]. A limit below zero is treated as zero.
//
// Postcondition: 0 <= result <= max(limit, 0).
func (r *Roller) Points(limit int) int {
	if limit < 0 {
		limit = 0
	}
	v := r.src.Intn(limit + 1)
	r.logger.Debug("dice roll", zap.Int("max", limit), zap.Int("result", v))
	return v
}
