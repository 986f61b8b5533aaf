package dice

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/risus/internal/game/ruleset"
)

// Roller wraps a Source and logger to provide logged pool rolls.
// Every roll is logged at debug level with ruleset, faces and outcome.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// RollPool rolls a pool under policy and logs the result at debug level.
//
// Precondition: policy has been validated.
// Postcondition: result logged; returns the PoolRoll.
func (r *Roller) RollPool(pool, target int, policy ruleset.Policy) PoolRoll {
	result := RollPool(r.src, pool, target, policy)
	if ce := r.logger.Check(zapcore.DebugLevel, "pool roll"); ce != nil {
		ce.Write(
			zap.String("ruleset", result.Ruleset),
			zap.Int("pool", result.Pool),
			zap.Int("target", result.Target),
			zap.Ints("faces", result.Faces),
			zap.Int("successes", result.Successes),
			zap.Bool("succeeded", result.Succeeded()),
		)
	}
	return result
}
