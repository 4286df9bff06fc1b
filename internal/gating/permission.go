package gating

import (
	"fmt"
	"time"

	"TradeGate/internal/domain/models"
)

// Permission is the result of the strategy permission lookup. TradeCap of 0
// means unlimited.
type Permission struct {
	Allowed  bool
	Reason   string
	TradeCap int
}

// PermissionChecker is a pure lookup of which strategy may fire given the
// regime and the time of day. It holds no mutable state.
type PermissionChecker struct {
	cfg PermissionConfig
}

func NewPermissionChecker(cfg PermissionConfig) *PermissionChecker {
	return &PermissionChecker{cfg: cfg}
}

// Check resolves the permission for one candidate. Trend regimes allow every
// registered strategy until its cutoff; conditional regimes allow with a
// one-trade cap; every other regime denies.
func (p *PermissionChecker) Check(strategy string, day models.DayType, now time.Time, expiryDay bool) Permission {
	rule, ok := p.cfg.Strategies[strategy]
	if !ok {
		return Permission{Reason: fmt.Sprintf("strategy %q not registered", strategy)}
	}

	switch {
	case day == models.DayCleanTrend || day == models.DayNormalTrend:
		cutoff := rule.Cutoff
		if expiryDay && rule.ExpiryCutoff != 0 {
			cutoff = rule.ExpiryCutoff
		}
		if cutoff != 0 && cutoff.AtOrPast(now) {
			return Permission{Reason: fmt.Sprintf("strategy %q past its %s cutoff", strategy, cutoff)}
		}
		return Permission{Allowed: true}
	case day.Conditional():
		return Permission{Allowed: true, TradeCap: p.cfg.ConditionalCap}
	default:
		return Permission{Reason: fmt.Sprintf("%s regime disallows strategy %q", day, strategy)}
	}
}

// OscillatorBound checks the stricter conditional-regime oscillator bound.
// Returns "" when the candidate clears it.
func (p *PermissionChecker) OscillatorBound(dir models.Direction, osc float64) string {
	if dir == models.Long && osc < p.cfg.LongOscFloor {
		return fmt.Sprintf("oscillator %.1f below conditional floor %.1f", osc, p.cfg.LongOscFloor)
	}
	if dir == models.Short && osc > p.cfg.ShortOscCeiling {
		return fmt.Sprintf("oscillator %.1f above conditional ceiling %.1f", osc, p.cfg.ShortOscCeiling)
	}
	return ""
}
