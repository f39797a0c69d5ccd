package router

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// routeRules evaluates the rules in order. A rule that fails to evaluate or
// does not yield a boolean is skipped.
func (r *Router) routeRules(ctx context.Context, data map[string]interface{}, config *Config) (*Result, error) {
	for i, rule := range config.Rules {
		r.logger.Debug("evaluating rule",
			zap.Int("rule_index", i),
			zap.String("condition", rule.Condition),
		)

		if r.celEvaluator == nil {
			return nil, fmt.Errorf("rule %d: expressions are disabled", i)
		}

		result, err := r.celEvaluator.Evaluate(ctx, rule.Condition, data)
		if err != nil {
			r.logger.Warn("rule evaluation error",
				zap.Int("rule_index", i),
				zap.String("condition", rule.Condition),
				zap.Error(err),
			)
			continue
		}

		matched, ok := result.(bool)
		if !ok {
			r.logger.Warn("rule condition did not return boolean",
				zap.Int("rule_index", i),
				zap.String("condition", rule.Condition),
				zap.Any("result", result),
			)
			continue
		}

		if matched {
			return &Result{
				Page:      rule.Page,
				Reasoning: fmt.Sprintf("matched rule %d: %s", i, rule.Condition),
				PathTaken: PathRule,
			}, nil
		}
	}

	if config.Fallback == "" {
		return nil, ErrNoRoute
	}

	return &Result{
		Page:      config.Fallback,
		Reasoning: "no rules matched",
		PathTaken: PathFallback,
	}, nil
}
