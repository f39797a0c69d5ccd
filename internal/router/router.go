package router

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/aescanero/dago-node-renderer/internal/eval/cel"
)

// ErrNoRoute is returned when no rule matched and there is no fallback page
var ErrNoRoute = errors.New("no page matched")

// Path taken by a routing decision
const (
	PathRule     = "rule"
	PathFallback = "fallback"
)

// Config selects the page a render request renders
type Config struct {
	Rules    []Rule `json:"rules,omitempty" yaml:"rules,omitempty"`
	Fallback string `json:"fallback,omitempty" yaml:"fallback,omitempty"`
}

// Rule selects Page when Condition, a CEL expression over the page data
// bound to ctx, holds
type Rule struct {
	Condition string `json:"condition" yaml:"condition"`
	Page      string `json:"page" yaml:"page"`
}

// Result represents a page selection
type Result struct {
	Page      string `json:"page"`
	Reasoning string `json:"reasoning"`
	PathTaken string `json:"path_taken"`
}

// Router selects pages
type Router struct {
	celEvaluator *cel.Evaluator
	logger       *zap.Logger
}

// NewRouter creates a new router
func NewRouter(evaluator *cel.Evaluator, logger *zap.Logger) *Router {
	return &Router{
		celEvaluator: evaluator,
		logger:       logger,
	}
}

// Route picks the page of the first rule whose condition holds for data,
// or the fallback page
func (r *Router) Route(ctx context.Context, data map[string]interface{}, config *Config) (*Result, error) {
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	result, err := r.routeRules(ctx, data, config)
	if err != nil {
		r.logger.Error("routing failed", zap.Error(err))
		return nil, err
	}

	r.logger.Debug("routing decision",
		zap.String("page", result.Page),
		zap.String("path", result.PathTaken),
		zap.String("reasoning", result.Reasoning),
	)

	return result, nil
}

// validateConfig validates the routing configuration
func validateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("config is nil")
	}

	if len(config.Rules) == 0 && config.Fallback == "" {
		return fmt.Errorf("rules or a fallback page are required")
	}

	for i, rule := range config.Rules {
		if rule.Condition == "" {
			return fmt.Errorf("rule %d: condition is required", i)
		}
		if rule.Page == "" {
			return fmt.Errorf("rule %d: page is required", i)
		}
	}

	return nil
}
