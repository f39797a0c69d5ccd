package cel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	e, err := NewEvaluator()
	require.NoError(t, err)
	return e
}

func TestTest(t *testing.T) {
	e := newEvaluator(t)
	data := map[string]interface{}{
		"user":  map[string]interface{}{"role": "admin", "age": 42},
		"items": []interface{}{1, 2, 3},
		"title": "Getting started",
	}

	tests := []struct {
		expr string
		want bool
	}{
		{"ctx.user.role == 'admin'", true},
		{"ctx.user.age > 50", false},
		{"size(ctx.items) == 3", true},
		{"ctx.title.startsWith('Getting')", true},
		{"has(ctx.missing)", false},
		{"2 in ctx.items", true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := e.Test(context.Background(), tt.expr, data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTestNotBoolean(t *testing.T) {
	e := newEvaluator(t)

	_, err := e.Test(context.Background(), "ctx.title", map[string]interface{}{"title": "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotBoolean))
}

func TestEvaluateErrors(t *testing.T) {
	e := newEvaluator(t)

	_, err := e.Evaluate(context.Background(), "ctx.user.", nil)
	assert.ErrorContains(t, err, "failed to compile expression")

	_, err = e.Evaluate(context.Background(), "ctx.missing.field == 1", nil)
	assert.ErrorContains(t, err, "evaluation failed")
}

func TestProgramCache(t *testing.T) {
	e := newEvaluator(t)

	_, err := e.Test(context.Background(), "true", nil)
	require.NoError(t, err)
	assert.Len(t, e.cache, 1)

	e.ClearCache()
	assert.Empty(t, e.cache)
}

func TestValidateExpression(t *testing.T) {
	e := newEvaluator(t)

	assert.NoError(t, e.ValidateExpression("ctx.a == 1"))
	assert.NoError(t, e.ValidateExpression("ctx.flag"))
	assert.Error(t, e.ValidateExpression("1 + 2"))
	assert.Error(t, e.ValidateExpression("ctx.a =="))
}
