package template

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mailgun/raymond/v2"
	"go.uber.org/zap"

	"github.com/aescanero/dago-node-renderer/internal/eval/cel"
	"github.com/aescanero/dago-node-renderer/internal/helpers"
	"github.com/aescanero/dago-node-renderer/internal/layout"
	"github.com/aescanero/dago-node-renderer/internal/partials"
)

// ErrExpressionsDisabled is returned when a template uses `when` on an engine without a CEL evaluator
var ErrExpressionsDisabled = errors.New("expressions are disabled")

// ErrHelperPanic wraps a panic raised while a helper was running
var ErrHelperPanic = errors.New("helper panicked")

// Private data keys carrying the render state through raymond
const (
	scopeKey  = "_layout"
	runKey    = "_render"
	uniqueKey = "_uniqueMaxId"
)

// Engine renders Handlebars page templates with the layout and page helpers
type Engine struct {
	cache     map[string]*raymond.Template
	partials  map[string]*raymond.Template
	source    partials.Source
	evaluator *cel.Evaluator
	locale    string
	clock     func() time.Time
	logger    *zap.Logger
	mu        sync.RWMutex
}

// Option configures an Engine
type Option func(*Engine)

// WithSource sets where partials not registered on the engine are loaded from
func WithSource(src partials.Source) Option {
	return func(e *Engine) { e.source = src }
}

// WithEvaluator enables the `when` helper
func WithEvaluator(ev *cel.Evaluator) Option {
	return func(e *Engine) { e.evaluator = ev }
}

// WithLocale sets the locale used when neither the call nor the page names one
func WithLocale(locale string) Option {
	return func(e *Engine) { e.locale = locale }
}

// WithClock sets the time source of the date helpers
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.clock = now }
}

// WithLogger sets the engine logger
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine creates a new template engine
func NewEngine(opts ...Option) *Engine {
	registerHelpers()

	engine := &Engine{
		cache:    make(map[string]*raymond.Template),
		partials: make(map[string]*raymond.Template),
		locale:   helpers.DefaultLocale,
		clock:    time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(engine)
	}

	return engine
}

// Render renders a template with the given data
func (e *Engine) Render(templateStr string, data interface{}) (string, error) {
	return e.RenderContext(context.Background(), templateStr, data)
}

// RenderContext renders a template with the given data. ctx is used when
// partials have to be loaded.
func (e *Engine) RenderContext(ctx context.Context, templateStr string, data interface{}) (string, error) {
	tmpl, err := e.getTemplate(templateStr)
	if err != nil {
		return "", fmt.Errorf("failed to compile template: %w", err)
	}

	if data == nil {
		data = map[string]interface{}{}
	}

	r := &render{engine: e, ctx: ctx}
	frame := raymond.NewDataFrame()
	frame.Set(scopeKey, layout.NewContext(data))
	frame.Set(runKey, r)

	result, err := e.exec(tmpl, data, frame)
	if err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}

	return result, nil
}

// RenderPage renders the partial name as a top-level page: it starts a new
// layout chain, as `embed` does.
func (e *Engine) RenderPage(ctx context.Context, name string, data interface{}) (result string, err error) {
	defer recoverPanic(&err)

	r := &render{engine: e, ctx: ctx}
	result, err = layout.NewContext(data).Embed(r.resolver(nil), name, nil)
	if err != nil {
		return "", fmt.Errorf("failed to render page %s: %w", name, err)
	}

	return result, nil
}

// RegisterPartial compiles source and registers it under name. Registered
// partials take precedence over the engine source.
func (e *Engine) RegisterPartial(name, source string) error {
	tmpl, err := e.getTemplate(source)
	if err != nil {
		return fmt.Errorf("failed to compile partial %s: %w", name, err)
	}

	e.RegisterPartialTemplate(name, tmpl)
	return nil
}

// RegisterPartialTemplate registers a compiled template under name. It must
// have been compiled by this engine (see Compile) for the page helpers to
// see their calls normalized.
func (e *Engine) RegisterPartialTemplate(name string, tmpl *raymond.Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.partials[name] = tmpl
}

// Compile compiles a template the way the engine does before rendering it
func (e *Engine) Compile(templateStr string) (*raymond.Template, error) {
	return e.getTemplate(templateStr)
}

// getTemplate gets a compiled template from cache or compiles it
func (e *Engine) getTemplate(templateStr string) (*raymond.Template, error) {
	e.mu.RLock()
	if tmpl, ok := e.cache[templateStr]; ok {
		e.mu.RUnlock()
		return tmpl, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if tmpl, ok := e.cache[templateStr]; ok {
		return tmpl, nil
	}

	tmpl, err := raymond.Parse(normalize(templateStr, signatures))
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	e.cache[templateStr] = tmpl

	return tmpl, nil
}

// ValidateTemplate validates a template without rendering it
func (e *Engine) ValidateTemplate(templateStr string) error {
	_, err := raymond.Parse(normalize(templateStr, signatures))
	return err
}

// ClearCache clears the compiled template cache. Registered partials are kept.
func (e *Engine) ClearCache() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache = make(map[string]*raymond.Template)
}

// partial returns the template registered or loadable under name
func (e *Engine) partial(ctx context.Context, name string) (*raymond.Template, error) {
	e.mu.RLock()
	tmpl, ok := e.partials[name]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	if e.source == nil {
		return nil, layout.MissingPartial(name)
	}

	src, err := e.source.Load(ctx, name)
	if errors.Is(err, partials.ErrNotFound) {
		return nil, layout.MissingPartial(name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load partial %s: %w", name, err)
	}

	e.logger.Debug("Loaded partial", zap.String("partial", name))

	tmpl, err = e.getTemplate(src)
	if err != nil {
		return nil, fmt.Errorf("failed to compile partial %s: %w", name, err)
	}
	return tmpl, nil
}

func (e *Engine) exec(tmpl *raymond.Template, data interface{}, frame *raymond.DataFrame) (result string, err error) {
	defer recoverPanic(&err)
	return tmpl.ExecWith(data, frame)
}

// recoverPanic turns what raymond lets through (runtime errors and
// non-error panics from reflection) into an error
func recoverPanic(errp *error) {
	if r := recover(); r != nil {
		if err, ok := r.(error); ok {
			*errp = fmt.Errorf("%w: %w", ErrHelperPanic, err)
			return
		}
		*errp = fmt.Errorf("%w: %v", ErrHelperPanic, r)
	}
}

// render is the per-render state helpers reach through the private data frame
type render struct {
	engine *Engine
	ctx    context.Context
}

func (r *render) locale() string {
	if r == nil || r.engine.locale == "" {
		return helpers.DefaultLocale
	}
	return r.engine.locale
}

func (r *render) now() time.Time {
	if r == nil {
		return time.Now()
	}
	return r.engine.clock()
}

func (r *render) when(expression string, data map[string]interface{}) (bool, error) {
	if r == nil || r.engine.evaluator == nil {
		return false, ErrExpressionsDisabled
	}
	return r.engine.evaluator.Test(r.ctx, expression, data)
}

// resolver resolves layout partials for this render. Partials render with a
// private data frame derived from parent. The render context is checked
// before each partial loads and renders, since raymond does not see it.
func (r *render) resolver(parent *raymond.DataFrame) layout.Resolver {
	return layout.ResolverFunc(func(name string) (layout.Partial, error) {
		if r == nil {
			return nil, layout.MissingPartial(name)
		}
		if err := r.ctx.Err(); err != nil {
			return nil, fmt.Errorf("render of %s stopped: %w", name, err)
		}

		tmpl, err := r.engine.partial(r.ctx, name)
		if err != nil {
			return nil, err
		}

		return layout.PartialFunc(func(c *layout.Context) (string, error) {
			frame := raymond.NewDataFrame()
			if parent != nil {
				frame = parent.Copy()
			}
			if err := r.ctx.Err(); err != nil {
				return "", fmt.Errorf("render of %s stopped: %w", name, err)
			}
			frame.Set(scopeKey, c)
			frame.Set(runKey, r)
			return tmpl.ExecWith(c.This(), frame)
		}), nil
	})
}
