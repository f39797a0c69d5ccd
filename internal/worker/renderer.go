package worker

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/aescanero/dago-libs/pkg/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aescanero/dago-node-renderer/internal/eval/template"
	"github.com/aescanero/dago-node-renderer/internal/helpers"
	"github.com/aescanero/dago-node-renderer/internal/router"
)

// ErrMissingPage is returned for a render request that names no page
var ErrMissingPage = errors.New("render request names no page")

// RenderRequest asks for one page to be rendered
type RenderRequest struct {
	RequestID   string                 `json:"request_id"`
	ExecutionID string                 `json:"execution_id,omitempty"`
	NodeID      string                 `json:"node_id,omitempty"`
	Page        string                 `json:"page"`
	Data        map[string]interface{} `json:"data,omitempty"`
	Locale      string                 `json:"locale,omitempty"`
	Routes      *router.Config         `json:"routes,omitempty"`
}

// RenderResult is a rendered page
type RenderResult struct {
	RequestID   string    `json:"request_id"`
	ExecutionID string    `json:"execution_id,omitempty"`
	NodeID      string    `json:"node_id,omitempty"`
	Page        string    `json:"page"`
	Reasoning   string    `json:"reasoning,omitempty"`
	HTML        string    `json:"html"`
	DurationMs  int64     `json:"duration_ms"`
	Timestamp   time.Time `json:"timestamp"`
}

// Renderer renders pages for the stream worker and the HTTP server
type Renderer struct {
	engine         *template.Engine
	router         *router.Router
	routes         *router.Config
	stateStore     ports.StateStorage
	resolveTargets bool
	timeout        time.Duration
	logger         *zap.Logger
}

// RendererOption configures a Renderer
type RendererOption func(*Renderer)

// WithStateStore lets requests that carry an execution id and no data render
// against the execution state
func WithStateStore(store ports.StateStorage) RendererOption {
	return func(r *Renderer) { r.stateStore = store }
}

// WithRouter lets requests without a page pick one from their routes
func WithRouter(rt *router.Router) RendererOption {
	return func(r *Renderer) { r.router = rt }
}

// WithDefaultRoutes sets the routes used by requests that carry neither a
// page nor routes
func WithDefaultRoutes(routes *router.Config) RendererOption {
	return func(r *Renderer) { r.routes = routes }
}

// WithResolveTargets rewrites data-target-behavior attributes in rendered pages
func WithResolveTargets(enabled bool) RendererOption {
	return func(r *Renderer) { r.resolveTargets = enabled }
}

// WithTimeout bounds each render. The deadline is checked whenever a page
// or layout partial is loaded or starts rendering; a single template that is
// already executing runs to completion.
func WithTimeout(d time.Duration) RendererOption {
	return func(r *Renderer) { r.timeout = d }
}

// NewRenderer creates a new renderer
func NewRenderer(engine *template.Engine, logger *zap.Logger, opts ...RendererOption) *Renderer {
	r := &Renderer{
		engine:  engine,
		timeout: 10 * time.Second,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render renders the requested page. A missing request id is generated.
// A request without a page renders the page its routes, or the default
// routes, select.
func (r *Renderer) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	routes := req.Routes
	if routes == nil {
		routes = r.routes
	}
	if req.Page == "" && routes == nil {
		return nil, ErrMissingPage
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()

	data, err := r.pageData(ctx, req)
	if err != nil {
		return nil, err
	}

	var reasoning string
	if req.Page == "" {
		if r.router == nil {
			return nil, fmt.Errorf("no router to select a page: %w", ErrMissingPage)
		}

		route, err := r.router.Route(ctx, data, routes)
		if err != nil {
			return nil, fmt.Errorf("failed to select page: %w", err)
		}
		req.Page = route.Page
		reasoning = route.Reasoning
	}

	html, err := r.engine.RenderPage(ctx, req.Page, data)
	if err != nil {
		return nil, err
	}

	if r.resolveTargets {
		html, err = helpers.ApplyTargets(html)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve link targets: %w", err)
		}
	}

	elapsed := time.Since(start)
	r.logger.Debug("rendered page",
		zap.String("request_id", req.RequestID),
		zap.String("page", req.Page),
		zap.Duration("duration", elapsed),
	)

	return &RenderResult{
		RequestID:   req.RequestID,
		ExecutionID: req.ExecutionID,
		NodeID:      req.NodeID,
		Page:        req.Page,
		Reasoning:   reasoning,
		HTML:        html,
		DurationMs:  elapsed.Milliseconds(),
		Timestamp:   time.Now().UTC(),
	}, nil
}

// pageData returns the data the page renders against: the request data, or
// the execution state when the request carries none. The request locale
// overrides the page lang field.
func (r *Renderer) pageData(ctx context.Context, req *RenderRequest) (map[string]interface{}, error) {
	data := req.Data
	if data == nil && req.ExecutionID != "" {
		if r.stateStore == nil {
			return nil, fmt.Errorf("no state store to load execution %s", req.ExecutionID)
		}

		st, err := r.stateStore.Load(ctx, req.ExecutionID)
		if err != nil {
			return nil, fmt.Errorf("failed to load state: %w", err)
		}
		data = st
	}

	out := make(map[string]interface{}, len(data)+1)
	maps.Copy(out, data)
	if req.Locale != "" {
		out["lang"] = req.Locale
	}

	return out, nil
}
