// Package worker implements the render worker lifecycle and Redis Streams integration.
//
// The worker consumes render requests from a Redis stream, renders the named
// page and publishes the HTML to the result stream. Failed renders are
// published to the error stream. Every message is acknowledged.
//
// Example usage:
//
//	cfg, _ := config.Load()
//	redisClient := redis.NewClient(cfg.RedisOptions())
//	engine := template.NewEngine(template.WithSource(source))
//
//	renderer := worker.NewRenderer(engine, logger,
//	    worker.WithStateStore(worker.NewRedisStateStore(redisClient, logger)),
//	    worker.WithResolveTargets(cfg.ResolveTargets),
//	)
//
//	w := worker.NewWorker(cfg, redisClient, renderer, logger)
//	if err := w.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Stop()
//
// A request on the work stream carries its JSON in the `data` field:
//
//	{"request_id": "r-1", "page": "pages/home", "data": {"title": "Home"}, "locale": "fr"}
//
// A request with an execution_id and no data renders against the graph state
// stored for that execution. A request without a page selects one through
// its routes (see package router):
//
//	{"data": {"role": "admin"}, "routes": {"rules": [{"condition": "ctx.role == 'admin'", "page": "pages/admin"}], "fallback": "pages/home"}}
//
// Health checks and previews are served by a separate HTTP server:
//
//	server := worker.NewServer(8082, redisClient, renderer, logger)
//	server.Start()
//	defer server.Stop()
//
//	// GET  /health
//	// GET  /ready
//	// POST /render/pages/home?lang=fr  (body: page data as JSON)
package worker
