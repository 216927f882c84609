// Package app assembles the statsweb report browser: it wires the report
// and health services, the chi router with its middleware chain, and the
// HTTP server.
//
// # Middleware Order
//
//	RequestID → RealIP → OTel → StructuredLogger → Recoverer → Timeout →
//	SecurityHeaders → RateLimiter
//
// /metrics sits outside the group so scrapes are neither rate limited nor
// counted as requests. /api/ws sits outside it too: the upgrade needs the
// raw connection.
//
// # Live Updates
//
// When Server.ReportPoll is positive a ReportWatcher polls the engine
// outputs and publishes report:updated and report:removed events through
// the websocket hub to every /api/ws subscriber.
//
// # Usage
//
//	a, err := app.NewApplication(cfg, logger, providers)
//	if err != nil {
//	    return err
//	}
//	return a.Run(ctx)
//
// # Graceful Shutdown
//
// Run returns after SIGINT, SIGTERM, cancellation of its context, or a
// listener failure. The watcher and hub stop first, in-flight requests get
// Server.ShutdownTimeout to finish, then the OpenTelemetry providers are
// flushed. The package never calls
// os.Exit; the main function controls the exit code.
package app
