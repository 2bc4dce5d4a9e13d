// Package server runs an http.Server with graceful shutdown for
// long-lived streaming endpoints.
//
// # Basic Usage
//
//	srv := server.New(":8080",
//		server.WithLogger(log),
//		server.WithShutdownTimeout(10*time.Second),
//		server.WithOnShutdown(func() { subject.SendCompletion(stream.Finished) }),
//	)
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(srv.Run(ctx, mux))
//	if err := g.Wait(); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// # Configuration
//
// Config is read from the environment with core/config:
//
//	type Config struct {
//		Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
//		ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
//		WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"0s"`
//		IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
//		ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
//		MaxHeaderBytes  int           `env:"HTTP_MAX_HEADER_BYTES" envDefault:"1048576"`
//	}
//
//	srv, err := server.NewFromConfig(cfg, server.WithLogger(log))
//
// WriteTimeout defaults to zero because it would cut off streaming
// responses; websocket writers set per-frame deadlines instead.
//
// # Shutdown
//
// Stop calls http.Server.Shutdown, which waits for in-flight requests but
// not for hijacked connections. Callbacks registered with WithOnShutdown run
// when shutdown starts and should complete any streams still being served,
// so their handlers write a close frame and return.
//
// Listening on port 0 is supported; Addr reports the bound address once
// Ready is closed.
package server
