// Package server wraps http.Server with graceful shutdown and environment
// configuration.
//
//	srv := server.New(":8080", server.WithLogger(log))
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(srv.Run(ctx, handler))
//
// NewFromConfig builds a server from SERVER_* environment variables,
// including optional TLS from a certificate/key file pair.
package server
