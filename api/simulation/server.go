package simulation

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// Serve runs handler on addr until ctx is canceled, then shuts down within timeout.
func Serve(ctx context.Context, addr string, handler http.Handler, timeout time.Duration) error {
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
