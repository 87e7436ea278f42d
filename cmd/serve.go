package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/riverscapes/watershed-cli/internal/topology"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve contributing-area queries over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		// The topology is materialized once at startup; handlers share it
		// read-only.
		topo, err := loadTopology(ctx, st)
		if err != nil {
			return err
		}

		zap.L().Info("topology loaded", zap.Int("units", topo.Len()))

		mux := http.NewServeMux()

		mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]any{"status": "ok", "units": topo.Len()})
		})

		mux.HandleFunc("GET /contributing-area", contribHandler(topo))

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// contribHandler answers GET /contributing-area?huc8=XXXXXXXX.
func contribHandler(topo *topology.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		huc8 := r.URL.Query().Get("huc8")
		if huc8 == "" {
			http.Error(w, `{"error":"huc8 is required"}`, http.StatusBadRequest)
			return
		}

		results, err := topo.ContributingArea(huc8)
		if err != nil {
			if errors.Is(err, topology.ErrInvalidPrefix) {
				http.Error(w, `{"error":"huc8 must be exactly 8 characters"}`, http.StatusBadRequest)
				return
			}
			zap.L().Error("contributing-area query failed", zap.String("huc8", huc8), zap.Error(err))
			http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"huc8":          huc8,
			"contributions": results,
		})
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
