package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"google.golang.org/grpc"

	"github.com/danielpatrickdp/lexseg/internal/config"
	"github.com/danielpatrickdp/lexseg/internal/metrics"
	"github.com/danielpatrickdp/lexseg/internal/service"
	"github.com/danielpatrickdp/lexseg/internal/state"
)

// #region main
func main() {
	dbPath := envOr("LEXSEG_DB", "lexseg.db")
	grpcAddr := envOr("LEXSEG_ADDR", "localhost:50051")
	metricsAddr := envOr("LEXSEG_METRICS_ADDR", "localhost:9090")
	runID := envOr("LEXSEG_RUN", "")
	cacheSize, err := strconv.Atoi(envOr("LEXSEG_CACHE", strconv.Itoa(service.DefaultCacheSize)))
	if err != nil {
		log.Fatalf("invalid LEXSEG_CACHE: %v", err)
	}

	store, err := state.NewStore(dbPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	// Serve the active run unless one is named
	var run state.RunRecord
	if runID == "" {
		run, err = store.GetActive()
	} else {
		run, err = store.GetRun(runID)
	}
	if err != nil {
		log.Fatalf("no run to serve: %v", err)
	}
	if run.Status != state.StatusDone {
		log.Fatalf("run %s has not finished", run.RunID)
	}
	cfg, err := config.Parse([]byte(run.ConfigJSON))
	if err != nil {
		log.Fatalf("stored config of run %s: %v", run.RunID, err)
	}
	snap, err := store.LoadSnapshot(run.RunID)
	if err != nil {
		log.Fatalf("failed to load lexicon: %v", err)
	}

	rec := metrics.NewRecorder()
	srv, err := service.NewServer(run.Name, cfg, snap, rec, cacheSize)
	if err != nil {
		log.Fatalf("failed to build server: %v", err)
	}

	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		log.Fatalf("failed to listen on %s: %v", grpcAddr, err)
	}
	gs := grpc.NewServer()
	service.Register(gs, srv)

	mux := http.NewServeMux()
	mux.Handle("/metrics", rec.Handler())
	hs := &http.Server{Addr: metricsAddr, Handler: mux}
	go func() {
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("metrics server: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		gs.GracefulStop()
		hs.Shutdown(context.Background())
	}()

	log.Printf("Serving run %s (%s, %d words)", run.RunID, run.Name, srv.Lexicon().Len())
	log.Printf("  DB: %s | gRPC: %s | metrics: %s", dbPath, grpcAddr, metricsAddr)
	if err := gs.Serve(lis); err != nil {
		log.Fatalf("serve: %v", err)
	}
}

// #endregion main

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
