// Rondod — rendezvous server entry point.
//
// It hosts the signaling endpoint that lets exactly two peers discover
// each other through a named room and exchange the offer/answer/candidate
// messages needed to establish a direct WebRTC connection. Rooms live in
// memory and vanish when their last member leaves.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/pterm/pterm"

	"github.com/rondo-dev/rondo/internal/config"
	"github.com/rondo-dev/rondo/internal/server"
	"github.com/rondo-dev/rondo/internal/util"
)

var version = "dev"

func main() {
	// Root context — cancelled on Ctrl+C.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := config.Load()

	addr := flag.String("addr", cfg.ListenAddr, "Listen address")
	debugMode := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if *debugMode {
		util.EnableDebug()
	}

	pterm.Info.Println(fmt.Sprintf("Rondod — v%s", version))
	pterm.Println()

	hub := server.NewHub()
	go hub.Run(ctx)
	util.StartStatsReporter(ctx)

	srv := &http.Server{
		Addr:    *addr,
		Handler: server.NewRouter(hub),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	util.LogInfo("rendezvous server listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		util.LogError("server error: %v", err)
		os.Exit(1)
	}

	util.LogInfo("server stopped")
}
