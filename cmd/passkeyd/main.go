// Copyright 2025 The passkeyd Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Command passkeyd serves the passwordless registration API over HTTP,
// persisting identities and issued challenges in a SQLite database.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/passkeyd/passkeyd"
	"github.com/passkeyd/passkeyd/api"
	"github.com/passkeyd/passkeyd/sqlite"
)

func main() {
	var (
		addr       string
		dbPath     string
		origin     string
		rpID       string
		rpName     string
		corsOrigin string
		debug      bool
	)

	flag.StringVar(&addr, "addr", "localhost:8080",
		"Address to listen on.")
	flag.StringVar(&dbPath, "db", "passkeyd.db",
		"Path to the SQLite database.")
	flag.StringVar(&origin, "origin", "http://localhost:8080",
		"Canonical web origin client ceremonies must report.")
	flag.StringVar(&rpID, "rp-id", "",
		"Relying Party ID. Defaults to the origin's host.")
	flag.StringVar(&rpName, "rp-name", "passkeyd",
		"Relying Party display name.")
	flag.StringVar(&corsOrigin, "cors-origin", "http://localhost:8000",
		"Browser origin allowed to call the API. Empty disables CORS.")
	flag.BoolVar(&debug, "debug", false,
		"Enable debug logging.")
	flag.Parse()

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := run(addr, dbPath, origin, rpID, rpName, corsOrigin, logger); err != nil {
		logger.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run(addr, dbPath, origin, rpID, rpName, corsOrigin string, logger *slog.Logger) error {
	if rpID == "" {
		u, err := url.Parse(origin)
		if err != nil || u.Hostname() == "" {
			return fmt.Errorf("cannot derive rp id from origin %q", origin)
		}
		rpID = u.Hostname()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.Open(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("closing store", "err", err)
		}
	}()

	// Expired challenges never verify; this just bounds table growth.
	go func() {
		t := time.NewTicker(time.Minute)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if err := store.GC(ctx); err != nil {
					logger.Warn("challenge gc", "err", err)
				}
			}
		}
	}()

	srv, err := passkeyd.NewServer(&passkeyd.Config{
		Origin:          origin,
		RPID:            rpID,
		RPName:          rpName,
		ChallengeLength: 16,
		CredentialAlgs:  []int{passkeyd.COSEAlgRS256, passkeyd.COSEAlgES256},
	}, store)
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           api.NewHandler(srv, api.Options{AllowedOrigin: corsOrigin, Logger: logger}),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.ListenAndServe()
	}()
	logger.Info("listening", "addr", addr, "origin", origin, "rp_id", rpID)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
