// Copyright 2025 The passkeyd Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package api exposes the registration ceremony over HTTP with JSON bodies.
//
// Verification failures of every kind are collapsed to a uniform 401 so an
// unauthenticated caller cannot learn which check a forged ceremony failed;
// the failing check is only written to the structured log. Store failures
// surface as 500, distinct from rejections.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/passkeyd/passkeyd"
)

// Options configures the HTTP surface.
type Options struct {
	// AllowedOrigin, when set, enables CORS for the given browser origin.
	// Registration pages are typically served from a different origin than
	// the API.
	AllowedOrigin string

	// Logger receives internal failure detail. Defaults to slog.Default().
	Logger *slog.Logger
}

// NewHandler returns the registration API routes:
//
//	GET  /credentials?email=...  begin registration
//	POST /credentials            complete registration
func NewHandler(srv *passkeyd.Server, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &handler{srv: srv, logger: logger}

	r := chi.NewRouter()
	if opts.AllowedOrigin != "" {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{opts.AllowedOrigin},
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         3600,
		}))
	}
	r.Get("/credentials", h.beginRegistration)
	r.Post("/credentials", h.finishRegistration)
	return r
}

type handler struct {
	srv    *passkeyd.Server
	logger *slog.Logger
}

type apiError struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, apiError{Message: msg})
}

func (h *handler) beginRegistration(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	options, err := h.srv.BeginRegistration(r.Context(), email)
	switch {
	case errors.Is(err, passkeyd.ErrIdentityRegistered):
		writeError(w, http.StatusConflict, "identity "+email+" is already registered, log in instead")
	case err != nil:
		h.logger.Error("begin registration", "email", email, "err", err)
		writeError(w, http.StatusInternalServerError, "registration is unavailable")
	default:
		writeJSON(w, http.StatusOK, options)
	}
}

func (h *handler) finishRegistration(w http.ResponseWriter, r *http.Request) {
	var credential passkeyd.PublicKeyCredential
	if err := json.NewDecoder(r.Body).Decode(&credential); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if credential.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	err := h.srv.FinishRegistration(r.Context(), &credential)
	var storeError *passkeyd.StoreError
	switch {
	case err == nil:
		w.WriteHeader(http.StatusOK)
	case errors.As(err, &storeError):
		h.logger.Error("finish registration", "email", credential.Email, "err", err)
		writeError(w, http.StatusInternalServerError, "registration is unavailable")
	default:
		h.logger.Info("registration rejected", "email", credential.Email, "reason", err)
		writeError(w, http.StatusUnauthorized, "registration rejected")
	}
}
