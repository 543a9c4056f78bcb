// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (status,
duration_ms). The wrapped writer still implements http.Flusher, so
event streams work behind it.

# CORS Middleware

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows methods GET, POST, PATCH, OPTIONS with headers Content-Type and
X-Admin-Key.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

Parse and validate a request body in one step:

	var req models.ClockRequest
	if !middleware.ParseAndValidate(w, r, &req) {
		return
	}

Validation uses the struct's validate tags and reports fields by their JSON
names, e.g. "crew_member_id: required".

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Used for hashing the submitting device's address onto attendance events.
*/
package middleware
