// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the Herbie backend.
//
// The backend wraps every REST response in a {success, data} envelope and
// identifies records by Mongo-style "_id" fields; this package unwraps the
// envelope and normalizes ids before anything reaches the rest of the
// program. Failures come back as *ActionError values carrying the backend
// message and HTTP status, so callers can branch with errors.As without
// string matching.
package api
