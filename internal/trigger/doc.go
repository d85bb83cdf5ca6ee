// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package trigger is the inbound question surface: free text handed to the
// client from outside (a CLI argument, or a spool file written by a host
// integration and picked up by a file watcher).
//
// A trigger only starts a conversation when it is a real question: bare
// launcher-button labels ("Ask Herbie" and its misspellings) are filtered
// out, and each (question, nonce) pair is processed at most once per ledger
// lifetime so a stale trigger re-presented after a restart is ignored.
package trigger
