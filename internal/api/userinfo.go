// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
)

// =============================================================================
// USER INFO
// =============================================================================

// UserInfo is the WordPress account behind the Bearer token.
type UserInfo struct {
	ID          int    `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// FetchUserInfo resolves the current token against the WordPress auth
// endpoint. Called once at startup to decide between backend-persisted and
// local-only conversation storage.
func (c *Client) FetchUserInfo(ctx context.Context) (UserInfo, error) {
	if c.config.WordPressURL == "" {
		return UserInfo{}, serverError(http.StatusNotFound, "WordPress URL is not configured")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return UserInfo{}, normalizeError(err)
	}

	url := c.config.WordPressURL + "/wp-json/herbi/v1/user"
	req, err := c.newRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		return UserInfo{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return UserInfo{}, normalizeError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return UserInfo{}, normalizeError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var failure struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(raw, &failure)
		return UserInfo{}, serverError(resp.StatusCode, failure.Message)
	}

	var info UserInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return UserInfo{}, &ActionError{
			Reason:     ReasonResponse,
			Message:    "failed to decode user info",
			StatusCode: resp.StatusCode,
			cause:      err,
		}
	}
	return info, nil
}
