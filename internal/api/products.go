// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/MillionMedia2/ask-herbie-interface/internal/model"
)

// =============================================================================
// PRODUCT CLASSIFICATION
// =============================================================================

// ClassifyResult is the product recommendation derived from one assistant
// answer. Unlike the CRUD endpoints, /classify-products responds with a
// flat document rather than the {success, data} envelope.
type ClassifyResult struct {
	Category string          `json:"category"`
	Count    int             `json:"count"`
	Products []model.Product `json:"products"`
}

// ClassifyProducts sends an assistant answer to the classifier and returns
// the matching store products. An empty Products slice is a valid result
// meaning nothing in the catalog matched.
func (c *Client) ClassifyProducts(ctx context.Context, message string) (ClassifyResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return ClassifyResult{}, normalizeError(err)
	}

	body := struct {
		Message string `json:"message"`
	}{Message: message}

	req, err := c.newRequest(ctx, http.MethodPost, c.config.BaseURL+"/classify-products", body)
	if err != nil {
		return ClassifyResult{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ClassifyResult{}, normalizeError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return ClassifyResult{}, normalizeError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var failure struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(raw, &failure)
		return ClassifyResult{}, serverError(resp.StatusCode, failure.Message)
	}

	var result ClassifyResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return ClassifyResult{}, &ActionError{
			Reason:     ReasonResponse,
			Message:    "failed to decode classifier response",
			StatusCode: resp.StatusCode,
			cause:      err,
		}
	}
	return result, nil
}
