package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wolfeidau/roomzy/internal/models"
)

const refreshKey = "refresh"

// refresh obtains a new access token. Concurrent callers share a single
// in-flight refresh; a caller whose token was already rotated by someone else
// gets the current token without calling the backend.
func (c *Client) refresh(ctx context.Context, staleToken string) (string, error) {
	if current := c.tokens.AccessToken(); current != "" && current != staleToken {
		log.Debug().Msg("access token already rotated, skipping refresh")
		return current, nil
	}

	ch := c.refreshGroup.DoChan(refreshKey, func() (any, error) {
		// A refresh may have completed between the check above and here
		if current := c.tokens.AccessToken(); current != "" && current != staleToken {
			return current, nil
		}

		// Detached from the first caller's cancellation, other waiters depend on it
		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.refreshHTTP.Timeout)
		defer cancel()

		return c.doRefresh(refreshCtx)
	})

	select {
	case res := <-ch:
		if res.Shared {
			c.metrics.RefreshSharedTotal.Add(ctx, 1)
		}
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// doRefresh exchanges the refresh token for a new pair and persists both halves.
func (c *Client) doRefresh(ctx context.Context) (string, error) {
	refreshToken := c.tokens.RefreshToken()
	if refreshToken == "" {
		return "", ErrNoRefreshToken
	}

	c.metrics.RefreshTotal.Add(ctx, 1)
	started := time.Now()

	tokens, err := c.postRefresh(ctx, refreshToken)
	if err != nil {
		c.metrics.RefreshFailuresTotal.Add(ctx, 1)
		return "", err
	}

	if err := c.tokens.SetTokens(tokens.AccessToken, tokens.RefreshToken); err != nil {
		c.metrics.RefreshFailuresTotal.Add(ctx, 1)
		return "", err
	}

	log.Debug().Dur("duration", time.Since(started)).Msg("access token refreshed")

	return tokens.AccessToken, nil
}

func (c *Client) postRefresh(ctx context.Context, refreshToken string) (*models.Tokens, error) {
	body, err := json.Marshal(models.RefreshTokenRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal refresh request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+RefreshTokenPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.refreshHTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("%w: %v", ErrRefreshFailed, decodeError(resp))
	}

	var envelope models.Response[models.Empty]
	if err := decodeResponse(resp, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}

	if !envelope.Success || envelope.Tokens == nil || envelope.Tokens.AccessToken == "" {
		return nil, fmt.Errorf("%w: response carried no tokens", ErrRefreshFailed)
	}

	return envelope.Tokens, nil
}
