// Package client is the UI-facing side of the lunch-coordination engine: a
// REST client with bounded retry, an optimistic proposal cache reconciled
// against the server, and an adaptive polling scheduler.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"lunchmate_server/models"

	"github.com/cenkalti/backoff/v5"
)

// APIError carries a non-2xx response. 4xx responses are never retried.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// IsAlreadyResolved reports whether err is the server telling us the
// proposal changed state before our action arrived. The UI shows a gentle
// "already responded" note and refreshes.
func IsAlreadyResolved(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict
}

// linearBackOff waits RetryInterval after the first failure, twice that
// after the second, and so on.
type linearBackOff struct {
	step    time.Duration
	attempt int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.attempt++
	return time.Duration(b.attempt) * b.step
}

func (b *linearBackOff) Reset() { b.attempt = 0 }

// Client calls the backend proposal API. Transport failures and 5xx
// responses are retried a bounded number of times with a linearly growing
// interval; every mutation is idempotent on the server, so resending is
// safe.
type Client struct {
	BaseURL       string
	HTTP          *http.Client
	RetryInterval time.Duration
	MaxAttempts   uint
}

// New creates a client with an 8s per-call timeout and 3 attempts.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:       baseURL,
		HTTP:          &http.Client{Timeout: 8 * time.Second},
		RetryInterval: 750 * time.Millisecond,
		MaxAttempts:   3,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	operation := func() ([]byte, error) {
		var reader io.Reader
		if body != nil {
			payload, err := json.Marshal(body)
			if err != nil {
				return nil, backoff.Permanent(fmt.Errorf("failed to marshal request: %w", err))
			}
			reader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.HTTP.Do(req)
		if err != nil {
			return nil, err // transport error, retryable
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode >= 500 {
			return nil, &APIError{Status: resp.StatusCode, Message: string(data)}
		}
		if resp.StatusCode >= 400 {
			apiErr := &APIError{Status: resp.StatusCode, Message: string(data)}
			var decoded struct {
				Error string `json:"error"`
			}
			if json.Unmarshal(data, &decoded) == nil && decoded.Error != "" {
				apiErr.Message = decoded.Error
			}
			return nil, backoff.Permanent(apiErr)
		}
		return data, nil
	}

	data, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(&linearBackOff{step: c.RetryInterval}),
		backoff.WithMaxTries(c.MaxAttempts))
	if err != nil {
		return err
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// SuggestedGroups fetches the ranked candidate groups for a date.
func (c *Client) SuggestedGroups(ctx context.Context, date string) ([]models.CandidateGroup, error) {
	var groups []models.CandidateGroup
	if err := c.do(ctx, http.MethodGet, "/api/suggestions/"+url.PathEscape(date), nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// Propose creates a proposal for proposer plus recipients on date.
func (c *Client) Propose(ctx context.Context, proposerID string, recipientIDs []string, date string) (models.Proposal, error) {
	request := map[string]interface{}{
		"proposer_id":   proposerID,
		"recipient_ids": recipientIDs,
		"proposed_date": date,
	}
	var proposal models.Proposal
	if err := c.do(ctx, http.MethodPost, "/api/proposals", request, &proposal); err != nil {
		return models.Proposal{}, err
	}
	return proposal, nil
}

// Accept records the caller's acceptance.
func (c *Client) Accept(ctx context.Context, proposalID, userID string) (models.Proposal, error) {
	var proposal models.Proposal
	err := c.do(ctx, http.MethodPost, "/api/proposals/"+url.PathEscape(proposalID)+"/accept",
		map[string]string{"user_id": userID}, &proposal)
	if err != nil {
		return models.Proposal{}, err
	}
	return proposal, nil
}

// Reject declines the proposal, cancelling it for everyone.
func (c *Client) Reject(ctx context.Context, proposalID, userID string) (models.Proposal, error) {
	var proposal models.Proposal
	err := c.do(ctx, http.MethodPost, "/api/proposals/"+url.PathEscape(proposalID)+"/reject",
		map[string]string{"user_id": userID}, &proposal)
	if err != nil {
		return models.Proposal{}, err
	}
	return proposal, nil
}

// Cancel withdraws the caller's own pending proposal.
func (c *Client) Cancel(ctx context.Context, proposalID, employeeID string) (models.Proposal, error) {
	var proposal models.Proposal
	err := c.do(ctx, http.MethodPost, "/api/proposals/"+url.PathEscape(proposalID)+"/cancel",
		map[string]string{"employee_id": employeeID}, &proposal)
	if err != nil {
		return models.Proposal{}, err
	}
	return proposal, nil
}

// MyProposals fetches the caller's sent and received proposals.
func (c *Client) MyProposals(ctx context.Context, employeeID string) (sent []models.Proposal, received []models.Proposal, err error) {
	var response struct {
		SentProposals     []models.Proposal `json:"sent_proposals"`
		ReceivedProposals []models.Proposal `json:"received_proposals"`
	}
	err = c.do(ctx, http.MethodGet, "/api/proposals/mine?employee_id="+url.QueryEscape(employeeID), nil, &response)
	if err != nil {
		return nil, nil, err
	}
	return response.SentProposals, response.ReceivedProposals, nil
}

// ConfirmedGroups fetches the caller's confirmed lunch groups.
func (c *Client) ConfirmedGroups(ctx context.Context, employeeID string) ([]models.ConfirmedGroup, error) {
	var groups []models.ConfirmedGroup
	err := c.do(ctx, http.MethodGet, "/api/groups?employee_id="+url.QueryEscape(employeeID), nil, &groups)
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// LeaveGroup removes the caller from a confirmed group.
func (c *Client) LeaveGroup(ctx context.Context, groupID, employeeID string) error {
	return c.do(ctx, http.MethodPost, "/api/groups/"+url.PathEscape(groupID)+"/leave",
		map[string]string{"employee_id": employeeID}, nil)
}
