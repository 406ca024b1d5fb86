package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// HTTPScheduleSink talks to the external schedule collaborator over its REST
// API. It is the only integration point between this engine and the
// schedule; nothing else reaches into schedule state.
type HTTPScheduleSink struct {
	BaseURL string
	HTTP    *http.Client
}

// NewHTTPScheduleSink creates a sink with a 10s per-call timeout.
func NewHTTPScheduleSink(baseURL string) *HTTPScheduleSink {
	return &HTTPScheduleSink{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// HasConflict reports whether userID already has a calendar entry on date.
func (s *HTTPScheduleSink) HasConflict(ctx context.Context, userID, date string) (bool, error) {
	endpoint := fmt.Sprintf("%s/schedule/conflicts?user_id=%s&date=%s",
		s.BaseURL, url.QueryEscape(userID), url.QueryEscape(date))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, err
	}

	resp, err := s.HTTP.Do(req)
	if err != nil {
		return false, fmt.Errorf("schedule conflict check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("schedule conflict check returned status %d", resp.StatusCode)
	}

	var response struct {
		Conflict bool `json:"conflict"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return false, fmt.Errorf("failed to decode conflict response: %w", err)
	}
	return response.Conflict, nil
}

// Upsert creates or updates the calendar entry for a confirmed group.
func (s *HTTPScheduleSink) Upsert(ctx context.Context, event ScheduleEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal schedule event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		s.BaseURL+"/schedule/events/"+url.PathEscape(event.EventID), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("schedule upsert failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("schedule upsert returned status %d", resp.StatusCode)
	}
	return nil
}

// Remove deletes the calendar entry for a dissolved group.
func (s *HTTPScheduleSink) Remove(ctx context.Context, eventID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		s.BaseURL+"/schedule/events/"+url.PathEscape(eventID), nil)
	if err != nil {
		return err
	}

	resp, err := s.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("schedule remove failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("schedule remove returned status %d", resp.StatusCode)
	}
	return nil
}
