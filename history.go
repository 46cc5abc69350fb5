package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
)

const historyPageSize = 200

type historyPage struct {
	Total    int              `json:"total"`
	Sessions []*playerSession `json:"sessions"`
}

var historyHTTP = &http.Client{Timeout: 30 * time.Second}

// fetchHistory pulls the paginated list of terminal sessions once per live
// connection, after the init snapshot. A failure leaves the map with live
// sessions only, which is degraded but functional; no retry here.
func fetchHistory(ctx context.Context) {
	offset := 0
	merged := 0
	for {
		page, err := fetchHistoryPage(ctx, historyPageSize, offset)
		if err != nil {
			logError("history fetch: %v", err)
			return
		}
		merged += mergeHistorical(page.Sessions)
		offset += len(page.Sessions)
		if len(page.Sessions) == 0 || offset >= page.Total {
			break
		}
	}
	seedBoundsFromSessions(currentDim())
	go prefetchBoundsTiles(currentDim())
	logDebug("history: merged %d past sessions", merged)
}

func fetchHistoryPage(ctx context.Context, limit, offset int) (*historyPage, error) {
	q := url.Values{}
	q.Set("token", authToken)
	q.Set("limit", fmt.Sprint(limit))
	q.Set("offset", fmt.Sprint(offset))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/api/sessions?%s", serverHTTPBase(), q.Encode()), nil)
	if err != nil {
		return nil, err
	}
	resp, err := historyHTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET sessions: %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var page historyPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("decode sessions: %w", err)
	}
	return &page, nil
}

// mergeHistorical adds terminal sessions to the map. The merge is additive
// only: an id already present (live or previously merged) is never
// overwritten, so a late-arriving historical duplicate cannot clobber a live
// session's state.
func mergeHistorical(list []*playerSession) int {
	sessionsMu.Lock()
	defer sessionsMu.Unlock()
	added := 0
	for _, s := range list {
		if s == nil || s.ID == "" {
			continue
		}
		if _, ok := sessions[s.ID]; ok {
			continue
		}
		s.Active = false
		sessions[s.ID] = s
		added++
	}
	return added
}
