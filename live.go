package main

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

// wireMessage is the envelope for every frame on the live channel. The first
// inbound frame after a connect is always "init".
type wireMessage struct {
	Type string `json:"type"`

	// init
	Sessions  []*playerSession `json:"sessions,omitempty"`
	WorldTime int64            `json:"worldTime,omitempty"`

	// session_start
	Session *playerSession `json:"session,omitempty"`

	// session_end / route_point
	ID      string        `json:"id,omitempty"`
	EndedAt int64         `json:"endedAt,omitempty"`
	Stats   *sessionStats `json:"stats,omitempty"`
	Point   *worldPoint   `json:"point,omitempty"`

	// command_response
	OK      bool   `json:"ok,omitempty"`
	Message string `json:"message,omitempty"`

	// outbound teleport / refresh_tiles
	Target string `json:"target,omitempty"`
	Dim    string `json:"dim,omitempty"`
}

type connState int

const (
	stateDisconnected connState = iota
	stateConnecting
	stateConnected
)

const (
	reconnectBase = time.Second
	reconnectCap  = 30 * time.Second
)

// liveClient owns the persistent websocket to the tracking server: connect,
// ordered message application, reconnection with exponential backoff, and
// outbound command sends. All session-map writes funnel through here.
type liveClient struct {
	mu         sync.Mutex
	conn       *websocket.Conn
	state      connState
	attempts   int
	retryTimer *time.Timer
	deliberate bool

	// historyDone guards the one-shot historical fetch per connection.
	historyDone bool
}

var live = &liveClient{}

// backoffDelay returns the reconnect delay for the given consecutive failure
// count: 1s, 2s, 4s, ... capped at 30s.
func backoffDelay(attempts int) time.Duration {
	d := reconnectBase << attempts
	if d > reconnectCap || d <= 0 {
		d = reconnectCap
	}
	return d
}

func liveURL() string {
	q := url.Values{}
	q.Set("token", authToken)
	return fmt.Sprintf("%s/ws?%s", serverWSBase(), q.Encode())
}

// Connect opens the live channel. Calls while already connecting or connected
// are ignored; only one attempt is ever in flight.
func (c *liveClient) Connect(ctx context.Context) {
	c.mu.Lock()
	if c.state != stateDisconnected {
		c.mu.Unlock()
		return
	}
	c.state = stateConnecting
	c.deliberate = false
	c.mu.Unlock()

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, resp, err := dialer.DialContext(ctx, liveURL(), nil)
	if resp != nil {
		resp.Body.Close()
	}
	if err != nil {
		logError("live connect: %v", err)
		c.mu.Lock()
		c.state = stateDisconnected
		c.mu.Unlock()
		c.scheduleReconnect(ctx)
		return
	}

	if !c.adoptConn(conn) {
		// Close raced the dial; the channel is being torn down for good.
		conn.Close()
		return
	}
	consoleMessage("Connected to tracking server.")

	go c.readLoop(ctx, conn)
}

// adoptConn commits a freshly-dialed connection unless a deliberate close
// happened while the dial was in flight.
func (c *liveClient) adoptConn(conn *websocket.Conn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deliberate {
		c.state = stateDisconnected
		return false
	}
	c.conn = conn
	c.state = stateConnected
	c.attempts = 0
	c.historyDone = false
	return true
}

func (c *liveClient) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			deliberate := websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
			c.mu.Lock()
			if c.conn == conn {
				c.conn = nil
				c.state = stateDisconnected
				deliberate = deliberate || c.deliberate
			} else {
				// A manual reconnect already replaced this connection.
				deliberate = true
			}
			c.mu.Unlock()
			if deliberate || ctx.Err() != nil {
				logDebug("live channel closed")
				return
			}
			logError("live read: %v", err)
			c.scheduleReconnect(ctx)
			return
		}
		c.handleMessage(ctx, data)
	}
}

// handleMessage applies one inbound frame, in arrival order. Malformed frames
// are logged and dropped; they never abort the loop.
func (c *liveClient) handleMessage(ctx context.Context, data []byte) {
	var msg wireMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		logError("live message: %v", err)
		return
	}
	switch msg.Type {
	case "init":
		applyInit(msg.Sessions, msg.WorldTime)
		c.mu.Lock()
		fetch := !c.historyDone
		c.historyDone = true
		c.mu.Unlock()
		if fetch {
			go fetchHistory(ctx)
		}
	case "session_start":
		applySessionStart(msg.Session)
	case "session_end":
		applySessionEnd(msg.ID, msg.EndedAt, msg.Stats)
	case "route_point":
		applyRoutePoint(msg.ID, msg.Point)
	case "time_update":
		setWorldTime(msg.WorldTime)
	case "command_response":
		handleCommandResponse(msg.OK, msg.Message)
	default:
		logDebug("live message type %q ignored", msg.Type)
	}
}

// scheduleReconnect arms the single retry timer with the next backoff delay.
// A pending timer is left alone so two closes cannot double-schedule.
func (c *liveClient) scheduleReconnect(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	c.mu.Lock()
	if c.retryTimer != nil || c.deliberate {
		c.mu.Unlock()
		return
	}
	d := backoffDelay(c.attempts)
	c.attempts++
	c.retryTimer = time.AfterFunc(d, func() {
		c.mu.Lock()
		c.retryTimer = nil
		c.mu.Unlock()
		c.Connect(ctx)
	})
	c.mu.Unlock()
	logDebug("reconnect in %v", d)
}

// Reconnect cancels any pending retry, tears down the current connection and
// dials again immediately with fresh backoff state.
func (c *liveClient) Reconnect(ctx context.Context) {
	c.mu.Lock()
	if c.retryTimer != nil {
		c.retryTimer.Stop()
		c.retryTimer = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.state = stateDisconnected
	c.attempts = 0
	c.mu.Unlock()
	go c.Connect(ctx)
}

// Close shuts the channel down for good; the read loop sees the deliberate
// flag and does not schedule a retry.
func (c *liveClient) Close() {
	c.mu.Lock()
	c.deliberate = true
	if c.retryTimer != nil {
		c.retryTimer.Stop()
		c.retryTimer = nil
	}
	conn := c.conn
	c.mu.Unlock()
	if conn != nil {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		conn.Close()
	}
}

func (c *liveClient) State() connState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// send marshals and writes an application message. It reports failure
// synchronously when the channel is not open; nothing is queued.
func (c *liveClient) send(msg wireMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != stateConnected || c.conn == nil {
		return fmt.Errorf("not connected")
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode %s: %w", msg.Type, err)
	}
	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("send %s: %w", msg.Type, err)
	}
	return nil
}

// applyInit replaces the session map wholesale with the server's snapshot of
// active sessions.
func applyInit(list []*playerSession, worldTime int64) {
	sessionsMu.Lock()
	sessions = make(map[string]*playerSession, len(list))
	for _, s := range list {
		if s == nil || s.ID == "" {
			continue
		}
		sessions[s.ID] = s
	}
	sessionsMu.Unlock()
	if worldTime > 0 {
		setWorldTime(worldTime)
	}
	seedBoundsFromSessions(currentDim())
	logDebug("init: %d active sessions", len(list))
}

func applySessionStart(s *playerSession) {
	if s == nil || s.ID == "" {
		return
	}
	sessionsMu.Lock()
	sessions[s.ID] = s
	sessionsMu.Unlock()
	notifySession("Player joined", s.Name)
}

// applySessionEnd marks the session terminal and adopts the server's final
// stats. End events for unknown ids are races from reconnect gaps and are
// dropped silently.
func applySessionEnd(id string, endedAt int64, stats *sessionStats) {
	sessionsMu.Lock()
	s, ok := sessions[id]
	if ok {
		s.Active = false
		s.EndedAt = endedAt
		if stats != nil {
			s.Stats = *stats
		}
	}
	name := ""
	if ok {
		name = s.Name
	}
	sessionsMu.Unlock()
	if !ok {
		logDebug("session_end for unknown id %s dropped", id)
		return
	}
	notifySession("Player left", name)
}

// applyRoutePoint appends one sample to the identified session. Points for
// unknown sessions are dropped.
func applyRoutePoint(id string, p *worldPoint) {
	if p == nil {
		return
	}
	sessionsMu.Lock()
	s, ok := sessions[id]
	if ok {
		s.appendPoint(*p)
	}
	sessionsMu.Unlock()
	if !ok {
		logDebug("route_point for unknown id %s dropped", id)
	}
}

// sendTeleport requests a teleport to a player (by name) or to explicit
// coordinates.
func sendTeleport(target string, x, y, z float64, hasCoords bool) error {
	msg := wireMessage{Type: "teleport", Target: target}
	if hasCoords {
		msg.Point = &worldPoint{X: x, Y: y, Z: z}
	}
	return live.send(msg)
}

// sendRefreshTiles asks the external renderer to regenerate tiles, scoped to
// one dimension when dim is non-empty.
func sendRefreshTiles(dim string) error {
	return live.send(wireMessage{Type: "refresh_tiles", Dim: dim})
}
