package main

import (
	"math"
	"sync"

	"github.com/google/uuid"
)

// Canonical dimension ids served by the tile renderer. These strings are part
// of the wire contract; the tile paths and every route point use them.
var dimensions = []string{"overworld", "nether", "end"}

// worldPoint is a single recorded position sample. Immutable once appended.
type worldPoint struct {
	T   int64   `json:"t"`
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	Z   float64 `json:"z"`
	Dim string  `json:"dim"`
}

type sessionStats struct {
	Samples    int     `json:"samples"`
	DistanceXZ float64 `json:"distanceXZ"`
}

// playerSession is one continuous presence of a player, live or historical.
// Path is append-only and ordered by time ascending.
type playerSession struct {
	ID         string       `json:"id"`
	PlayerID   uuid.UUID    `json:"playerId"`
	Name       string       `json:"name"`
	StartedAt  int64        `json:"startedAt"`
	EndedAt    int64        `json:"endedAt,omitempty"`
	Active     bool         `json:"active"`
	LastSeenAt int64        `json:"lastSeenAt"`
	Stats      sessionStats `json:"stats"`
	Path       []worldPoint `json:"path"`
}

// sessions maps session id to session. Written only by the live sync handler
// and the historical merge; the render and input paths take the read lock.
var (
	sessionsMu sync.RWMutex
	sessions   = make(map[string]*playerSession)
)

// planarDist is the X/Z Euclidean distance between two points; Y is ignored.
func planarDist(a, b worldPoint) float64 {
	dx := b.X - a.X
	dz := b.Z - a.Z
	return math.Sqrt(dx*dx + dz*dz)
}

// appendPoint records a new route sample. The distance total advances only by
// the step from the immediately preceding point, matching the server's own
// running total rather than a full recompute.
func (s *playerSession) appendPoint(p worldPoint) {
	if len(s.Path) > 0 {
		s.Stats.DistanceXZ += planarDist(s.Path[len(s.Path)-1], p)
	}
	s.Path = append(s.Path, p)
	s.Stats.Samples++
	if p.T > s.LastSeenAt {
		s.LastSeenAt = p.T
	}
}

// latestPoint returns the most recent path point, if any.
func (s *playerSession) latestPoint() (worldPoint, bool) {
	if len(s.Path) == 0 {
		return worldPoint{}, false
	}
	return s.Path[len(s.Path)-1], true
}

// activeSessionsIn returns the active sessions whose latest point lies in the
// given dimension, for hover picking and the roster.
func activeSessionsIn(dim string) []*playerSession {
	sessionsMu.RLock()
	defer sessionsMu.RUnlock()
	var out []*playerSession
	for _, s := range sessions {
		if !s.Active {
			continue
		}
		if p, ok := s.latestPoint(); ok && p.Dim == dim {
			out = append(out, s)
		}
	}
	return out
}

// sessionMarker returns the latest point of the identified session along
// with its active flag, for callers off the write path.
func sessionMarker(id string) (p worldPoint, active, ok bool) {
	sessionsMu.RLock()
	defer sessionsMu.RUnlock()
	s, found := sessions[id]
	if !found {
		return worldPoint{}, false, false
	}
	p, ok = s.latestPoint()
	return p, s.Active, ok
}

func getSession(id string) *playerSession {
	sessionsMu.RLock()
	s := sessions[id]
	sessionsMu.RUnlock()
	return s
}

func sessionCount() (active, total int) {
	sessionsMu.RLock()
	defer sessionsMu.RUnlock()
	for _, s := range sessions {
		if s.Active {
			active++
		}
	}
	return active, len(sessions)
}
