package main

import (
	"sync"
	"time"
)

const maxConsoleMessages = 200

// consoleVisible is how many of the newest messages the overlay draws.
const consoleVisible = 6

type timedMessage struct {
	Text string
	Time time.Time
}

type messageLog struct {
	mu      sync.Mutex
	entries []timedMessage
	max     int
}

var consoleLog = messageLog{max: maxConsoleMessages}

func (l *messageLog) Add(msg string) {
	if msg == "" {
		return
	}
	entry := timedMessage{Text: msg, Time: time.Now()}

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	if len(l.entries) > l.max {
		l.entries = l.entries[len(l.entries)-l.max:]
	}
	l.mu.Unlock()
}

func (l *messageLog) Entries(format string, useTimestamps bool) []string {
	l.mu.Lock()
	entries := make([]timedMessage, len(l.entries))
	copy(entries, l.entries)
	l.mu.Unlock()

	out := make([]string, len(entries))
	if format == "" {
		format = "3:04PM"
	}
	if useTimestamps {
		for i, msg := range entries {
			out[i] = "[" + msg.Time.Format(format) + "] " + msg.Text
		}
		return out
	}
	for i, msg := range entries {
		out[i] = msg.Text
	}
	return out
}

// Tail returns up to n of the newest entries, oldest first.
func (l *messageLog) Tail(n int, format string, useTimestamps bool) []string {
	all := l.Entries(format, useTimestamps)
	if len(all) > n {
		all = all[len(all)-n:]
	}
	return all
}

func consoleMessage(msg string) {
	consoleLog.Add(msg)
}

func getConsoleMessages() []string {
	format := gs.TimestampFormat
	if format == "" {
		format = "3:04PM"
	}
	return consoleLog.Entries(format, gs.ConsoleTimestamps)
}
