package main

import "github.com/gen2brain/beeep"

// notifySession raises a desktop notification for a session lifecycle event.
// Failures are logged and otherwise ignored; notifications are best-effort.
func notifySession(title, name string) {
	if !gs.Notifications || name == "" {
		return
	}
	switch title {
	case "Player joined":
		if !gs.NotifySessionStart {
			return
		}
	case "Player left":
		if !gs.NotifySessionEnd {
			return
		}
	}
	go func() {
		if err := beeep.Notify("Trailmap: "+title, name, ""); err != nil {
			logDebug("notify: %v", err)
		}
	}()
}

// notifyCommandFailure surfaces a rejected teleport so the user sees it even
// with the window unfocused.
func notifyCommandFailure(msg string) {
	if !gs.Notifications {
		return
	}
	go func() {
		if err := beeep.Alert("Trailmap: command failed", msg, ""); err != nil {
			logDebug("notify: %v", err)
		}
	}()
}
