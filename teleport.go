package main

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	clipboard "golang.design/x/clipboard"
)

var clipboardOK = true

// teleportToSelected asks the server to move the viewer to the selected
// player. Fails loudly when nothing is selected or the channel is down.
func teleportToSelected() {
	if selectedID == "" {
		consoleMessage("No player selected to teleport to.")
		return
	}
	s := getSession(selectedID)
	if s == nil {
		return
	}
	if err := sendTeleport(s.Name, 0, 0, 0, false); err != nil {
		logWarn("teleport not sent: %v", err)
		return
	}
	consoleMessage(fmt.Sprintf("Teleporting to %s...", s.Name))
}

// teleportToCursor teleports to the world coordinate under the mouse cursor,
// at a safe height left for the server to resolve.
func teleportToCursor() {
	mx, my := ebiten.CursorPosition()
	wx, wz := view.screenToWorld(float64(mx), float64(my), screenW, screenH)
	if err := sendTeleport("", wx, 0, wz, true); err != nil {
		logWarn("teleport not sent: %v", err)
		return
	}
	consoleMessage(fmt.Sprintf("Teleporting to %.0f, %.0f...", wx, wz))
}

// copyTeleportCommand puts a ready-to-paste /tp command for the hovered or
// selected position on the clipboard.
func copyTeleportCommand() {
	if !clipboardOK {
		consoleMessage("Clipboard unavailable.")
		return
	}
	cmd := ""
	id := hoveredID
	if id == "" {
		id = selectedID
	}
	if id != "" {
		if p, _, ok := sessionMarker(id); ok {
			cmd = fmt.Sprintf("/tp %.1f %.1f %.1f", p.X, p.Y, p.Z)
		}
	}
	if cmd == "" {
		mx, my := ebiten.CursorPosition()
		wx, wz := view.screenToWorld(float64(mx), float64(my), screenW, screenH)
		cmd = fmt.Sprintf("/tp %.1f ~ %.1f", wx, wz)
	}
	clipboard.Write(clipboard.FmtText, []byte(cmd))
	consoleMessage("Copied: " + cmd)
}

// handleCommandResponse forwards a server command result to the console; it
// is never stored in session state.
func handleCommandResponse(ok bool, msg string) {
	if msg == "" {
		if ok {
			msg = "Command accepted."
		} else {
			msg = "Command rejected."
		}
	}
	consoleMessage(msg)
	if !ok {
		notifyCommandFailure(msg)
	}
}
