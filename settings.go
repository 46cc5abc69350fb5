package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

const SETTINGS_VERSION = 2

const settingsFile = "trailmap-settings.json"

var gs settings = gsdef

// settingsLoaded reports whether settings were successfully loaded from disk.
var settingsLoaded bool

var gsdef settings = settings{
	Version: SETTINGS_VERSION,

	ShowGrid:           true,
	ShowLabels:         true,
	ShowOfflinePaths:   false,
	FollowSelected:     false,
	Notifications:      true,
	NotifySessionStart: true,
	NotifySessionEnd:   true,

	PathWidth:       2.0,
	HUDFontSize:     13,
	LabelFontSize:   12,
	ConsoleFontSize: 12,

	TimestampFormat: "3:04PM",
	LastDimension:   "overworld",
}

type settings struct {
	Version int

	ShowGrid           bool
	ShowLabels         bool
	ShowOfflinePaths   bool
	FollowSelected     bool
	Notifications      bool
	NotifySessionStart bool
	NotifySessionEnd   bool

	PathWidth       float64
	HUDFontSize     float64
	LabelFontSize   float64
	ConsoleFontSize float64

	ConsoleTimestamps bool
	TimestampFormat   string
	LastDimension     string

	WindowWidth  int
	WindowHeight int
	Fullscreen   bool
}

var (
	settingsDirty    bool
	lastSettingsSave = time.Now()
)

func settingsPath() string {
	return filepath.Join(dataDirPath, settingsFile)
}

func loadSettings() bool {
	data, err := os.ReadFile(settingsPath())
	if err != nil {
		gs = gsdef
		settingsLoaded = false
		return false
	}

	tmp := gsdef
	if err := json.Unmarshal(data, &tmp); err != nil {
		gs = gsdef
		settingsLoaded = false
		return false
	}
	if tmp.Version != SETTINGS_VERSION {
		gs = gsdef
		settingsLoaded = false
		return false
	}

	gs = tmp
	if !validDimension(gs.LastDimension) {
		gs.LastDimension = gsdef.LastDimension
	}
	if gs.PathWidth <= 0 {
		gs.PathWidth = gsdef.PathWidth
	}
	settingsLoaded = true
	return true
}

func saveSettings() {
	data, err := json.MarshalIndent(gs, "", "  ")
	if err != nil {
		logError("save settings: %v", err)
		return
	}
	path := settingsPath()
	if err := os.WriteFile(path+".tmp", data, 0644); err != nil {
		logError("save settings: %v", err)
		return
	}
	if err := os.Rename(path+".tmp", path); err != nil {
		logError("save settings: %v", err)
		return
	}
	settingsDirty = false
	lastSettingsSave = time.Now()
}

// saveSettingsIfDirty batches settings writes; called once per frame.
func saveSettingsIfDirty() {
	if settingsDirty && time.Since(lastSettingsSave) > 5*time.Second {
		saveSettings()
	}
}

func validDimension(dim string) bool {
	for _, d := range dimensions {
		if d == dim {
			return true
		}
	}
	return false
}
