package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/joho/godotenv"
	"github.com/pkg/browser"
	clipboard "golang.design/x/clipboard"
)

const initialWindowW, initialWindowH = 1280, 800

var (
	host      string
	authToken string
	doDebug   bool

	dataDirPath = "."

	gameCtx context.Context = context.Background()
)

func main() {
	// .env next to the binary may carry host/token so neither has to live in
	// shell history.
	if err := godotenv.Load(); err == nil {
		logDebug("loaded .env")
	}
	defHost := os.Getenv("TRAILMAP_HOST")
	if defHost == "" {
		defHost = "localhost:8180"
	}
	flag.StringVar(&host, "host", defHost, "map server host[:port] or full URL")
	flag.StringVar(&authToken, "token", os.Getenv("TRAILMAP_TOKEN"), "auth token from the login flow")
	flag.BoolVar(&doDebug, "debug", false, "verbose/debug logging")
	flag.Parse()

	setupLogging(doDebug)
	defer func() {
		if r := recover(); r != nil {
			logError("panic: %v", r)
			panic(r)
		}
	}()

	loadSettings()
	if gs.WindowWidth < 640 {
		gs.WindowWidth = initialWindowW
	}
	if gs.WindowHeight < 480 {
		gs.WindowHeight = initialWindowH
	}
	ebiten.SetWindowSize(gs.WindowWidth, gs.WindowHeight)

	if err := clipboard.Init(); err != nil {
		log.Printf("clipboard init: %v", err)
		clipboardOK = false
	}

	if authToken == "" {
		// Tokens come from the server's web login; open it and keep running
		// so tiles/history can still be browsed if the server allows it.
		logWarn("no auth token; opening login page")
		if err := browser.OpenURL(serverHTTPBase() + "/login"); err != nil {
			logError("open login page: %v", err)
		}
	}

	initFont()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP)
	defer cancel()
	gameCtx = ctx

	setDimension(gs.LastDimension)
	go live.Connect(ctx)
	defer live.Close()

	runGame()
	cancel()
	saveSettings()
}

// serverHTTPBase returns the request/response base URL for tiles and the
// historical session listing.
func serverHTTPBase() string {
	h := strings.TrimSuffix(host, "/")
	if strings.Contains(h, "://") {
		return h
	}
	return "http://" + h
}

// serverWSBase converts the HTTP base to its websocket counterpart.
func serverWSBase() string {
	base := serverHTTPBase()
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://")
	}
	return fmt.Sprintf("ws://%s", base)
}
