// Rondo — peer entry point.
//
// It connects to a rendezvous server, performs create-or-join for a named
// room, negotiates a direct WebRTC connection with whoever shares the
// room, and then bridges the terminal to the resulting data channel as a
// two-party chat.
//
// It can be launched interactively (no flags) or non-interactively via
// CLI flags (-url, -room).
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"

	"github.com/pterm/pterm"

	"github.com/rondo-dev/rondo/internal/config"
	"github.com/rondo-dev/rondo/internal/peer"
	"github.com/rondo-dev/rondo/internal/rtc"
	"github.com/rondo-dev/rondo/internal/util"
)

var version = "dev"

func main() {
	// Root context — cancelled on Ctrl+C.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := config.Load()

	urlFlag := flag.String("url", "", "Rendezvous server URL")
	roomFlag := flag.String("room", cfg.Room, "Room name to create or join")
	debugMode := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if *debugMode {
		util.EnableDebug()
	}

	pterm.Info.Println(fmt.Sprintf("Rondo — v%s", version))
	pterm.Println()

	wsURL := cfg.ServerURL
	if *urlFlag != "" {
		normalized, err := normalizeWSURL(*urlFlag)
		if err != nil {
			util.LogError("%v", err)
			os.Exit(1)
		}
		wsURL = normalized
	}

	room := *roomFlag
	if room == "" {
		room = askRoom()
	}

	if err := run(ctx, wsURL, room, cfg.STUNServers); err != nil {
		util.LogError("%v", err)
		os.Exit(1)
	}

	util.LogInfo("session ended")
}

// run drives one rendezvous attempt from dial to teardown.
func run(ctx context.Context, wsURL, room string, stunServers []string) error {
	client, err := peer.Dial(ctx, wsURL)
	if err != nil {
		return err
	}
	defer client.Close()
	util.LogInfo("connected to %s", wsURL)

	provider := rtc.NewProvider(stunServers)

	session := peer.NewSession(room, client, provider, peer.Hooks{
		OnConnected: func(ch peer.DataChannel) {
			chat := peer.NewChat(ctx, ch, func(text string) {
				pterm.Println(pterm.Cyan("peer> ") + text)
			})
			go readLines(ctx, chat)
			pterm.Println()
			pterm.Success.Println("Connected — type a line and press Enter to chat. Ctrl+C hangs up.")
		},
		OnFull: func(room string) {
			util.LogError("room %q already has two participants", room)
		},
		OnError: func(err error) {
			util.LogWarning("negotiation stalled: %v (Ctrl+C to hang up)", err)
		},
	})

	// Forward relayed envelopes into the session; a dropped signaling
	// connection during negotiation turns into a hangup.
	go func() {
		for env := range client.Incoming() {
			session.Handle(env)
		}
		session.Hangup()
	}()

	if err := session.Start(ctx); err != nil {
		return err
	}

	select {
	case <-session.Done():
	case <-ctx.Done():
		session.Hangup()
		<-session.Done()
	}
	return nil
}

// readLines pumps stdin lines into the chat until ctx is cancelled or
// stdin is exhausted.
func readLines(ctx context.Context, chat *peer.Chat) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		chat.Send(ctx, line)
		if ctx.Err() != nil {
			return
		}
	}
}

// ---------------------------------------------------------------------------
// Helper Functions
// ---------------------------------------------------------------------------

// normalizeWSURL validates and normalizes a raw server URL into the /ws
// endpoint form.
func normalizeWSURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid server URL: %s", raw)
	}
	scheme := "wss"
	if u.Scheme == "ws" || u.Scheme == "wss" {
		scheme = u.Scheme
	}
	return fmt.Sprintf("%s://%s/ws", scheme, u.Host), nil
}

// askRoom prompts the user for a room name until a non-empty one is
// entered.
func askRoom() string {
	for {
		raw, _ := pterm.DefaultInteractiveTextInput.
			WithDefaultText("Room name").
			Show()

		room := strings.TrimSpace(raw)
		if room != "" {
			pterm.Println()
			return room
		}

		util.LogWarning("room name must not be empty")
		pterm.Println()
	}
}
