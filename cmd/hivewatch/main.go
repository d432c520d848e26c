package main

import (
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hivewatch/console/internal/announce"
	"github.com/hivewatch/console/internal/app"
	"github.com/hivewatch/console/internal/client"
	"github.com/hivewatch/console/internal/config"
	"github.com/hivewatch/console/internal/engine"
)

func main() {
	streamURL := flag.String("url", "", "Event stream URL of the honeypot backend")
	token := flag.String("token", "", "Auth token (if backend requires it)")
	configPath := flag.String("config", "config.yaml", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = config.Default()
	}
	if *streamURL != "" {
		cfg.Stream.URL = *streamURL
	}
	if *token != "" {
		cfg.Stream.Token = *token
	}

	httpBase := deriveHTTPBase(cfg.Stream.URL)
	httpClient := client.New(httpBase, cfg.Stream.Token)

	bridge := app.NewBridge()

	eng := engine.New(engine.Config{
		Endpoint:        cfg.Stream.URL,
		AuthToken:       cfg.Stream.Token,
		BaseDelay:       cfg.Stream.BaseDelay,
		MaxDelay:        cfg.Stream.MaxDelay,
		MaxRetries:      cfg.Stream.MaxRetries,
		HistoryCapacity: cfg.History.Capacity,
		OnStatus:        bridge.PushStatus,
	})
	defer eng.Close()

	// Seed the session map from REST before the stream opens. Failure is
	// not fatal: the stream rebuilds the map as events arrive.
	if nodes, err := httpClient.FetchAllSessions(); err != nil {
		log.Printf("Session snapshot unavailable: %v", err)
	} else {
		eng.Seed(nodes)
	}
	if stats, err := httpClient.GetStats(); err == nil {
		eng.SetStats(stats)
	}

	ann := announce.New(cfg.Announcer.MinInterval, cfg.Announcer.QueueSize, bridge.PushAnnouncement)
	defer ann.Close()

	unsubscribe := eng.Subscribe(bridge.PushEvent)
	defer unsubscribe()

	m := app.New(eng, ann, bridge)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// deriveHTTPBase converts http://host:port/events → http://host:port
func deriveHTTPBase(streamURL string) string {
	u, err := url.Parse(streamURL)
	if err != nil || u.Host == "" {
		return "http://127.0.0.1:5050"
	}
	scheme := u.Scheme
	if !strings.HasPrefix(scheme, "http") {
		scheme = "http"
	}
	return fmt.Sprintf("%s://%s", scheme, u.Host)
}
