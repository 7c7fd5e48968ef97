// Package vitrine wires the kiosk together: gesture transport in, session
// state machine in the middle, display server out.
package vitrine

import (
	"context"
	"fmt"
	"time"

	"github.com/copylaradio/go-vitrine/internal/config"
	"github.com/copylaradio/go-vitrine/internal/log"
	"github.com/copylaradio/go-vitrine/pkg/protocol"
	"github.com/copylaradio/go-vitrine/pkg/session"
	"github.com/copylaradio/go-vitrine/pkg/shop"
	"github.com/copylaradio/go-vitrine/pkg/transport"
	"github.com/copylaradio/go-vitrine/pkg/web"
)

// Config holds the application configuration.
type Config struct {
	SensorURL    string
	ShopURL      string
	DisplayPort  string
	PollInterval time.Duration
	QRSeconds    int
	FeedRefresh  time.Duration
}

// LoadEnvConfig fills unset fields from the environment.
func (c *Config) LoadEnvConfig() {
	if c.SensorURL == "" {
		c.SensorURL = config.SensorURL()
	}
	if c.ShopURL == "" {
		c.ShopURL = config.ShopURL()
	}
	if c.DisplayPort == "" {
		c.DisplayPort = config.DisplayPort()
	}
	if c.PollInterval <= 0 {
		c.PollInterval = config.PollInterval()
	}
	if c.QRSeconds <= 0 {
		c.QRSeconds = config.QRSeconds()
	}
	if c.FeedRefresh <= 0 {
		c.FeedRefresh = config.DefaultFeedRefresh
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.SensorURL == "" {
		return fmt.Errorf("sensor URL is required")
	}
	if c.ShopURL == "" {
		return fmt.Errorf("shop URL is required")
	}
	return nil
}

// App is the kiosk application orchestrator.
// It manages all components and their lifecycle.
type App struct {
	config Config

	transport *transport.Client
	shop      *shop.Client
	session   *session.Session
	webServer *web.Server

	// Refresh-loop state, touched only by the feed goroutine.
	qrLoaded  bool
	feedCount int
}

// New creates the application with the given configuration.
func New(cfg Config) (*App, error) {
	cfg.LoadEnvConfig()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &App{config: cfg}, nil
}

// Init builds and wires all components.
// Call this after New() and before Run().
func (a *App) Init() error {
	a.shop = shop.NewClient(a.config.ShopURL)

	sessionCfg := session.DefaultConfig()
	sessionCfg.QRSeconds = a.config.QRSeconds
	a.session = session.New(sessionCfg, a.shop)

	a.webServer = web.NewServer(a.config.DisplayPort)
	a.webServer.OnJump = a.session.RequestJump

	a.session.OnSnapshot(a.webServer.PublishSnapshot)
	a.session.OnBannerToggle(func(light bool) {
		log.Info("theme flipped", "light", light)
	})

	a.transport = transport.NewClient(a.config.SensorURL,
		transport.WithPollInterval(a.config.PollInterval))
	a.transport.OnFrame(a.session.HandleFrame)
	a.transport.OnStatus(a.session.HandleStatus)
	a.transport.OnModeChange(a.session.HandleModeChange)

	return nil
}

// Run starts all components and blocks until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	log.Info("go-vitrine starting",
		"sensor", a.config.SensorURL,
		"shop", a.config.ShopURL,
		"display_port", a.config.DisplayPort)

	go a.session.Run(ctx)
	go a.refreshFeedLoop(ctx)
	a.webServer.StartAsync()
	a.transport.Start(ctx)

	<-ctx.Done()
	return nil
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() {
	if a.transport != nil {
		a.transport.Close()
	}
	if a.webServer != nil {
		a.webServer.Shutdown()
	}
	log.Info("go-vitrine stopped")
}

// refreshFeedLoop fetches the content feed immediately and then on a fixed
// interval. The carousel falls back to a placeholder item when the backend
// has nothing to show, so the screen is never blank.
func (a *App) refreshFeedLoop(ctx context.Context) {
	a.refreshFeed(ctx)

	ticker := time.NewTicker(a.config.FeedRefresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.refreshFeed(ctx)
		}
	}
}

func (a *App) refreshFeed(ctx context.Context) {
	if !a.qrLoaded {
		if qr, err := a.shop.QR(ctx); err != nil {
			log.Debug("standing QR fetch failed", "err", err)
		} else {
			a.webServer.SetStandingQR(qr)
			a.qrLoaded = true
		}
	}

	feed, err := a.shop.Events(ctx)
	if err != nil {
		log.Warn("feed refresh failed", "err", err)
		if a.feedCount == 0 {
			a.pushFeed(placeholderFeed())
		}
		return
	}

	items := feed.Events
	if len(items) == 0 {
		if feed.Loading {
			// Backend still warming up; keep whatever we have.
			return
		}
		items = placeholderFeed()
	}
	a.pushFeed(items)
}

func (a *App) pushFeed(items []protocol.FeedItem) {
	a.feedCount = len(items)
	a.session.SetFeed(items)
	a.webServer.SetFeed(items)
	log.Debug("feed updated", "items", len(items))
}

func placeholderFeed() []protocol.FeedItem {
	return []protocol.FeedItem{
		{
			ID:      "placeholder",
			Content: "Bienvenue ! Le flux arrive...",
			Profile: protocol.Profile{
				Name:        "vitrine",
				DisplayName: "La Vitrine",
			},
		},
	}
}
