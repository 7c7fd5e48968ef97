// go-vitrine - gesture-controlled shop window kiosk.
// Bridges the gesture sensing service to the display front-end.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/copylaradio/go-vitrine/internal/log"
	"github.com/copylaradio/go-vitrine/pkg/vitrine"
)

func main() {
	cfg, logLevel := parseFlags()
	log.Init(logLevel)

	app, err := vitrine.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	if err := app.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "initialization failed: %v\n", err)
		os.Exit(1)
	}
	defer app.Shutdown()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "runtime error: %v\n", err)
		os.Exit(1)
	}
}

// parseFlags parses command line flags and returns configuration.
// Flags override environment variables, which override defaults.
func parseFlags() (vitrine.Config, string) {
	var cfg vitrine.Config

	sensorURL := flag.String("sensor-url", "", "Gesture sensing service base URL (overrides SENSOR_URL)")
	shopURL := flag.String("shop-url", "", "Shop backend base URL (overrides SHOP_URL)")
	port := flag.String("port", "", "Display server port (overrides DISPLAY_PORT)")
	pollMS := flag.Int("poll-ms", 0, "Gesture poll interval in milliseconds (overrides POLL_INTERVAL_MS)")
	qrSeconds := flag.Int("qr-seconds", 0, "QR overlay display duration in seconds (overrides QR_SECONDS)")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	cfg.SensorURL = *sensorURL
	cfg.ShopURL = *shopURL
	cfg.DisplayPort = *port
	if *pollMS > 0 {
		cfg.PollInterval = time.Duration(*pollMS) * time.Millisecond
	}
	cfg.QRSeconds = *qrSeconds

	return cfg, *logLevel
}
