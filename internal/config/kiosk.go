// Package config provides configuration helpers for go-vitrine commands.
package config

import (
	"os"
	"strconv"
	"time"
)

// Default kiosk configuration.
const (
	DefaultSensorURL    = "http://127.0.0.1:5555"
	DefaultShopURL      = "http://127.0.0.1:5555"
	DefaultDisplayPort  = "8181"
	DefaultPollInterval = 50 * time.Millisecond
	DefaultQRSeconds    = 10
	DefaultFeedRefresh  = 30 * time.Second
)

// SensorURL returns the gesture sensing service base URL from SENSOR_URL.
// Falls back to the local default if not set.
func SensorURL() string {
	if url := os.Getenv("SENSOR_URL"); url != "" {
		return url
	}
	return DefaultSensorURL
}

// ShopURL returns the shop backend base URL from SHOP_URL.
func ShopURL() string {
	if url := os.Getenv("SHOP_URL"); url != "" {
		return url
	}
	return DefaultShopURL
}

// DisplayPort returns the display server port from DISPLAY_PORT.
func DisplayPort() string {
	if port := os.Getenv("DISPLAY_PORT"); port != "" {
		return port
	}
	return DefaultDisplayPort
}

// PollInterval returns the gesture poll interval from POLL_INTERVAL_MS.
func PollInterval() time.Duration {
	if ms := os.Getenv("POLL_INTERVAL_MS"); ms != "" {
		if n, err := strconv.Atoi(ms); err == nil && n > 0 {
			return time.Duration(n) * time.Millisecond
		}
	}
	return DefaultPollInterval
}

// QRSeconds returns the QR overlay display duration from QR_SECONDS.
func QRSeconds() int {
	if s := os.Getenv("QR_SECONDS"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return DefaultQRSeconds
}
