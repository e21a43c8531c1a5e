// Package status provides the liveness heartbeat and the HTTP status server.
package status

import (
	"os"
	"strconv"
	"sync"
	"time"

	"discordllm/internal/core"
)

// Heartbeat periodically rewrites a file containing the current time in
// milliseconds since epoch. External health checks treat an absent or stale
// file as unhealthy.
type Heartbeat struct {
	path     string
	interval time.Duration
	logger   core.Logger
	done     chan struct{}
	stopOnce sync.Once
}

// NewHeartbeat creates a heartbeat writer for the given file path.
func NewHeartbeat(path string, interval time.Duration, logger core.Logger) *Heartbeat {
	if path == "" {
		path = core.HeartbeatFilePath
	}
	if interval <= 0 {
		interval = core.HeartbeatInterval
	}
	if logger == nil {
		logger = &core.NopLogger{}
	}
	return &Heartbeat{
		path:     path,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start writes an initial beat and launches the periodic writer.
func (h *Heartbeat) Start() {
	h.beat()
	go h.loop()
}

// Stop terminates the periodic writer.
func (h *Heartbeat) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Heartbeat) loop() {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.beat()
		case <-h.done:
			return
		}
	}
}

func (h *Heartbeat) beat() {
	millis := strconv.FormatInt(time.Now().UnixMilli(), 10)
	if err := os.WriteFile(h.path, []byte(millis), core.FilePermissionDefault); err != nil {
		h.logger.Warn("Failed to write heartbeat file %s: %v", h.path, err)
	}
}

// CheckHeartbeat reports whether the heartbeat file at path exists and its
// timestamp is within staleAfter of now.
func CheckHeartbeat(path string, staleAfter time.Duration, now time.Time) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}

	millis, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return false
	}

	beat := time.UnixMilli(millis)
	return now.Sub(beat) <= staleAfter
}
