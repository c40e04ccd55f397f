// ABOUTME: Entry point for the Vision Assistant terminal client
// ABOUTME: Parses CLI flags, wires the session to the TUI, handles shutdown
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Vision-Assistant/vision-go/internal/config"
	"github.com/Vision-Assistant/vision-go/internal/logging"
	"github.com/Vision-Assistant/vision-go/internal/session"
	"github.com/Vision-Assistant/vision-go/internal/ui"
	"github.com/Vision-Assistant/vision-go/internal/version"
)

var (
	serverURI = flag.String("server", "", "WebSocket endpoint (overrides VISION_WS_URI)")
	logFile   = flag.String("log-file", "", "Log file path (overrides VISION_LOG_FILE)")
	volume    = flag.Int("volume", -1, "Initial volume 0-100 (overrides VISION_VOLUME)")
	autoConn  = flag.Bool("connect", false, "Connect immediately on startup")
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if *serverURI != "" {
		cfg.ServerURI = *serverURI
	}
	if *logFile != "" {
		cfg.LogFile = *logFile
	}
	if *volume >= 0 {
		cfg.Volume = *volume
	}

	log := logging.New(cfg.LogFile)
	defer log.Sync()

	log.Info("starting",
		zap.String("product", version.Product),
		zap.String("version", version.Version),
		zap.String("server", cfg.ServerURI))

	sess := session.New(cfg, log)

	ctrl := ui.NewControl()
	prog, err := ui.Run(ctrl, cfg.Volume)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start TUI: %v\n", err)
		os.Exit(1)
	}
	go prog.Run()

	go controlLoop(sess, ctrl, log)
	go statusLoop(sess, prog)

	if *autoConn {
		go func() {
			if err := sess.Connect(); err != nil {
				log.Error("auto-connect failed", zap.Error(err))
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-ctrl.Quit:
		log.Info("quit from TUI")
	case <-sigChan:
		log.Info("shutdown signal received")
	}

	sess.Close()
	prog.Quit()
	log.Info("stopped")
}

// controlLoop applies TUI commands to the session.
func controlLoop(sess *session.Session, ctrl *ui.Control, log *zap.Logger) {
	for {
		select {
		case <-ctrl.Connect:
			go func() {
				if err := sess.Connect(); err != nil {
					log.Error("connect failed", zap.Error(err))
				}
			}()
		case <-ctrl.Disconnect:
			sess.Disconnect()
		case <-ctrl.StatusReq:
			sess.RequestStatus()
		case <-ctrl.ClearChat:
			sess.ClearChat()
		case vol := <-ctrl.Volume:
			sess.SetVolume(vol.Volume)
			sess.SetMuted(vol.Muted)
		case <-ctrl.Quit:
			return
		}
	}
}

// statusLoop pushes session state into the TUI on the redraw cadence.
// The spectrum sampler runs here, independent of playback state.
func statusLoop(sess *session.Session, prog *tea.Program) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		snap := sess.Snapshot()

		entries := sess.Conversation().Entries()
		lines := make([]ui.ChatLine, len(entries))
		for i, e := range entries {
			lines[i] = ui.ChatLine{Sender: string(e.Sender), Content: e.Content}
		}

		prog.Send(ui.StatusMsg{
			ConnStatus:   string(snap.Info.Status),
			ClientID:     snap.Info.ClientID,
			Role:         snap.Info.Role,
			Broadcaster:  snap.Info.Broadcaster,
			TotalClients: snap.Info.TotalClients,
			AudioStatus:  snap.AudioStatus,
			Played:       snap.Stats.Played,
			Errors:       snap.Stats.Errors,
			Pending:      snap.Stats.Pending,
			Volume:       snap.Volume,
			Muted:        snap.Muted,
			Bars:         sess.Bars(),
			FPS:          snap.FPS,
			FrameCount:   snap.FrameCount,
			LastFrame:    snap.LastFrame,
			Messages:     lines,
		})
	}
}
