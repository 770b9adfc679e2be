package main

import (
	"flag"
	"fmt"
	"os"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/gorain/pkg/config"
	"github.com/itohio/gorain/pkg/monitor"
	"github.com/itohio/gorain/pkg/panel"
	"github.com/itohio/gorain/pkg/publish"
	"github.com/itohio/gorain/pkg/sensor"
	"go.uber.org/zap"
)

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		envFlag    = flag.String("env", ".env", "Environment file with RAIN_* overrides")
		mockFlag   = flag.Bool("mock", false, "Use simulated sensor instead of serial port")
		debugFlag  = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	logger, err := newLogger(*debugFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		logger.Fatalw("failed to load configuration", "file", *configFlag, "error", err)
	}
	if err := cfg.ApplyEnv(*envFlag); err != nil {
		logger.Fatalw("failed to apply environment", "error", err)
	}

	// Override serial port if provided via command line
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}

	application := app.NewWithID("com.itohio.gorain")

	window := application.NewWindow("Rain Sensor")
	window.Resize(fyne.NewSize(640, 480))
	window.CenterOnScreen()

	state := &appState{
		cfg:        cfg,
		configPath: *configFlag,
		logger:     logger,
		monitor:    monitor.New(cfg, logger.Named("monitor")),
		panel:      panel.New(panel.DefaultMaxPoints),
		window:     window,
		useMock:    *mockFlag,
	}
	state.registerSinks()

	content := container.NewBorder(
		createToolbar(state),
		nil,
		nil,
		nil,
		state.panel,
	)

	window.SetContent(content)
	window.SetOnClosed(func() {
		closeMeasurementChain(state.chain)
		state.chain = nil
	})
	window.ShowAndRun()
}

// appState holds the application state.
type appState struct {
	cfg        *config.Config
	configPath string
	logger     *zap.SugaredLogger
	monitor    *monitor.Monitor
	panel      *panel.LCD
	window     fyne.Window
	connectBtn *widget.Button
	statusText *widget.Label
	useMock    bool
	chain      *measurementChain // Current measurement chain (nil if not connected)

	// Set when pipeline settings changed; the monitor is rebuilt on next connect
	monitorStale bool

	// Sinks of the current chain, swapped on connect and disconnect
	sinkMu sync.RWMutex
	status *publish.StatusWriter
	mqtt   *publish.MQTT
}

// registerSinks registers the monitor callback once. It fans updates out to
// the panel and whichever publishers the current chain opened.
func (s *appState) registerSinks() {
	s.monitor.OnUpdate(func(u monitor.Update) {
		updates := s.monitor.Updates()
		fyne.Do(func() {
			s.panel.Update(updates)
		})

		s.sinkMu.RLock()
		defer s.sinkMu.RUnlock()
		if s.status != nil {
			s.status.Handle(u)
		}
		if s.mqtt != nil {
			s.mqtt.Enqueue(u)
		}
	})
}

// setSinks replaces the publishers the monitor callback writes to.
func (s *appState) setSinks(status *publish.StatusWriter, mqtt *publish.MQTT) {
	s.sinkMu.Lock()
	defer s.sinkMu.Unlock()
	s.status = status
	s.mqtt = mqtt
}

// createToolbar creates the application toolbar with Connect and Settings buttons.
func createToolbar(state *appState) fyne.CanvasObject {
	connectBtn := widget.NewButtonWithIcon("", theme.LoginIcon(), func() {
		handleConnect(state)
	})
	state.connectBtn = connectBtn

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	state.statusText = widget.NewLabel("Disconnected")

	return container.NewBorder(
		nil,
		nil,
		container.NewHBox(connectBtn, settingsBtn),
		nil,
		state.statusText,
	)
}

// deviceName describes the sample source for status messages.
func (s *appState) deviceName() string {
	if s.useMock {
		return "simulated sensor"
	}
	return s.cfg.Serial.Port
}

// newDevice creates the sample source selected on the command line.
func (s *appState) newDevice() sensor.Device {
	if s.useMock {
		return sensor.NewMock(&s.cfg.Mock, s.logger.Named("mock"))
	}
	return sensor.New(s.cfg.Serial.Port, s.cfg.Serial.BaudRate, sensor.DefaultBufferSize, s.logger.Named("sensor"))
}
