package main

import (
	"context"
	"fmt"
	"io"

	"fyne.io/fyne/v2/dialog"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/itohio/gorain/pkg/monitor"
	"github.com/itohio/gorain/pkg/publish"
	"github.com/itohio/gorain/pkg/sensor"
)

// measurementChain tracks the components of the measurement chain for graceful shutdown.
type measurementChain struct {
	device         sensor.Device
	monitorDone    chan struct{} // Closed when the monitor goroutine exits
	transport      io.Closer     // Status transport port, nil when not configured
	mqttClient     mqtt.Client
	mqttCancel     context.CancelFunc
	mqttDone       chan struct{} // Closed when the publisher loop exits
	disconnectSink func()
}

// closeMeasurementChain gracefully closes the measurement chain.
// Waits for all goroutines to finish.
func closeMeasurementChain(chain *measurementChain) {
	if chain == nil {
		return
	}

	// Close device - this will close the samples channel
	if chain.device != nil {
		chain.device.Close()
	}

	// The monitor goroutine exits once the samples channel drains
	if chain.monitorDone != nil {
		<-chain.monitorDone
	}

	if chain.disconnectSink != nil {
		chain.disconnectSink()
	}

	if chain.mqttCancel != nil {
		chain.mqttCancel()
		<-chain.mqttDone
	}
	if chain.mqttClient != nil {
		chain.mqttClient.Disconnect(250)
	}

	if chain.transport != nil {
		chain.transport.Close()
	}
}

// handleConnect handles the connect/disconnect button click.
func handleConnect(state *appState) {
	if state.chain != nil {
		closeMeasurementChain(state.chain)
		state.chain = nil
		state.statusText.SetText("Disconnected")
		state.logger.Infow("disconnected", "device", state.deviceName())
		return
	}

	chain, err := openMeasurementChain(state)
	if err != nil {
		dialog.ShowError(err, state.window)
		return
	}
	state.chain = chain
	state.statusText.SetText("Connected to " + state.deviceName())
}

// openMeasurementChain connects the device and the optional publishers and
// starts feeding the monitor.
func openMeasurementChain(state *appState) (*measurementChain, error) {
	cfg := state.cfg
	chain := &measurementChain{}

	var status *publish.StatusWriter
	if cfg.Transport.Port != "" {
		port, err := sensor.OpenPort(cfg.Transport.Port, cfg.Transport.BaudRate)
		if err != nil {
			return nil, fmt.Errorf("failed to open status transport: %w", err)
		}
		chain.transport = port
		status = publish.NewStatusWriter(port, state.logger.Named("transport"))
		state.logger.Infow("status transport open", "port", cfg.Transport.Port, "baud", cfg.Transport.BaudRate)
	}

	var publisher *publish.MQTT
	if cfg.MQTT.Enabled {
		pub, client, err := publish.Connect(cfg.MQTT, state.logger.Named("mqtt"))
		if err != nil {
			closeMeasurementChain(chain)
			return nil, err
		}
		ctx, cancel := context.WithCancel(context.Background())
		chain.mqttClient = client
		chain.mqttCancel = cancel
		chain.mqttDone = make(chan struct{})
		go func() {
			defer close(chain.mqttDone)
			pub.Start(ctx)
		}()
		publisher = pub
	}

	device := state.newDevice()
	if err := device.Connect(); err != nil {
		closeMeasurementChain(chain)
		return nil, fmt.Errorf("failed to connect to %s: %w", state.deviceName(), err)
	}
	chain.device = device
	state.logger.Infow("connected", "device", state.deviceName())

	state.setSinks(status, publisher)
	chain.disconnectSink = func() {
		state.setSinks(nil, nil)
	}

	if state.monitorStale {
		state.monitor = monitor.New(cfg, state.logger.Named("monitor"))
		state.registerSinks()
		state.monitorStale = false
	} else {
		// Reset monitor shutdown flag for new chain
		state.monitor.ResetShutdown()
	}

	m := state.monitor
	chain.monitorDone = make(chan struct{})
	go func() {
		defer close(chain.monitorDone)
		m.ProcessSamples(device.Samples())
	}()

	return chain, nil
}
