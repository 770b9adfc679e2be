package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/gorain/pkg/publish"
	"github.com/itohio/gorain/pkg/sensor"
)

// showSettingsDialog displays a settings dialog with tabs for all configuration options.
// Changes take effect on the next connect.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createSerialTab(state),
		createTransportTab(state),
		createPipelineTab(state),
		createMQTTTab(state),
		createMockTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(600, 450))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(600, 450))
	d.Show()
}

// saveConfig writes the configuration back to the file it was loaded from.
func saveConfig(state *appState) {
	if err := state.cfg.Save(state.configPath); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
	}
}

// portSelect builds a select listing available serial ports plus current.
// The returned function maps the selection back to a port name.
func portSelect(current string, allowNone bool) (*widget.Select, func() string) {
	ports, err := sensor.Ports()
	options := []string{}
	portMap := make(map[string]string) // Map display name to actual port name

	if allowNone {
		options = append(options, "(none)")
		portMap["(none)"] = ""
	}
	if err == nil {
		for _, port := range ports {
			displayName := port.Name
			if port.Description != "" && port.Description != port.Name {
				displayName = fmt.Sprintf("%s (%s)", port.Name, port.Description)
			}
			options = append(options, displayName)
			portMap[displayName] = port.Name
		}
	}

	currentDisplay := current
	found := false
	for _, opt := range options {
		if portMap[opt] == current {
			currentDisplay = opt
			found = true
			break
		}
	}
	if !found && current != "" {
		options = append(options, current)
		portMap[current] = current
	}

	sel := widget.NewSelect(options, nil)
	if currentDisplay != "" || allowNone {
		sel.SetSelected(currentDisplay)
	}

	return sel, func() string {
		if name, ok := portMap[sel.Selected]; ok {
			return name
		}
		return sel.Selected
	}
}

// createSerialTab creates the sensor serial port tab.
func createSerialTab(state *appState) *container.TabItem {
	sel, selected := portSelect(state.cfg.Serial.Port, false)

	baudEntry := widget.NewEntry()
	baudEntry.SetText(strconv.Itoa(state.cfg.Serial.BaudRate))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: sel},
			{Text: "Baud Rate", Widget: baudEntry},
		},
		OnSubmit: func() {
			if port := selected(); port != "" {
				state.cfg.Serial.Port = port
			}
			if baud, err := strconv.Atoi(baudEntry.Text); err == nil && baud > 0 {
				state.cfg.Serial.BaudRate = baud
			}
			saveConfig(state)
		},
	}

	return container.NewTabItem("Serial", form)
}

// createTransportTab creates the status transport tab.
func createTransportTab(state *appState) *container.TabItem {
	sel, selected := portSelect(state.cfg.Transport.Port, true)

	baudEntry := widget.NewEntry()
	baudEntry.SetText(strconv.Itoa(state.cfg.Transport.BaudRate))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Status Port", Widget: sel},
			{Text: "Baud Rate", Widget: baudEntry},
		},
		OnSubmit: func() {
			state.cfg.Transport.Port = selected()
			if baud, err := strconv.Atoi(baudEntry.Text); err == nil && baud > 0 {
				state.cfg.Transport.BaudRate = baud
			}
			saveConfig(state)
		},
	}

	return container.NewTabItem("Transport", form)
}

// createPipelineTab creates the pipeline and history tab.
func createPipelineTab(state *appState) *container.TabItem {
	intervalEntry := widget.NewEntry()
	intervalEntry.SetText(state.cfg.Pipeline.Interval.String())

	historyEntry := widget.NewEntry()
	historyEntry.SetText(strconv.Itoa(state.cfg.History.MaxReadings))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Update Interval", Widget: intervalEntry},
			{Text: "Readings Kept", Widget: historyEntry},
		},
		OnSubmit: func() {
			if d, err := time.ParseDuration(intervalEntry.Text); err == nil && d > 0 {
				state.cfg.Pipeline.Interval = d
			}
			if n, err := strconv.Atoi(historyEntry.Text); err == nil && n > 0 {
				state.cfg.History.MaxReadings = n
			}
			saveConfig(state)
			state.monitorStale = true
		},
	}

	return container.NewTabItem("Pipeline", form)
}

// createMQTTTab creates the MQTT publishing tab.
func createMQTTTab(state *appState) *container.TabItem {
	enabledCheck := widget.NewCheck("", nil)
	enabledCheck.SetChecked(state.cfg.MQTT.Enabled)

	brokerEntry := widget.NewEntry()
	brokerEntry.SetText(state.cfg.MQTT.Broker)

	usernameEntry := widget.NewEntry()
	usernameEntry.SetText(state.cfg.MQTT.Username)

	passwordEntry := widget.NewPasswordEntry()
	passwordEntry.SetText(state.cfg.MQTT.Password)

	prefixEntry := widget.NewEntry()
	prefixEntry.SetText(state.cfg.MQTT.TopicPrefix)

	deviceEntry := widget.NewEntry()
	deviceEntry.SetText(state.cfg.MQTT.DeviceID)

	encodingSelect := widget.NewSelect([]string{publish.EncodingJSON, publish.EncodingMsgpack}, nil)
	encodingSelect.SetSelected(state.cfg.MQTT.Encoding)

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Enabled", Widget: enabledCheck},
			{Text: "Broker", Widget: brokerEntry},
			{Text: "Username", Widget: usernameEntry},
			{Text: "Password", Widget: passwordEntry},
			{Text: "Topic Prefix", Widget: prefixEntry},
			{Text: "Device ID", Widget: deviceEntry},
			{Text: "Encoding", Widget: encodingSelect},
		},
		OnSubmit: func() {
			state.cfg.MQTT.Enabled = enabledCheck.Checked
			if brokerEntry.Text != "" {
				state.cfg.MQTT.Broker = brokerEntry.Text
			}
			state.cfg.MQTT.Username = usernameEntry.Text
			state.cfg.MQTT.Password = passwordEntry.Text
			if prefixEntry.Text != "" {
				state.cfg.MQTT.TopicPrefix = prefixEntry.Text
			}
			if deviceEntry.Text != "" {
				state.cfg.MQTT.DeviceID = deviceEntry.Text
			}
			if encodingSelect.Selected != "" {
				state.cfg.MQTT.Encoding = encodingSelect.Selected
			}
			saveConfig(state)
		},
	}

	return container.NewTabItem("MQTT", form)
}

// createMockTab creates the simulated sensor tab.
func createMockTab(state *appState) *container.TabItem {
	dryEntry := widget.NewEntry()
	dryEntry.SetText(fmt.Sprintf("%.0f", state.cfg.Mock.DryLevel))

	wetEntry := widget.NewEntry()
	wetEntry.SetText(fmt.Sprintf("%.0f", state.cfg.Mock.WetLevel))

	noiseEntry := widget.NewEntry()
	noiseEntry.SetText(fmt.Sprintf("%.0f", state.cfg.Mock.NoiseLevel))

	spikeEntry := widget.NewEntry()
	spikeEntry.SetText(strconv.Itoa(state.cfg.Mock.SpikeEvery))

	periodEntry := widget.NewEntry()
	periodEntry.SetText(state.cfg.Mock.ShowerPeriod.String())

	sampleRateEntry := widget.NewEntry()
	sampleRateEntry.SetText(state.cfg.Mock.SampleRate.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Dry Level", Widget: dryEntry},
			{Text: "Wet Level", Widget: wetEntry},
			{Text: "Noise Level", Widget: noiseEntry},
			{Text: "Spike Every (samples)", Widget: spikeEntry},
			{Text: "Shower Period", Widget: periodEntry},
			{Text: "Sample Rate", Widget: sampleRateEntry},
		},
		OnSubmit: func() {
			if v, err := strconv.ParseFloat(dryEntry.Text, 64); err == nil {
				state.cfg.Mock.DryLevel = v
			}
			if v, err := strconv.ParseFloat(wetEntry.Text, 64); err == nil {
				state.cfg.Mock.WetLevel = v
			}
			if v, err := strconv.ParseFloat(noiseEntry.Text, 64); err == nil {
				state.cfg.Mock.NoiseLevel = v
			}
			if v, err := strconv.Atoi(spikeEntry.Text); err == nil && v >= 0 {
				state.cfg.Mock.SpikeEvery = v
			}
			if d, err := time.ParseDuration(periodEntry.Text); err == nil && d > 0 {
				state.cfg.Mock.ShowerPeriod = d
			}
			if d, err := time.ParseDuration(sampleRateEntry.Text); err == nil && d > 0 {
				state.cfg.Mock.SampleRate = d
			}
			saveConfig(state)
		},
	}

	return container.NewTabItem("Mock", form)
}
