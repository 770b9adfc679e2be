//go:generate tinygo flash -target=xiao

package main

import (
	"machine"
	"time"

	"github.com/itohio/gorain/pkg/rain"
)

var (
	adcRain machine.ADC
	console = machine.Serial
	bt      = machine.UART0

	pipeline = rain.New()

	// Timing
	boot        time.Time
	lastADCRead time.Time

	bridgeBuffer [BRIDGE_CHUNK]byte
)

func main() {
	PIN_RAIN_ADC.Configure(machine.PinConfig{Mode: machine.PinInput})
	adcRain = machine.ADC{Pin: PIN_RAIN_ADC}
	adcRain.Configure(machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	})

	console.Configure(machine.UARTConfig{BaudRate: CONSOLE_BAUD_RATE})
	bt.Configure(machine.UARTConfig{BaudRate: BT_BAUD_RATE})

	boot = time.Now()
	lastADCRead = boot

	// Main loop: never block, the bridge is serviced on every pass
	for {
		now := time.Now()

		forward(console, bt)
		forward(bt, console)

		if now.Sub(lastADCRead) >= time.Duration(SAMPLE_INTERVAL_MS)*time.Millisecond {
			lastADCRead = now
			sample(now)
		}

		// Small delay to prevent tight loop
		time.Sleep(100 * time.Microsecond)
	}
}

// sample reads the sensor, reports the raw value and feeds the pipeline.
func sample(now time.Time) {
	raw := int(adcRain.Get() >> ADC_SHIFT)

	// Output format: "unix_micros,value\n"
	print(now.UnixNano() / 1000)
	print(",")
	print(raw)
	print("\n")

	reading, ok := pipeline.OnSample(raw, now.Sub(boot))
	if !ok {
		return
	}

	bt.Write([]byte(reading.StatusLine()))

	// Display lines are comments for the host reader
	lines := reading.DisplayLines()
	print("# ", lines[0], "\n")
	print("# ", lines[1], "\n")
}

// bytePort is the part of a UART the bridge needs.
type bytePort interface {
	Buffered() int
	ReadByte() (byte, error)
	Write(p []byte) (int, error)
}

// forward copies up to one chunk of whatever src has buffered to dst.
func forward(src, dst bytePort) {
	n := 0
	for n < len(bridgeBuffer) && src.Buffered() > 0 {
		b, err := src.ReadByte()
		if err != nil {
			break
		}
		bridgeBuffer[n] = b
		n++
	}
	if n > 0 {
		dst.Write(bridgeBuffer[:n])
	}
}
