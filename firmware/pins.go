package main

import "machine"

const (
	// Sampling configuration
	SAMPLE_INTERVAL_MS = 10 // ADC read interval in milliseconds

	// ADC configuration
	ADC_REFERENCE_MV = 3300 // Reference voltage in millivolts (3.3V)
	ADC_RESOLUTION   = 12   // ADC resolution in bits (12-bit = 0-4095)
	ADC_SHIFT        = 4    // machine.ADC.Get scales to 16 bits

	// Rain sensor analog output (AO of the comparator board)
	PIN_RAIN_ADC = machine.A1

	// Serial configuration
	// Console format: "unix_micros,value\n"
	// Example: "1234567890123456,4095\n" = ~22 bytes max per line
	// 100 outputs/sec * 22 bytes/line = 2,200 bytes/sec
	// UART 8N1: 10 bits/byte = 22,000 baud minimum
	// 115200 provides ~5x headroom
	CONSOLE_BAUD_RATE = 115200

	// Bluetooth SPP module (HC-05/HC-06) on the hardware UART, factory default baud
	BT_BAUD_RATE = 9600

	// Bytes forwarded per direction per loop pass
	BRIDGE_CHUNK = 32
)
