// Command rain-bridge forwards bytes between two serial ports, for example
// the sensor console and a Bluetooth SPP port.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/itohio/gorain/pkg/bridge"
	"github.com/itohio/gorain/pkg/sensor"
	"go.uber.org/zap"
)

func main() {
	var (
		aFlag     = flag.String("a", "/dev/ttyUSB0", "First serial port")
		aBaudFlag = flag.Int("a-baud", sensor.DefaultBaudRate, "First port baud rate")
		bFlag     = flag.String("b", "/dev/rfcomm0", "Second serial port")
		bBaudFlag = flag.Int("b-baud", 9600, "Second port baud rate")
		debugFlag = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	var (
		zl  *zap.Logger
		err error
	)
	if *debugFlag {
		zl, err = zap.NewDevelopment()
	} else {
		zl, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "can't initialize zap logger: %v\n", err)
		os.Exit(1)
	}
	defer zl.Sync()
	logger := zl.Sugar()

	a, err := sensor.OpenPort(*aFlag, *aBaudFlag)
	if err != nil {
		logger.Fatalw("failed to open port", "port", *aFlag, "error", err)
	}
	b, err := sensor.OpenPort(*bFlag, *bBaudFlag)
	if err != nil {
		a.Close()
		logger.Fatalw("failed to open port", "port", *bFlag, "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Infow("bridging", "a", *aFlag, "b", *bFlag)

	br := bridge.New(a, b, logger.Named("bridge"))
	if err := br.Run(ctx); err != nil {
		logger.Errorw("bridge stopped", "error", err)
	}

	stats := br.Stats()
	logger.Infow("bridge closed", "a_to_b", stats.AToB, "b_to_a", stats.BToA)
}
