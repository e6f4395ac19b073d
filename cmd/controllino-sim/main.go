package main

import (
	"context"
	"flag"
	"log"
	"strings"
	"syscall"

	"github.com/oklog/run"
	"github.com/simpleiot/controllino/device"
	"github.com/simpleiot/controllino/sim"
	"github.com/simpleiot/controllino/test"
)

// Runs a simulated Controllino on the A side of a fifo pair. Point the
// client at the same path:
//
//	controllino-sim -port /tmp/serialfifo &
//	controllino -port /tmp/serialfifo get A0
//
// The simulator announces itself once, later clients need -skipReady.
func main() {
	flagPort := flag.String("port", "/tmp/"+device.FifoPort, "fifo path, the base name must be "+device.FifoPort)
	flagPins := flag.String("pins", strings.Join(sim.DefaultPins, ","), "comma separated pin names")
	flagDebug := flag.Int("debug", 0, "debug level (0-9)")
	flag.Parse()

	log.Printf("Controllino sim on %v, pins: %v\n", *flagPort, *flagPins)

	fifo, err := test.NewFifoA(*flagPort)
	if err != nil {
		log.Fatal("Error creating fifo: ", err)
	}

	dev := sim.NewControllino(fifo, strings.Split(*flagPins, ","), *flagDebug)

	var g run.Group

	g.Add(dev.Run, dev.Stop)

	g.Add(run.SignalHandler(context.Background(),
		syscall.SIGINT, syscall.SIGTERM))

	if err := g.Run(); err != nil {
		log.Println("Controllino sim stopped, reason: ", err)
	}
}
