// hermes-sim runs the firmware core on simulated hardware behind a UDP
// port, so hermes-host can be used without a board:
//
//	hermes-sim -listen :5000 -v 1 -logtostderr
//	hermes-host -udp localhost:5000 -config board.yaml
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"

	"hermes/core"
	"hermes/host/runner"
	"hermes/host/sim"
	"hermes/protocol"
)

var (
	listen    = flag.String("listen", ":5000", "UDP address to listen on")
	debug     = flag.Bool("debug", true, "Enable firmware trace output")
	wireDebug = flag.Bool("wire-debug", false, "Send the trace to the host as debug lines instead of logging it")
	proceed   = flag.Bool("proceed-on-short-read", false, "Execute handlers on a truncated payload")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	if err := run(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		glog.Flush()
		os.Exit(1)
	}
}

func run() error {
	ep, err := protocol.ListenUDP(*listen)
	if err != nil {
		return err
	}
	defer ep.Close()

	cfg := core.DefaultConfig()
	cfg.Debug = *debug
	cfg.ProceedOnShortRead = *proceed

	b, err := sim.New(ep, ep, sim.Options{Config: cfg, WireDebug: *wireDebug})
	if err != nil {
		return err
	}
	glog.Infof("simulated board listening on %s", ep.Addr())

	r := runner.New(context.Background()).HandleSignals()
	r.Go(runner.Named("firmware", b))
	return r.Wait()
}
