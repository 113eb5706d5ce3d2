package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/golang/glog"

	"hermes/host/api"
	"hermes/host/board"
	"hermes/host/bridge"
	"hermes/host/config"
	"hermes/host/runner"
	"hermes/host/serial"
)

var (
	configPath = flag.String("config", "", "Board configuration file (YAML)")
	device     = flag.String("device", "", "Serial device path, overrides the config")
	baud       = flag.Int("baud", 0, "Baud rate (ignored for USB CDC), overrides the config")
	udpAddr    = flag.String("udp", "", "Board UDP address host:port, overrides the config")
	serve      = flag.Bool("serve", false, "Run the HTTP API and MQTT bridge instead of the shell")
	command    = flag.Bool("e", false, "Run the command given as arguments and exit")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		glog.Flush()
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	port, err := openTransport(cfg.Board)
	if err != nil {
		return err
	}
	client := board.NewClient(port, board.Options{AckTimeout: cfg.Board.AckTimeout()})
	defer client.Close()

	b, err := board.New(cfg.Board.Name, client, cfg.ToDevices())
	if err != nil {
		return err
	}

	r := runner.New(context.Background()).HandleSignals()
	r.Go(runner.Named("board", runner.Func(func(ctx context.Context) error {
		// closing the port unblocks the read loop on cancel
		return runner.RunWithContextCloser(ctx, client, func() error { return b.Run(ctx) })
	})))

	glog.Infof("connecting to %s", cfg.Board.Name)
	if err := b.Connect(r.Context()); err != nil {
		return err
	}

	if *serve {
		return serveBoard(r, b, cfg)
	}

	sh := newShell(b)
	if *command {
		err = sh.Process(flag.Args()...)
	} else {
		sh.Run()
	}
	r.Stop()
	return errors.Join(err, r.Wait())
}

func loadConfig() (*config.Config, error) {
	data, err := config.ReadFile(*configPath)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Decode(data)
	if err != nil {
		return nil, err
	}

	// flags win over file and environment
	if *device != "" {
		cfg.Board.Device, cfg.Board.Transport = *device, config.TransportSerial
	}
	if *baud != 0 {
		cfg.Board.Baud = *baud
	}
	if *udpAddr != "" {
		cfg.Board.Address, cfg.Board.Transport = *udpAddr, config.TransportUDP
	}
	if err := config.Finish(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openTransport(b config.BoardConfig) (io.ReadWriteCloser, error) {
	switch b.Transport {
	case config.TransportUDP:
		conn, err := net.Dial("udp", b.Address)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", b.Address, err)
		}
		glog.Infof("board %s over udp %s", b.Name, b.Address)
		return conn, nil
	default:
		port, err := serial.Open(b.Serial())
		if err != nil {
			return nil, err
		}
		glog.Infof("board %s on %s", b.Name, b.Device)
		return port, nil
	}
}

func serveBoard(r *runner.Runner, b *board.Board, cfg *config.Config) error {
	if cfg.API.Listen == "" && cfg.MQTT.Broker == "" {
		return fmt.Errorf("-serve needs api.listen or mqtt.broker in the config")
	}
	if cfg.API.Listen != "" {
		h := api.NewRouter(b)
		r.Go(runner.Named("api", runner.Func(func(ctx context.Context) error {
			return api.Serve(ctx, cfg.API.Listen, h)
		})))
	}
	if cfg.MQTT.Broker != "" {
		br, err := bridge.New(cfg.Board.Name, b, bridge.Options{
			Broker:   cfg.MQTT.Broker,
			Prefix:   cfg.MQTT.Prefix,
			ClientID: cfg.MQTT.ClientID,
		})
		if err != nil {
			return err
		}
		r.Go(runner.Named("mqtt", br))
	}
	return r.Wait()
}
