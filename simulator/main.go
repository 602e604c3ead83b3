package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/muhirwa45/E-moto/infra/logger"
)

func main() {
	cfg := parseFlags()
	if err := (&cfg).Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}
	level := "info"
	if cfg.Verbose {
		level = "debug"
	}
	if err := logger.Configure(logger.Config{Level: level, Format: "console"}); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	log := logger.New("simulator")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli, err := newMQTTClient(cfg.Broker, cfg.ClientID)
	if err != nil {
		log.Errorf("mqtt connect: %v", err)
		os.Exit(1)
	}
	defer cli.Disconnect(250)

	stations := NewStations(cli, RandomAck{Delay: cfg.AckLatency, DropRate: cfg.DropRate, RejectRate: cfg.RejectRate})
	token := cli.Subscribe(dispatchFilter, 1, func(_ paho.Client, m paho.Message) {
		stations.Handle(ctx, m.Topic(), m.Payload())
	})
	if token.Wait() && token.Error() != nil {
		log.Errorf("subscribe %s: %v", dispatchFilter, token.Error())
		os.Exit(1)
	}
	if cfg.Device != "" {
		go NewRider(cfg.Device).Run(ctx, cli, cfg.Interval)
	}
	log.Infof("simulator connected to %s", cfg.Broker)
	<-ctx.Done()
	stations.Wait()
}

func parseFlags() Config {
	var cfg Config
	flag.StringVar(&cfg.Broker, "broker", "tcp://localhost:1883", "MQTT broker URL")
	flag.StringVar(&cfg.ClientID, "client-id", "emoto-simulator", "MQTT client id")
	flag.DurationVar(&cfg.AckLatency, "ack-latency", 2*time.Second, "delay before a station answers")
	flag.Float64Var(&cfg.DropRate, "drop-rate", 0, "probability an order is never answered")
	flag.Float64Var(&cfg.RejectRate, "reject-rate", 0, "probability an order is declined")
	flag.StringVar(&cfg.Device, "device", "", "stream rider location for this device id")
	flag.DurationVar(&cfg.Interval, "interval", time.Second, "rider update interval")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "enable debug logs")
	flag.Parse()
	return cfg
}
