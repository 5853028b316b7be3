// Package main is the entry point of the SignalBridge application.
// It loads the configuration, opens the controller serial port once,
// starts the bridge reader loop and the web dashboard, and waits for an
// interrupt signal to shut down.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"SignalBridge/internal/app"
	"SignalBridge/internal/core"
	"SignalBridge/internal/device"
	"SignalBridge/internal/metrics"
	"SignalBridge/internal/model"
	"SignalBridge/internal/util"
)

func main() {
	util.SetupLogger()

	cfgPath := flag.String("c", "configs/config.yml", "path to configuration file")
	flag.Parse()

	log.Printf("[main] using config: %s", *cfgPath)

	cfg, err := model.LoadConfig(*cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	dev := openController(cfg.Serial)

	bridge := core.NewBridge(dev, cfg.Intersections, cfg.LogLines, cfg.Serial.ReadTimeout())
	webApp, err := app.New(cfg.HTTP.Addr, bridge)
	if err != nil {
		log.Fatalf("failed to init web app: %v", err)
	}

	metrics.Register()
	bridge.OnLine(webApp.BroadcastLine)
	bridge.Start()

	go func() {
		if err := webApp.Start(); err != nil {
			log.Fatalf("web server: %v", err)
		}
	}()

	// wait for Ctrl+C or SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("[main] shutting down...")
	webApp.Stop()
	bridge.Stop()
	log.Println("[main] stopped cleanly.")
}

// openController opens the configured serial port. The port is opened
// exactly once: failure is not fatal, the bridge just runs permanently
// disconnected while the dashboard stays up.
func openController(cfg model.SerialConfig) device.Device {
	if cfg.Port == "" {
		log.Printf("[main] no serial port configured; candidates: %v", device.ListPorts())
		return nil
	}
	dev, err := device.NewSerialDevice(cfg.Port, cfg.Baud)
	if err != nil {
		log.Printf("[main] failed to connect to controller on %s: %v", cfg.Port, err)
		log.Printf("[main] available ports: %v", device.ListPorts())
		return nil
	}
	log.Printf("[main] connected to controller on %s (baud %d)", cfg.Port, cfg.Baud)
	if settle := cfg.Settle(); settle > 0 {
		// the controller resets when the port opens; let the firmware boot
		time.Sleep(settle)
	}
	return dev
}
