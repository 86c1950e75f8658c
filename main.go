package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/soar/joyinput/internal/config"
	"github.com/soar/joyinput/internal/console"
	"github.com/soar/joyinput/internal/device/linuxjs"
	"github.com/soar/joyinput/internal/device/sdlinput"
	"github.com/soar/joyinput/internal/hub"
	"github.com/soar/joyinput/internal/joystick"
	"github.com/soar/joyinput/internal/mqttlink"
	"github.com/soar/joyinput/internal/server"
	"github.com/soar/joyinput/internal/settings"
	"github.com/soar/joyinput/internal/tray"
)

var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.Fatalf("config: %v", err)
	}

	// Double-clicked on Windows: no console to press Ctrl+C in
	if !console.IsRunningFromConsole() {
		cfg.Tray = true
	}

	consoleShutdown := make(chan struct{})
	reregisterConsole := console.SetupConsoleHandler(consoleShutdown)

	dev, closeDev, err := openBackend(cfg.Backend)
	if err != nil {
		log.Fatalf("joystick backend: %v", err)
	}
	defer closeDev()
	reregisterConsole()

	if cfg.List {
		listJoysticks(dev)
		return
	}

	store, err := settings.Open(cfg.Settings)
	if err != nil {
		log.Fatalf("%v", err)
	}

	driver := joystick.New(dev, joystick.Options{
		PollInterval: cfg.PollInterval,
		IdleInterval: cfg.IdleInterval,
		Settings:     store,
	})
	if err := driver.LoadSettings(); err != nil {
		log.Printf("load settings: %v", err)
	}
	if err := driver.SetActiveJoystick(cfg.Joystick); err != nil {
		log.Printf("%v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, shutdownSignals...)

	if cfg.Debug {
		sub := driver.Subscribe(joystick.DefaultBuffer)
		defer sub.Close()
		go logEvents(sub)
	}

	var srv *server.Server
	serverErrCh := make(chan error, 1)
	if cfg.Listen != "" {
		h := hub.NewHub()
		sub := driver.Subscribe(joystick.DefaultBuffer)
		defer sub.Close()
		go hub.NewBroadcaster(h, driver).Run(ctx, sub.Events())

		srv = server.New(h, driver, cfg.Listen)
		go func() {
			if err := srv.ListenAndServe(); err != nil {
				serverErrCh <- err
			}
		}()
	}

	if cfg.MQTT.Broker != "" {
		link, err := mqttlink.Dial(mqttlink.Options{
			Broker:     cfg.MQTT.Broker,
			ClientID:   cfg.MQTT.ClientID,
			Topic:      cfg.MQTT.Topic,
			CanReverse: cfg.MQTT.CanReverse,
		})
		if err != nil {
			log.Printf("%v", err)
		} else {
			driver.SetVehicle(link)
			defer link.Close()
		}
	}

	shutdownRequested := make(chan struct{})
	var t *tray.Tray
	if cfg.Tray {
		t = tray.New(driver.Device().Name, statusURL(cfg.Listen), tray.Actions{
			StoreSettings: driver.StoreSettings,
			Shutdown:      func() { close(shutdownRequested) },
		})
		go t.Run()
	} else {
		log.Println("Press Ctrl+C to exit")
	}

	driverDone := make(chan struct{})
	go func() {
		driver.Run(ctx)
		close(driverDone)
	}()

	select {
	case <-sigCh:
		log.Println("Shutting down...")
	case <-consoleShutdown:
		log.Println("Shutting down...")
	case <-shutdownRequested:
		log.Println("Shutdown requested from tray")
	case err := <-serverErrCh:
		log.Printf("HTTP server error: %v", err)
	}

	if err := driver.Shutdown(); err != nil {
		log.Printf("store settings: %v", err)
	}
	<-driverDone
	cancel()

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
	}
	if t != nil {
		t.Quit()
	}

	log.Println("joyinput stopped")
}

func openBackend(name string) (joystick.Device, func(), error) {
	switch name {
	case config.BackendLinux:
		return linuxjs.New(), func() {}, nil
	default:
		b, err := sdlinput.Init()
		if err != nil {
			return nil, nil, err
		}
		return b, b.Close, nil
	}
}

func listJoysticks(dev joystick.Device) {
	n := dev.Count()
	if n == 0 {
		fmt.Println("no joysticks found")
		return
	}
	for id := 0; id < n; id++ {
		fmt.Printf("%d: %s\n", id, dev.Name(id))
	}
}

func logEvents(sub *joystick.Subscription) {
	for ev := range sub.Events() {
		switch ev := ev.(type) {
		case joystick.ButtonPressed:
			log.Printf("[DEBUG] button %d pressed", ev.Button)
		case joystick.ButtonReleased:
			log.Printf("[DEBUG] button %d released", ev.Button)
		case joystick.HatChanged:
			log.Printf("[DEBUG] hat x=%d y=%d", ev.X, ev.Y)
		case joystick.AxisChanged:
			log.Printf("[DEBUG] axis %d raw=%d value=%.3f", ev.Axis, ev.Raw, ev.Value)
		}
	}
}

func statusURL(listen string) string {
	if listen == "" {
		return ""
	}
	if strings.HasPrefix(listen, ":") {
		listen = "localhost" + listen
	}
	return "http://" + listen + "/api/status"
}
