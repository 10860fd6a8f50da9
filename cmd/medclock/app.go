package main

import (
	"context"
	"errors"
	"os"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sweeney/medclock/internal/clock"
	"github.com/sweeney/medclock/internal/config"
	"github.com/sweeney/medclock/internal/controller"
	"github.com/sweeney/medclock/internal/logger"
	"github.com/sweeney/medclock/internal/mqtt"
	"github.com/sweeney/medclock/internal/status"
	"github.com/sweeney/medclock/internal/web"
)

// System event names.
const (
	eventStartup   = "STARTUP"
	eventShutdown  = "SHUTDOWN"
	eventHeartbeat = "HEARTBEAT"
)

// Shutdown reasons other than a signal name.
const (
	reasonInputClosed = "INPUT_CLOSED"
	reasonCancelled   = "CANCELLED"
)

// hardware is the set of collaborators a front end provides.
type hardware struct {
	Input      controller.Input
	Display    controller.Renderer
	Sensor     controller.Sensor
	Indicators controller.Indicators
	Tone       controller.Tone
}

type runner interface {
	Run(ctx context.Context) error
}

// services are the parts of a running clock that do not depend on the front end.
type services struct {
	publisher mqtt.Publisher
	tracker   *status.Tracker
	web       *web.Server
}

// newServices connects to the broker and prepares the status tracker and
// HTTP server named by cfg.
func newServices(cfg *config.Config) *services {
	tracker := status.NewTracker(time.Now(), status.Config{
		TickMs:      cfg.Tick.Milliseconds(),
		DebounceMs:  cfg.Debounce.Milliseconds(),
		RepeatMs:    cfg.Repeat.Milliseconds(),
		HeartbeatMs: cfg.Heartbeat.Milliseconds(),
		Broker:      cfg.MQTTBroker(),
		HTTPAddr:    cfg.StatusAddr(),
		NTPServer:   cfg.TimeServer(),
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	svc := &services{publisher: mqtt.Discard{}, tracker: tracker}
	if broker := cfg.MQTTBroker(); broker != "" {
		svc.publisher = mqtt.NewRealPublisher(broker, cfg.ClientID)
	}
	if addr := cfg.StatusAddr(); addr != "" {
		svc.web = web.New(addr, tracker)
	}
	return svc
}

// newController builds the controller for hw using the settings in cfg.
func newController(cfg *config.Config, hw hardware, sync controller.ClockSync, svc *services) (*controller.Controller, error) {
	alarms, err := config.ParseAlarms(cfg.Alarms)
	if err != nil {
		return nil, err
	}
	return controller.New(controller.Deps{
		Input:      hw.Input,
		Display:    hw.Display,
		Clock:      sync,
		Sensor:     hw.Sensor,
		Indicators: hw.Indicators,
		Tone:       hw.Tone,
		Timer:      clock.System{},
		Publisher:  svc.publisher,
		Tracker:    svc.tracker,
	}, controller.Options{
		Zone:   cfg.Zone(),
		Alarms: alarms,
		Tick:   cfg.Tick,
	}), nil
}

// runClock runs ctl and the background services until the controller stops,
// a signal arrives or ctx ends. STARTUP is published first and SHUTDOWN last.
// Extra tasks run alongside and stop with the controller.
func runClock(ctx context.Context, ctl runner, svc *services, sig <-chan os.Signal, heartbeat <-chan time.Time, extra ...func(context.Context) error) error {
	svc.systemEvent(ctx, eventStartup, "")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		signalled   string
		inputClosed bool
	)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		err := ctl.Run(gctx)
		switch {
		case err == nil:
			inputClosed = true
			return nil
		case errors.Is(err, context.Canceled):
			return nil
		default:
			return err
		}
	})

	g.Go(func() error {
		select {
		case s := <-sig:
			logger.Infof(ctx, "received %v, shutting down", s)
			signalled = signalName(s)
			cancel()
		case <-gctx.Done():
		}
		return nil
	})

	if heartbeat != nil {
		g.Go(func() error {
			svc.heartbeat(gctx, heartbeat)
			return nil
		})
	}

	if svc.web != nil {
		g.Go(func() error {
			if err := svc.web.Run(gctx); err != nil {
				logger.Errorf(ctx, "http server error: %v", err)
			}
			return nil
		})
	}

	for _, task := range extra {
		task := task
		g.Go(func() error {
			defer cancel()
			return task(gctx)
		})
	}

	err := g.Wait()

	reason := reasonCancelled
	switch {
	case signalled != "":
		reason = signalled
	case inputClosed:
		reason = reasonInputClosed
	}
	svc.systemEvent(context.WithoutCancel(ctx), eventShutdown, reason)
	return err
}

// systemEvent publishes a lifecycle event carrying a full status snapshot.
func (s *services) systemEvent(ctx context.Context, name, reason string) {
	s.refreshMQTT()
	snap := s.tracker.Snapshot()
	ev := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      name,
		Reason:     reason,
		Retained:   name != eventHeartbeat,
		RawPayload: status.FormatStatusEvent(snap, name, reason),
	}
	if err := s.publisher.PublishSystem(ev); err != nil {
		logger.Warnf(ctx, "failed to publish %s event: %v", strings.ToLower(name), err)
		return
	}
	logger.Debugf(ctx, "published %s event", strings.ToLower(name))
}

// heartbeat publishes a status snapshot on every tick until ctx ends.
func (s *services) heartbeat(ctx context.Context, tick <-chan time.Time) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			if net := readNetworkInfo(); net != nil {
				s.tracker.SetNetwork(net)
			}
			s.systemEvent(ctx, eventHeartbeat, "")
		}
	}
}

func (s *services) refreshMQTT() {
	if c, ok := s.publisher.(mqtt.ConnectionStatus); ok {
		s.tracker.SetMQTTConnected(c.IsConnected())
	}
	if b, ok := s.publisher.(interface{ Buffered() int }); ok {
		s.tracker.SetMQTTBuffered(b.Buffered())
	}
}

func (s *services) close() {
	if err := s.publisher.Close(); err != nil {
		logger.Warnf(context.Background(), "close mqtt: %v", err)
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	default:
		return "UNKNOWN"
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
