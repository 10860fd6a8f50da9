package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/sweeney/medclock/internal/clock"
	"github.com/sweeney/medclock/internal/config"
	"github.com/sweeney/medclock/internal/controller"
	"github.com/sweeney/medclock/internal/display"
	"github.com/sweeney/medclock/internal/gpio"
	"github.com/sweeney/medclock/internal/lock"
	"github.com/sweeney/medclock/internal/logger"
	"github.com/sweeney/medclock/internal/logic"
	"github.com/sweeney/medclock/internal/sensor"
	"github.com/sweeney/medclock/internal/sim"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the clock on the device hardware.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			setupLogging(cfg, false)
			defer logger.Sync()
			return runDevice(cmd.Context(), opts, cfg)
		},
	}
}

func runDevice(ctx context.Context, opts *rootOptions, cfg *config.Config) error {
	pid, err := lock.Acquire(opts.fs, cfg.PIDFile)
	if err != nil {
		return err
	}
	defer pid.Release()

	board, err := gpio.Open(cfg.GPIO.Chip, cfg.GPIO.Pins, cfg.Debounce, cfg.Repeat)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer board.Close()

	oled, err := display.OpenOLED(cfg.Display.Bus)
	if err != nil {
		return fmt.Errorf("init display: %w", err)
	}
	defer oled.Close()

	hw := hardware{
		Input:      board,
		Display:    oled,
		Sensor:     sensor.NewDHT(opts.fs, cfg.Sensor.Device),
		Indicators: board,
		Tone:       board,
	}
	return serve(ctx, cfg, hw)
}

func newSimCmd(opts *rootOptions) *cobra.Command {
	var temperature, humidity float64

	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Run the clock against a terminal panel instead of hardware.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			setupLogging(cfg, true)
			defer logger.Sync()

			panel := sim.NewPanel(temperature, humidity)
			hw := hardware{
				Input:      panel,
				Display:    panel,
				Sensor:     panel,
				Indicators: panel,
				Tone:       panel,
			}
			return serve(cmd.Context(), cfg, hw, func(ctx context.Context) error {
				return sim.Run(ctx, panel)
			})
		},
	}
	cmd.Flags().Float64Var(&temperature, "temperature", 26, "initial simulated temperature in C")
	cmd.Flags().Float64Var(&humidity, "humidity", 70, "initial simulated relative humidity in %")
	return cmd
}

// serve runs the clock on hw until it stops or the process is signalled.
func serve(ctx context.Context, cfg *config.Config, hw hardware, extra ...func(context.Context) error) error {
	svc := newServices(cfg)
	defer svc.close()

	ctl, err := newController(cfg, hw, clock.NewNTPSync(cfg.TimeServer(), 0), svc)
	if err != nil {
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	var heartbeat <-chan time.Time
	if cfg.Heartbeat > 0 {
		t := time.NewTicker(cfg.Heartbeat)
		defer t.Stop()
		heartbeat = t.C
	}

	logger.InfoKV(ctx, "started",
		"zone", logic.ZoneAt(cfg.Zone()).String(),
		"tick", cfg.Tick,
		"broker", cfg.MQTTBroker(),
		"http", cfg.StatusAddr(),
		"ntp", cfg.TimeServer(),
		"heartbeat", cfg.Heartbeat,
	)
	return runClock(ctx, ctl, svc, sig, heartbeat, extra...)
}

func newPrintStateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "print-state",
		Short: "Print the current time, environment and alarms, then exit.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			setupLogging(cfg, false)
			defer logger.Sync()

			return printState(cmd.OutOrStdout(), cfg,
				clock.NewNTPSync(cfg.TimeServer(), 0),
				sensor.NewDHT(opts.fs, cfg.Sensor.Device))
		},
	}
}

func printState(w io.Writer, cfg *config.Config, sync controller.ClockSync, sens controller.Sensor) error {
	ctx := context.Background()
	z := logic.ZoneAt(cfg.Zone())
	if err := sync.Synchronize(z.OffsetSeconds); err != nil {
		logger.Warnf(ctx, "clock sync failed: %v", err)
	}

	now := "--:--"
	if r, err := sync.Read(); err != nil {
		logger.Warnf(ctx, "read clock: %v", err)
	} else {
		now = r.String()
	}

	temp, err := sens.Temperature()
	if err != nil {
		logger.Warnf(ctx, "read temperature: %v", err)
		temp = math.NaN()
	}
	hum, err := sens.Humidity()
	if err != nil {
		logger.Warnf(ctx, "read humidity: %v", err)
		hum = math.NaN()
	}
	env := logic.Assess(temp, hum)

	alarms, err := config.ParseAlarms(cfg.Alarms)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Time: %s %s\n", now, z)
	fmt.Fprintf(w, "Temp: %s\n", formatReading(env.Temperature, "C", env.TempLevel))
	fmt.Fprintf(w, "Hum : %s\n", formatReading(env.Humidity, "%", env.HumidityLevel))
	for i := 0; i < logic.SlotCount; i++ {
		at := "--:--"
		if i < len(alarms) {
			if r, ok := alarms[i].Time(); ok {
				at = r.String()
			}
		}
		fmt.Fprintf(w, "Alarm %d: %s\n", i+1, at)
	}
	return nil
}

func formatReading(v float64, unit string, l logic.Level) string {
	if l == logic.LevelFault {
		return "-- " + string(l)
	}
	return fmt.Sprintf("%.2f%s %s", v, unit, l)
}

func newInitConfigCmd(opts *rootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init-config",
		Short: "Write the effective settings to the --config file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			exists, err := afero.Exists(opts.fs, opts.configPath)
			if err != nil {
				return fmt.Errorf("check %s: %w", opts.configPath, err)
			}
			if exists && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite it", opts.configPath)
			}

			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if err := config.Save(opts.fs, opts.configPath, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", opts.configPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing settings file")
	return cmd
}
