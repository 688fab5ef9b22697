package main

import (
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/srg/anovamon/config"
	"github.com/srg/anovamon/internal/anova"
	"github.com/srg/anovamon/monitor"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the connection monitor for an appliance",
	Long: `Connects to the appliance, keeps the session alive and prints a status
line on every device state change.

Examples:
  # Monitor a device by address
  anovamon run --address 01:02:03:04:05:06

  # Use a config file, ask the device to report Fahrenheit
  anovamon run --config anova.yaml --unit f

The monitor reconnects automatically on connection loss. Press Ctrl+C to
stop; the device is disconnected cleanly before exit.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

var (
	runAddress string
	runName    string
	runConfig  string
	runUnit    string
)

func init() {
	runCmd.Flags().StringVar(&runAddress, "address", "", "Device address (required unless set in the config file)")
	runCmd.Flags().StringVar(&runName, "name", "", "Device display name")
	runCmd.Flags().StringVar(&runConfig, "config", "", "YAML configuration file")
	runCmd.Flags().StringVar(&runUnit, "unit", "", "Temperature unit to request on startup (c or f)")
}

func runRun(cmd *cobra.Command, _ []string) error {
	cfg := config.Default()
	if runConfig != "" {
		var err error
		if cfg, err = config.Load(runConfig); err != nil {
			return err
		}
	}
	if runAddress != "" {
		cfg.Address = runAddress
	}
	if runName != "" {
		cfg.Name = runName
	}
	if logLevel, _ := cmd.Flags().GetString("log-level"); logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var startupUnit monitor.TemperatureUnit
	if runUnit != "" {
		var ok bool
		if startupUnit, ok = parseUnit(runUnit); !ok {
			return fmt.Errorf("invalid unit %q (must be c or f)", runUnit)
		}
	}

	// All arguments validated - don't show usage on runtime errors
	cmd.SilenceUsage = true

	logger := cfg.NewLogger()
	state := monitor.NewState(cfg.Name, cfg.Address)
	client := anova.NewBLEClient(logger)
	mon := monitor.New(state, client, cfg.MonitorOptions(), logger)

	progress := NewProgressPrinter(fmt.Sprintf("Monitoring %s (%s)", cfg.Name, cfg.Address), "Connecting")
	progress.Start()
	defer progress.Stop()

	// Render state changes once the first full reading is in; until then
	// the progress line covers the connect/poll warm-up.
	var rendering atomic.Bool
	state.OnChange(func() {
		snap := state.Read()
		if snap.Available && rendering.CompareAndSwap(false, true) {
			progress.Stop()
		}
		if rendering.Load() {
			renderState(snap)
		}
	})

	mon.Start()
	if startupUnit != "" {
		mon.RequestSetTemperatureUnit(startupUnit)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	progress.Stop()
	logger.Info("Stopping monitor...")
	mon.Terminate()
	return nil
}

func parseUnit(s string) (monitor.TemperatureUnit, bool) {
	switch s {
	case "c", "celsius":
		return monitor.UnitCelsius, true
	case "f", "fahrenheit":
		return monitor.UnitFahrenheit, true
	default:
		return "", false
	}
}

// renderState prints one status line for a state snapshot
func renderState(snap monitor.Snapshot) {
	if !snap.Available {
		fmt.Printf("%s: %s\n", snap.Name, color.RedString("unavailable"))
		return
	}

	mode := color.YellowString(string(snap.Mode))
	if snap.Mode == monitor.ModeHeat {
		mode = color.GreenString(string(snap.Mode))
	}
	min, max := monitor.TemperatureBounds(snap.Unit)
	fmt.Printf("%s: %s  current %s  target %s  [%g-%g%s]\n",
		snap.Name, mode,
		formatTemperature(snap.CurrentTemperature, snap.Unit),
		formatTemperature(snap.TargetTemperature, snap.Unit),
		min, max, unitSymbol(snap.Unit))
}

func formatTemperature(v *float64, unit monitor.TemperatureUnit) string {
	if v == nil {
		return "--"
	}
	return fmt.Sprintf("%.1f%s", *v, unitSymbol(unit))
}

func unitSymbol(unit monitor.TemperatureUnit) string {
	if unit == monitor.UnitFahrenheit {
		return "°F"
	}
	return "°C"
}
