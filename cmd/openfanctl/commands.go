package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wayopenfan/wayopenfan/internal/discovery"
	"github.com/wayopenfan/wayopenfan/internal/monitor"
	"github.com/wayopenfan/wayopenfan/internal/openfan"
	"github.com/wayopenfan/wayopenfan/internal/transport"
	"github.com/wayopenfan/wayopenfan/internal/tui"
)

var scanTimeout int

func init() {
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(allCmd)
	rootCmd.AddCommand(watchCmd)
}

// discoverCmd lists controllers found on the network
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover OpenFan controllers on the network",
	Long: `Discover OpenFan controllers using mDNS/DNS-SD.

This command listens for mDNS broadcasts from OpenFan controllers and
displays all discovered controllers with their names and base URLs.`,
	Example: `  # Scan with the configured timeout (default 5s)
  openfanctl discover

  # Longer scan for slower networks
  openfanctl discover --timeout 15`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().IntVar(&scanTimeout, "timeout", 0, "Scan timeout in seconds (0 uses the configured value)")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	timeout := cfg.ScanTimeout()
	if scanTimeout > 0 {
		timeout = time.Duration(scanTimeout) * time.Second
	}

	if isTerminal() {
		fmt.Printf("Scanning for OpenFan controllers (timeout: %s)...\n\n", timeout)
	}

	devices, err := discoverDevices(timeout)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(devices) == 0 {
		fmt.Println("No controllers found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure the controller is powered on and connected to WiFi")
		fmt.Println("  - Verify your computer is on the same network segment")
		fmt.Println("  - Try increasing --timeout for slower networks")
		return nil
	}

	fmt.Printf("Found %d controller(s):\n\n", len(devices))
	for i, device := range devices {
		fmt.Printf("%d. %s\n", i+1, device.Name)
		fmt.Printf("   URL: %s\n\n", device.BaseURL)
	}

	fmt.Println("Use 'openfanctl status <name>' to read fan status")
	fmt.Println("Use 'openfanctl watch' for live monitoring")

	return nil
}

// statusCmd reads the current fan status from one controller
var statusCmd = &cobra.Command{
	Use:   "status <name>",
	Short: "Show fan status for a controller",
	Long: `Read the current fan status from a controller.

The controller is located by its discovered name, so a short network
scan runs first.`,
	Example: `  openfanctl status Desk`,
	Args:    cobra.ExactArgs(1),
	RunE:    runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	device, err := findDevice(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	status, err := openfan.NewClient().Status(ctx, device)
	if err != nil {
		return fmt.Errorf("failed to read status from %s: %w", device.Name, err)
	}

	fmt.Printf("%s (%s)\n", device.Name, device.BaseURL)
	fmt.Printf("  Speed: %d%%\n", status.PWMPercent)
	fmt.Printf("  RPM:   %d\n", status.RPM)

	return nil
}

// setCmd sets the fan speed on one controller
var setCmd = &cobra.Command{
	Use:   "set <name> <percent>",
	Short: "Set fan speed on a controller",
	Long: `Set the fan duty cycle on a controller.

The percent value must be between 0 and 100. A value of 0 stops the
fan.`,
	Example: `  # Half speed on the controller named Desk
  openfanctl set Desk 50

  # Stop the fan
  openfanctl set Desk 0`,
	Args: cobra.ExactArgs(2),
	RunE: runSet,
}

func runSet(cmd *cobra.Command, args []string) error {
	percent, err := parsePercent(args[1])
	if err != nil {
		return err
	}

	device, err := findDevice(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	if err := openfan.NewClient().SetSpeed(ctx, device, percent); err != nil {
		return fmt.Errorf("failed to set speed on %s: %w", device.Name, err)
	}

	printOK(fmt.Sprintf("%s set to %d%%", device.Name, percent))
	return nil
}

// allCmd sets the fan speed on every discovered controller
var allCmd = &cobra.Command{
	Use:   "all <percent>",
	Short: "Set fan speed on all controllers",
	Long: `Set the fan duty cycle on every controller found on the network.

Every controller is commanded even if some fail; the first failure is
reported after all attempts complete.`,
	Example: `  # Full speed everywhere
  openfanctl all 100

  # Stop all fans
  openfanctl all 0`,
	Args: cobra.ExactArgs(1),
	RunE: runAll,
}

func runAll(cmd *cobra.Command, args []string) error {
	percent, err := parsePercent(args[0])
	if err != nil {
		return err
	}

	devices, err := discoverDevices(cfg.ScanTimeout())
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	if len(devices) == 0 {
		return fmt.Errorf("no controllers found")
	}

	mon := monitor.New(openfan.NewClient(), nil, cfg.PollInterval())
	mon.SetDevices(devices)

	ctx, cancel := commandContext()
	defer cancel()

	if err := mon.SetAll(ctx, percent); err != nil {
		return fmt.Errorf("failed to set speed on all controllers: %w", err)
	}

	printOK(fmt.Sprintf("%d controller(s) set to %d%%", len(devices), percent))
	return nil
}

// watchCmd launches the interactive watch screen
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Launch the live watch screen",
	Long: `Launch an interactive view of every discovered controller.

The watch screen shows live speed and RPM readings and supports
keyboard control of individual fans and speed presets for all fans.`,
	Example: `  openfanctl watch
  # Or simply (watch is default):
  openfanctl`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	if !isTerminal() {
		return fmt.Errorf("watch requires an interactive terminal")
	}
	if err := tui.Run(cfg); err != nil {
		return fmt.Errorf("watch error: %w", err)
	}
	return nil
}

// discoverDevices runs a single bounded discovery cycle and returns the
// resulting snapshot.
func discoverDevices(timeout time.Duration) ([]discovery.Device, error) {
	engine := discovery.New(discovery.Options{
		Prefix:        cfg.ServicePrefix,
		BrowseTimeout: timeout,
		CycleInterval: cfg.ScanInterval(),
	})

	if err := engine.Start(); err != nil {
		return nil, err
	}
	defer engine.Stop()

	// One full browse window plus a small margin for the collector to
	// finish publishing.
	time.Sleep(timeout + 250*time.Millisecond)

	if err := engine.Err(); err != nil {
		return nil, err
	}
	return engine.Devices(), nil
}

// findDevice scans the network and returns the controller with the
// given name.
func findDevice(name string) (discovery.Device, error) {
	devices, err := discoverDevices(cfg.ScanTimeout())
	if err != nil {
		return discovery.Device{}, fmt.Errorf("scan failed: %w", err)
	}

	for _, device := range devices {
		if device.Name == name {
			return device, nil
		}
	}

	if len(devices) == 0 {
		return discovery.Device{}, fmt.Errorf("no controllers found")
	}

	fmt.Printf("Found %d controller(s):\n", len(devices))
	for i, device := range devices {
		fmt.Printf("%d. %s\n", i+1, device.Name)
	}
	return discovery.Device{}, fmt.Errorf("no controller named %q", name)
}

func parsePercent(arg string) (int, error) {
	percent, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid percent value %q", arg)
	}
	if percent < 0 || percent > 100 {
		return 0, fmt.Errorf("percent must be between 0 and 100, got %d", percent)
	}
	return percent, nil
}

// commandContext bounds a one-shot device command.
func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 2*transport.DefaultTimeout)
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func printOK(msg string) {
	if isTerminal() {
		fmt.Printf("✓ %s\n", msg)
	} else {
		fmt.Println(msg)
	}
}
