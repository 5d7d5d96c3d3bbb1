package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	cobra "github.com/spf13/cobra"

	"sensehat-go/errcode"
	"sensehat-go/logging"
	"sensehat-go/services/board"
	"sensehat-go/services/board/platform"
	"sensehat-go/types"
)

const (
	envConfig   = "SENSEHAT_CONFIG"
	envLogLevel = "SENSEHAT_LOG_LEVEL"
)

type probeFlags struct {
	configPath string
	controller string
	logLevel   string
	concurrent bool
	fake       bool
}

// newRootCommand builds the probe command. It brings the board up once and
// prints where each device was found.
func newRootCommand(out io.Writer) *cobra.Command {
	var f probeFlags
	cmd := &cobra.Command{
		Use:           "sensehat-probe",
		Short:         "Locates a Sense HAT on the I2C bus and brings its sensors up",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe(out, f)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.configPath, "config", "", "YAML config file (default $"+envConfig+")")
	fl.StringVar(&f.controller, "controller", "", "pin an I2C controller by name; empty picks the first enumerated")
	fl.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error (default $"+envLogLevel+" or config)")
	fl.BoolVar(&f.concurrent, "concurrent", false, "bring the three sensors up concurrently")
	fl.BoolVar(&f.fake, "fake", false, "use an emulated board instead of the host buses")
	return cmd
}

// resolveConfig layers flags over environment over the config file.
func resolveConfig(f probeFlags) (board.Config, error) {
	path := f.configPath
	if path == "" {
		path = os.Getenv(envConfig)
	}
	cfg, err := board.LoadConfig(path)
	if err != nil {
		return board.Config{}, err
	}
	if lvl := os.Getenv(envLogLevel); lvl != "" {
		cfg.LogLevel = lvl
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	if f.controller != "" {
		cfg.Controller = f.controller
	}
	if f.concurrent {
		cfg.Mode = board.Concurrent.String()
	}
	return cfg, cfg.Validate()
}

func runProbe(out io.Writer, f probeFlags) error {
	cfg, err := resolveConfig(f)
	if err != nil {
		fmt.Fprintf(out, "config: %v\n", err)
		return err
	}
	log, err := logging.NewLoggerAt("sensehat-probe", cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	opts := []board.Option{board.WithConfig(cfg), board.WithLogger(log)}
	if f.fake {
		opts = append(opts, board.WithTransport(platform.NewBoardFake()))
	}
	b, err := board.NewProvider(opts...).Acquire()
	if err != nil {
		if kind := errcode.KindOf(err); kind != "" {
			fmt.Fprintf(out, "bring-up failed: %s (%s sensor)\n", errcode.Of(err), kind)
		} else {
			fmt.Fprintf(out, "bring-up failed: %s\n", errcode.Of(err))
		}
		log.Errorw("probe failed", "error", err)
		return err
	}
	printBoard(out, b)
	return nil
}

func printBoard(out io.Writer, b *board.Board) {
	fmt.Fprintf(out, "controller %s\n", b.Display().Controller())
	fmt.Fprintf(out, "  %-10s %s\n", "display", b.Display().Config())
	for _, s := range b.Sensors() {
		fmt.Fprintf(out, "  %-10s %s ready=%t\n", s.Kind(), joinAddrs(s.Addresses()), s.Ready())
	}
	fmt.Fprintf(out, "  %-10s %s\n", "fusion", b.IMU().Fusion())
}

func joinAddrs(addrs []types.DeviceAddress) string {
	parts := make([]string, len(addrs))
	for i, a := range addrs {
		parts[i] = a.String()
	}
	return strings.Join(parts, ",")
}
