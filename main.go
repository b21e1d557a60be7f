package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xopoww/go-volcloud/config"
)

func init() {
	// This is needed to arrange that main() runs on main thread.
	// See documentation for functions that are only allowed to be called from the main thread.
	runtime.LockOSThread()
}

var (
	configPath string
	width      int
	height     int
	shaderDir  string
	logLevel   string
	noWatch    bool
)

var rootCmd = &cobra.Command{
	Use:   "volcloud",
	Short: "Real-time volumetric clouds rendered with OpenGL compute shaders",
	Long: `volcloud generates Perlin-Worley, Worley and weather noise maps once on the
GPU and ray-marches a cloud layer through them every frame.

The compute shaders (perlinworley.comp, worley.comp, weather.comp and
RayMarch.comp) are read from the shader directory.

Controls:
  W/A/S/D, Space, Left Shift   move
  keypad 8/2/4/6/7/9           rotate
  V/C                          field of view
  1/2 3/4 5/6 7/8 9/0 -/=      coverage, density, absorption, crispiness,
                               speed, curliness
  P                            pause animation
  F3                           screenshot`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err := cfg.Log.NewLogger()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		if err := run(cmd.Context(), cfg, configPath, logger); err != nil {
			logger.Error("render loop failed", zap.Error(err))
			return err
		}
		return nil
	},
}

var printConfigCmd = &cobra.Command{
	Use:   "print-config",
	Short: "Print the effective configuration as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		data, err := cfg.Marshal()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	flags.IntVar(&width, "width", 0, "window width (overrides config)")
	flags.IntVar(&height, "height", 0, "window height (overrides config)")
	flags.StringVar(&shaderDir, "shaders", "", "compute shader directory (overrides config)")
	flags.StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides config)")
	flags.BoolVar(&noWatch, "no-watch", false, "do not reload config and shaders on change")

	rootCmd.AddCommand(printConfigCmd)
}

// loadConfig reads the config file, if any, and applies flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return config.Config{}, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("width") {
		cfg.Window.Width = width
	}
	if flags.Changed("height") {
		cfg.Window.Height = height
	}
	if flags.Changed("shaders") {
		cfg.Shaders.Dir = shaderDir
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if noWatch {
		cfg.Shaders.Watch = false
	}
	return cfg, cfg.Validate()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
