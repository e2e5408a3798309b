package cli

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	daemon "github.com/sevlyar/go-daemon"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quenby/photoframed"
	"github.com/quenby/photoframed/internal/cli/cmd"
	"github.com/quenby/photoframed/internal/cli/cmd/utils"
)

// rootCmd runs the daemon itself; subcommands talk to a running instance.
var rootCmd = &cobra.Command{
	Use:   "photoframed",
	Short: "A digital photo frame daemon",
	Long: `Photoframed runs a fullscreen photo slideshow with animated
transitions and a clock/weather overlay, composed at a fixed frame rate
and served to display and stream sinks.`,
	Run: func(c *cobra.Command, args []string) {
		if v, err := c.Flags().GetBool("show-config"); err == nil && v {
			log.Infof("Using config file: %v", viper.ConfigFileUsed())
			log.Infof("All settings:")
			utils.PrintJSONColored(viper.AllSettings())
			return
		}

		if v, err := c.Flags().GetBool("version"); err == nil && v {
			babyBlue := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
			green := lipgloss.NewStyle().Foreground(lipgloss.Color("76"))
			log.Infof("%v version %v",
				babyBlue.Render("photoframed"),
				green.Render(strings.Trim(photoframed.Version, "\n\r ")))
			return
		}

		if v, err := c.Flags().GetBool("installconfig"); err == nil && v {
			utils.InstallDefaultConfig()
			return
		}

		if v, err := c.Flags().GetBool("debug"); err == nil && v {
			log.SetLevel(log.DebugLevel)
		}

		opts := daemonOptions(c)
		if bg, err := c.Flags().GetBool("background"); err == nil && bg {
			runInBackground(opts)
			return
		}
		cmd.StartDaemon(opts)
	},
}

func daemonOptions(c *cobra.Command) cmd.Options {
	preview, _ := c.Flags().GetBool("preview")
	return cmd.Options{
		Compositor:    CompositorConfig(),
		Slideshow:     SlideshowConfig(),
		Overlay:       OverlayConfig(),
		StreamQuality: viper.GetInt("stream_quality"),
		WeatherMaxAge: time.Duration(viper.GetInt("weather_max_age")) * time.Minute,
		Preview:       preview,
	}
}

// runInBackground forks a detached child and returns in the parent. The
// preview sink needs a terminal, so it is always off in the background.
func runInBackground(opts cmd.Options) {
	runDir := os.Getenv("XDG_RUNTIME_DIR")
	if runDir == "" {
		runDir = os.TempDir()
	}

	cntxt := &daemon.Context{
		PidFileName: filepath.Join(runDir, "photoframed.pid"),
		PidFilePerm: 0644,
		Umask:       027,
		Env:         append(os.Environ(), "BACKGROUND_PROCESS=1"),
	}

	child, err := cntxt.Reborn()
	if err != nil {
		log.Fatalf("Failed to daemonize: %v", err)
	}
	if child != nil {
		log.Infof("photoframed started in the background, PID %d", child.Pid)
		return
	}
	defer func() {
		if err := cntxt.Release(); err != nil {
			log.Errorf("Failed to release daemon context: %v", err)
		}
	}()

	cmd.SetupRotatingLogger()
	opts.Preview = false
	cmd.StartDaemon(opts)
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var cfgFile string

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/photoframed/photoframed.toml)")
	rootCmd.PersistentFlags().BoolP("installconfig", "i", false, "Install a default config file")
	rootCmd.PersistentFlags().Bool("show-config", false, "Dump resolved config")
	rootCmd.PersistentFlags().BoolP("background", "b", false, "Run as a daemon")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolP("version", "v", false, "Print version")
	rootCmd.PersistentFlags().BoolP("preview", "p", false, "Show a terminal preview of composed frames")
	rootCmd.PersistentFlags().BoolP("help", "h", false, "Print usage")

	rootCmd.AddCommand(
		cmd.NewStatusCmd(),
		cmd.NewNextCmd(),
		cmd.NewStopCmd(),
		cmd.NewLoadCmd(),
		cmd.NewRescanCmd(),
		cmd.NewWeatherCmd(),
		cmd.NewGenManCmd(rootCmd),
	)
}
