package cli

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"github.com/quenby/photoframed/internal/cli/cmd/utils"
	"github.com/quenby/photoframed/internal/compositor"
	"github.com/quenby/photoframed/internal/effect"
	"github.com/quenby/photoframed/internal/overlay"
	"github.com/quenby/photoframed/internal/slideshow"
)

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("photoframed")
		viper.SetConfigType("toml")
		viper.AddConfigPath("$HOME/.config/photoframed")
		viper.AddConfigPath("/etc/xdg/photoframed")
	}

	viper.SetDefault("images_dir", "~/Pictures/photoframe")
	viper.SetDefault("shuffle", true)
	viper.SetDefault("delay", 30)
	viper.SetDefault("transition_duration", 2.0)
	viper.SetDefault("framerate", 30)
	viper.SetDefault("width", 1920)
	viper.SetDefault("height", 1080)
	viper.SetDefault("easing", "smoothstep")
	viper.SetDefault("effects", []string{})
	viper.SetDefault("stream_quality", 80)
	viper.SetDefault("weather_max_age", 30)
	viper.SetDefault("overlay.font", "")
	viper.SetDefault("overlay.time_size", 96)
	viper.SetDefault("overlay.date_size", 48)
	viper.SetDefault("overlay.color", "#ffffff")
	viper.SetDefault("overlay.margin_left", 50)
	viper.SetDefault("overlay.margin_right", 50)
	viper.SetDefault("overlay.margin_bottom", 50)
	viper.SetDefault("overlay.spacing", 10)
	viper.SetDefault("overlay.time_format", "")
	viper.SetDefault("overlay.date_format", "")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); notFound {
			log.Warn("no config file found, using defaults (run with -i to install one)")
		} else {
			log.Fatalf("Error reading config file: %v", err)
		}
	}
}

// CompositorConfig maps the resolved settings onto the compositor.
func CompositorConfig() compositor.Config {
	return compositor.Config{
		Width:           viper.GetInt("width"),
		Height:          viper.GetInt("height"),
		FrameRate:       viper.GetFloat64("framerate"),
		DefaultDuration: time.Duration(viper.GetFloat64("transition_duration") * float64(time.Second)),
		Easing:          effect.EasingByName(viper.GetString("easing")),
	}
}

// SlideshowConfig maps the resolved settings onto the slideshow manager.
func SlideshowConfig() slideshow.Config {
	return slideshow.Config{
		Dir:                utils.CanonicalPath(viper.GetString("images_dir")),
		Shuffle:            viper.GetBool("shuffle"),
		Delay:              time.Duration(viper.GetFloat64("delay") * float64(time.Second)),
		TransitionDuration: time.Duration(viper.GetFloat64("transition_duration") * float64(time.Second)),
		Effects:            viper.GetStringSlice("effects"),
	}
}

// OverlayConfig maps the [overlay] table onto the renderer.
func OverlayConfig() overlay.Config {
	return overlay.Config{
		FontPath:     utils.CanonicalPath(viper.GetString("overlay.font")),
		TimeSize:     viper.GetFloat64("overlay.time_size"),
		DateSize:     viper.GetFloat64("overlay.date_size"),
		Color:        viper.GetString("overlay.color"),
		MarginLeft:   viper.GetInt("overlay.margin_left"),
		MarginRight:  viper.GetInt("overlay.margin_right"),
		MarginBottom: viper.GetInt("overlay.margin_bottom"),
		Spacing:      viper.GetInt("overlay.spacing"),
		TimeFormat:   viper.GetString("overlay.time_format"),
		DateFormat:   viper.GetString("overlay.date_format"),
	}
}
