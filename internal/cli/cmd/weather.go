package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/quenby/photoframed/internal/ipc"
	"github.com/quenby/photoframed/internal/weather"
)

// NewWeatherCmd pushes a weather snapshot to the daemon's overlay. It is
// meant to be driven from cron or a home automation hook.
func NewWeatherCmd() *cobra.Command {
	var (
		temp        float64
		unit        string
		description string
		humidity    float64
		wind        float64
		windUnit    string
	)

	cmd := &cobra.Command{
		Use:   "weather",
		Short: "Update the weather shown on the overlay",
		Run: func(cmd *cobra.Command, args []string) {
			snap := weather.Snapshot{
				Temperature: temp,
				Unit:        unit,
				Description: description,
				WindUnit:    windUnit,
			}
			if cmd.Flags().Changed("humidity") {
				snap.Humidity = &humidity
			}
			if cmd.Flags().Changed("wind") {
				snap.WindSpeed = &wind
			}

			if _, err := ipc.SendWeather(snap); err != nil {
				log.Fatalf("Failed to send 'weather' command: %v", err)
			}
			log.Infof("Weather updated: %v", snap.TempString())
		},
	}

	cmd.Flags().Float64Var(&temp, "temp", 0, "Temperature")
	cmd.Flags().StringVar(&unit, "unit", "C", "Temperature unit (C or F)")
	cmd.Flags().StringVar(&description, "description", "", "Conditions, e.g. 'partly cloudy'")
	cmd.Flags().Float64Var(&humidity, "humidity", 0, "Relative humidity percentage")
	cmd.Flags().Float64Var(&wind, "wind", 0, "Wind speed")
	cmd.Flags().StringVar(&windUnit, "wind-unit", "km/h", "Wind speed unit")
	cmd.MarkFlagRequired("temp")

	return cmd
}
