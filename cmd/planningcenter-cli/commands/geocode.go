package commands

import (
	"github.com/bpdavis86/planning-center-backend/lib/util/serviceutil"
	"github.com/bpdavis86/planning-center-backend/maps"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(geocodeCmd)
}

var geocodeCmd = &cobra.Command{
	Use:   "geocode <query>",
	Short: "Resolves a free-text address through the Google Maps API.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := readConfig()

		client, err := maps.NewClient(maps.ClientOptions{APIKey: cfg.MapsApiKey})
		if err != nil {
			serviceutil.Fatal("failed to initialize maps client", err)
		}

		geocode, err := client.Geocode(ctx, args[0])
		if err != nil {
			serviceutil.Fatal("failed to geocode query", err)
		}
		if geocode == nil {
			cmd.Println("no results")
			return
		}

		cmd.Printf("address: %s\n", geocode.FormattedAddress)
		cmd.Printf("place id: %s\n", geocode.PlaceID)
		cmd.Printf("location: %f, %f\n", geocode.Geometry.Location.Lat, geocode.Geometry.Location.Lng)
	},
}
