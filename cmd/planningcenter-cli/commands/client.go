package commands

import (
	"context"

	"github.com/bpdavis86/planning-center-backend/backend"
	"github.com/bpdavis86/planning-center-backend/lib/configutil"
	"github.com/bpdavis86/planning-center-backend/lib/restyutil"
	"github.com/bpdavis86/planning-center-backend/lib/util/serviceutil"
)

type Config struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	MapsApiKey string `json:"maps_api_key"`
}

func readConfig() Config {
	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	return cfg
}

// loginClient builds an authenticated session from config.json5.
func loginClient(ctx context.Context) (*backend.Client, Config) {
	cfg := readConfig()

	client, err := backend.NewClient(ctx, backend.ClientOptions{
		InstrumentOutput: restyutil.NewFilesystemOutput(".dev/resty/planningcenter"),
	})
	if err != nil {
		serviceutil.Fatal("failed to initialize client", err)
	}
	if err := client.Login(ctx, cfg.Username, cfg.Password); err != nil {
		serviceutil.Fatal("failed to login to Planning Center", err)
	}
	return client, cfg
}
