package main

import (
	"github.com/bpdavis86/planning-center-backend/cmd/planningcenter-cli/commands"
	"github.com/bpdavis86/planning-center-backend/lib/telemetry"
	"github.com/bpdavis86/planning-center-backend/lib/util/serviceutil"
)

func main() {
	ctx := serviceutil.SignalContext()
	telemetry.SetupFromEnv(ctx, "planningcenter-cli")
	telemetry.InitSlog(true)
	commands.ExecuteContext(ctx)
}
