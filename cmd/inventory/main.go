package main

import (
	"context"
	"time"

	"github.com/M4kuro/budget-cloud-solution/config"
	"github.com/M4kuro/budget-cloud-solution/internal/app"
	"github.com/M4kuro/budget-cloud-solution/pkg/sigctx"
)

const closeTimeout = 5 * time.Second

func main() {
	sigCtx, closeApp := sigctx.NotifyContext()
	defer closeApp()

	cfg := config.Load()
	cfg.Print()

	inventoryService := app.New(sigCtx, cfg)

	inventoryService.Run(closeApp)

	<-sigCtx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	inventoryService.Close(ctx)
}
