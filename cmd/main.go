package main

import (
	"github.com/storekit/fulfillment-svc/internal/app"
	"github.com/storekit/fulfillment-svc/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
