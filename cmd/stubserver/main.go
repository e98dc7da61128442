package main

import (
	"context"
	"log"

	"github.com/fhuaranca/dniadmin/internal/stubapi"
)

func main() {

	ctx := context.Background()
	cfg := stubapi.LoadConfig()
	app, err := stubapi.NewApp(cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	if err := app.Run(ctx); err != nil {
		log.Printf("%v", err)
	}

}
