package main

import (
	"context"
	"log"

	"github.com/Apurer/go-gin-orders-api/internal/app/api"
)

func main() {
	if err := api.Run(context.Background()); err != nil {
		log.Fatalf("orders API failed: %v", err)
	}
}
