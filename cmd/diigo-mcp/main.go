package main

import (
	"log"

	"github.com/MrSnakeDoc/diigo-mcp/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("❌ diigo-mcp failed to start: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("❌ diigo-mcp failed: %v", err)
	}
}
