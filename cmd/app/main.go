package main

import (
	"github.com/onkar69483/CodeDrop-Desktop/internal/app"
	"github.com/onkar69483/CodeDrop-Desktop/internal/config"
)

func main() {
	app.Go(config.Load())
}
