package main

import (
	"github.com/mimiro.io/kafka-source-layer/kafka-source-layer/internal/app"
)

func main() {
	app.Wire().Run()
}
