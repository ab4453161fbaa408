package main

import (
	"prepwise/cmd/cmd"
	"prepwise/internal/logger"
)

func main() {
	logger.Init()
	cmd.Execute()
}
