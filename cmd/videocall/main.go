package main

import (
	"log/slog"

	"github.com/A-s-w-i-n/webRtc-videoCall/internal/cli"
	"github.com/A-s-w-i-n/webRtc-videoCall/internal/logging"
)

func main() {
	logging.Init(slog.LevelError)
	cli.Execute()
}
