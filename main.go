package main

import (
	"github.com/sirupsen/logrus"

	"github.com/roverlink/roverctl_client/internal/app"
	"github.com/roverlink/roverctl_client/internal/config"
	"github.com/roverlink/roverctl_client/internal/link"
	"github.com/roverlink/roverctl_client/internal/transport/loopback"
	"github.com/roverlink/roverctl_client/internal/transport/serialport"
)

func main() {
	cfg := config.GetConfig()

	var transport link.TransportIFace
	switch cfg.Transport {
	case "loopback":
		// In-process rover double, for driving the client without hardware.
		transport = loopback.New()
	default:
		transport = serialport.New(cfg.SerialCfg)
	}

	app := app.NewApp(cfg, transport)

	err := app.Start()
	if err != nil {
		logrus.Errorf("client shutdown with error: %s", err.Error())
	} else {
		logrus.Infoln("client shutdown successfully")
	}
}
