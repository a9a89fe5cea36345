//go:build linux

package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"log"
	"os"

	"github.com/golang/glog"
	"github.com/jonboulle/clockwork"

	"github.com/robotalks/sonar.go/pkg/console"
	"github.com/robotalks/sonar.go/pkg/display"
	fx "github.com/robotalks/sonar.go/pkg/framework"
	"github.com/robotalks/sonar.go/pkg/hal"
	"github.com/robotalks/sonar.go/pkg/sonar"
)

var (
	i2cBus     string
	serialPort string
	serialBaud = console.DefaultBaud
)

func init() {
	if val := os.Getenv("SONAR_SERIAL"); val != "" {
		serialPort = val
	}
	sonar.SetupFlags()
	flag.StringVar(&i2cBus, "i2c", i2cBus, "I2C bus of the SSD1306, empty for the first one.")
	flag.StringVar(&serialPort, "serial", serialPort, "Mirror console output to this serial port.")
	flag.IntVar(&serialBaud, "baud", serialBaud, "Serial port baud rate.")
}

func main() {
	flag.Parse()
	err := run()
	glog.Flush()
	if err != nil {
		log.Fatalln(err)
	}
}

func run() error {
	board, err := hal.NewPeriphBoard()
	if err != nil {
		return err
	}
	defer board.Close()

	panel := display.NewSSD1306Panel(i2cBus)
	defer panel.Close()

	con := console.Glog()
	if serialPort != "" {
		port, err := console.OpenSerial(serialPort, serialBaud)
		if err != nil {
			return err
		}
		defer port.Close()
		con = console.Multi(con, port)
	}

	cfg := sonar.NewConfig()
	pipeline, err := sonar.NewPipeline(cfg, board, display.NewCanvas(panel), clockwork.NewRealClock(), con)
	if err != nil {
		return err
	}
	glog.Infof("sonar %s: trigger GPIO%d echo GPIO%d", cfg.DeviceID, cfg.TriggerPin, cfg.EchoPin)

	return fx.NewRunner().HandleSignals().Go(pipeline).Wait()
}
