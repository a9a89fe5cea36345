package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/sonar.go/pkg/cli/sh"
	"github.com/robotalks/sonar.go/pkg/console"
	"github.com/robotalks/sonar.go/pkg/display"
	"github.com/robotalks/sonar.go/pkg/display/window"
	fx "github.com/robotalks/sonar.go/pkg/framework"
	"github.com/robotalks/sonar.go/pkg/sim"
	"github.com/robotalks/sonar.go/pkg/sonar"

	_ "github.com/robotalks/sonar.go/pkg/cli/cmds/sensor"
)

var (
	showWindow  bool
	windowScale = 4
	printFrames bool
	quiet       bool
	settle      = 3 * time.Second
)

func init() {
	sonar.SetupFlags()
	flag.BoolVar(&showWindow, "window", showWindow, "Preview the panel in a desktop window.")
	flag.IntVar(&windowScale, "scale", windowScale, "Window pixels per panel pixel.")
	flag.BoolVar(&printFrames, "frames", printFrames, "Print every frame as ASCII art.")
	flag.BoolVar(&quiet, "quiet", quiet, "Send console output to the log instead of stdout.")
	flag.DurationVar(&settle, "settle", settle, "How long to run before evaluating a command line.")
}

func main() {
	flag.Parse()

	var panels []display.Panel
	if printFrames {
		panels = append(panels, display.NewTerminalPanel(os.Stdout))
	}
	var win *window.Panel
	if showWindow {
		win = window.New("sonar-sim", windowScale)
		panels = append(panels, win)
	}
	con := console.Console(console.NewWriter(os.Stdout))
	if quiet {
		con = console.Glog()
	}

	rig, err := sim.NewRig(sonar.NewConfig(), nil, con, panels...)
	if err != nil {
		log.Fatalln(err)
	}

	runner := fx.NewRunner().HandleSignals().Go(rig)
	ctx := runner.Context

	shell := sh.New(rig)
	go func() {
		defer runner.Stop()
		if args := flag.Args(); len(args) > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(settle):
			}
			shell.Run(args...)
			return
		}
		shell.Run()
	}()

	// the window has to own the main goroutine.
	if win != nil {
		if err := win.Run(ctx); err != nil {
			glog.Error(err)
		}
		runner.Stop()
	}
	if err := runner.Wait(); err != nil {
		log.Fatalln(err)
	}
}
