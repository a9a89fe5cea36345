// Package sensor adds simulated sensor commands to the shell.
package sensor

import (
	"fmt"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/sonar.go/pkg/cli/sh"
	"github.com/robotalks/sonar.go/pkg/hal"
	"github.com/robotalks/sonar.go/pkg/sim"
	"github.com/robotalks/sonar.go/pkg/sonar"
)

// SensorStatus is the JSON form of the sensor command.
type SensorStatus struct {
	Target float64 `json:"target"`
	Mode   string  `json:"mode"`
	Echoes uint64  `json:"echoes"`
	Missed uint64  `json:"missed"`
}

func setMode(m sim.Mode) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		sh.RigFrom(c).Echo.SetMode(m)
		c.Println("OK")
	}
}

var (
	// TargetCmd gets or sets the simulated distance.
	TargetCmd = ishell.Cmd{
		Name:    "target",
		Aliases: []string{"t"},
		Help:    "[DISTANCE(cm)]",
		Func: func(c *ishell.Context) {
			echo := sh.RigFrom(c).Echo
			if len(c.Args) < 1 {
				c.Println(echo.Target().String())
				return
			}
			val, err := strconv.ParseFloat(c.Args[0], 64)
			if err != nil {
				c.Err(fmt.Errorf("Invalid DISTANCE: %v", err))
				return
			}
			if err := echo.SetTarget(sonar.Distance(val)); err != nil {
				c.Err(err)
				return
			}
			c.Println("OK")
		},
	}

	// MuteCmd stops the simulated sensor from answering.
	MuteCmd = ishell.Cmd{
		Name: "mute",
		Help: "",
		Func: setMode(sim.ModeSilent),
	}

	// UnmuteCmd resumes echoes.
	UnmuteCmd = ishell.Cmd{
		Name: "unmute",
		Help: "",
		Func: setMode(sim.ModeEcho),
	}

	// GlitchCmd adds a spurious edge to the next echo.
	GlitchCmd = ishell.Cmd{
		Name:    "glitch",
		Aliases: []string{"g"},
		Help:    "rise|fall",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("EDGE required"))
				return
			}
			var edge hal.Edge
			switch c.Args[0] {
			case "rise", "rising":
				edge = hal.EdgeRising
			case "fall", "falling":
				edge = hal.EdgeFalling
			default:
				c.Err(fmt.Errorf("Invalid EDGE: %q", c.Args[0]))
				return
			}
			if err := sh.RigFrom(c).Echo.Glitch(edge); err != nil {
				c.Err(err)
				return
			}
			c.Println("OK")
		},
	}

	// SensorCmd prints the simulated sensor state.
	SensorCmd = ishell.Cmd{
		Name: "sensor",
		Help: "",
		Func: func(c *ishell.Context) {
			echo := sh.RigFrom(c).Echo
			st := SensorStatus{
				Target: float64(echo.Target()),
				Mode:   echo.Mode().String(),
				Echoes: echo.Echoes(),
				Missed: echo.Missed(),
			}
			sh.PrintResult(c, st, fmt.Sprintf("target=%.2f cm mode=%s echoes=%d missed=%d",
				st.Target, st.Mode, st.Echoes, st.Missed))
		},
	}

	// ShowCmd prints the last frame on the panel.
	ShowCmd = ishell.Cmd{
		Name:    "show",
		Aliases: []string{"s"},
		Help:    "",
		Func: func(c *ishell.Context) {
			rig := sh.RigFrom(c)
			c.Print(rig.Panel.String())
			if text := rig.Pipeline.Presenter.LastText(); text != "" {
				c.Println(text)
			}
		},
	}
)

func init() {
	sh.AddCmds(
		&TargetCmd,
		&MuteCmd,
		&UnmuteCmd,
		&GlitchCmd,
		&SensorCmd,
		&ShowCmd,
	)
}
