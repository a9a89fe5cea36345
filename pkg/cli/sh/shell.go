package sh

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/sonar.go/pkg/sim"
)

// Shell provides ishell backed interactive shell on a simulated rig.
type Shell struct {
	Interactive bool
	OutputJSON  bool

	Shell *ishell.Shell
	Rig   *sim.Rig
}

const (
	shellKey = "$shell"
	prompt   = "sonar > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&StatsCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(rig *sim.Rig) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell: ishell.New(),
		Rig:   rig,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(prompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// RigFrom gets the simulated rig from ishell context.
func RigFrom(c *ishell.Context) *sim.Rig {
	return ShellFrom(c).Rig
}

// PrintResult prints v as JSON when requested, or text otherwise.
func PrintResult(c *ishell.Context, v interface{}, text string) {
	if ShellFrom(c).OutputJSON {
		out, err := json.Marshal(v)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
		return
	}
	c.Println(text)
}

// Exec runs a single command line.
func (s *Shell) Exec(args ...string) error {
	return s.Shell.Process(args...)
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if len(args) > 0 {
		if err := s.Exec(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// StatsCmd prints the pipeline counters.
var StatsCmd = ishell.Cmd{
	Name:    "stats",
	Aliases: []string{"st"},
	Help:    "",
	Func: func(c *ishell.Context) {
		st := RigFrom(c).Pipeline.Stats()
		PrintResult(c, st, fmt.Sprintf(
			"triggers=%d pairs=%d conversions=%d renders=%d\n"+
				"timeouts: signal=%d data=%d\n"+
				"pulses: queued=%d dropped=%d (%s)\n"+
				"distances: queued=%d dropped=%d\n"+
				"signal=%v last=%q",
			st.Triggers, st.Pairs, st.Conversions, st.Renders,
			st.SignalTimeouts, st.DataTimeouts,
			st.PulsesQueued, st.PulsesDropped, st.Overflow,
			st.DistancesQueued, st.DistancesDropped,
			st.SignalRaised, st.LastText))
	},
}
