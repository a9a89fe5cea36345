package sonar

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/sonar.go/pkg/env"
	"github.com/robotalks/sonar.go/pkg/rtos"
)

// Config defines the configurations of the pipeline.
type Config struct {
	TriggerPin int
	EchoPin    int
	ButtonPins PinList
	LEDPins    PinList

	QueueCapacity int
	Overflow      rtos.OverflowPolicy
	Coupling      Coupling

	PulseWidth  time.Duration
	Period      time.Duration
	WaitTimeout time.Duration

	DeviceID string
}

var defaultConfig = Config{
	TriggerPin:    2,
	EchoPin:       3,
	ButtonPins:    PinList{28, 26, 27},
	LEDPins:       PinList{20, 21, 22},
	QueueCapacity: 32,
	Overflow:      rtos.DropNewest,
	Coupling:      CouplingPaired,
	PulseWidth:    10 * time.Millisecond,
	Period:        1000 * time.Millisecond,
	WaitTimeout:   100 * time.Millisecond,
}

func init() {
	if val, err := envInt("SONAR_TRIGGER_PIN"); err == nil {
		defaultConfig.TriggerPin = val
	}
	if val, err := envInt("SONAR_ECHO_PIN"); err == nil {
		defaultConfig.EchoPin = val
	}
	if val := os.Getenv("SONAR_COUPLING"); val != "" {
		if err := defaultConfig.Coupling.Set(val); err != nil {
			glog.Warningf("SONAR_COUPLING: %v", err)
		}
	}
	defaultConfig.DeviceID = env.MachineIDOr("sonar")
}

func envInt(name string) (int, error) {
	val := os.Getenv(name)
	if val == "" {
		return 0, fmt.Errorf("%s not set", name)
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		glog.Warningf("%s: %v", name, err)
	}
	return n, err
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.IntVar(&defaultConfig.TriggerPin, "trigger-pin", defaultConfig.TriggerPin, "Trigger GPIO")
	flag.IntVar(&defaultConfig.EchoPin, "echo-pin", defaultConfig.EchoPin, "Echo GPIO")
	flag.Var(&defaultConfig.ButtonPins, "button-pins", "Comma separated button GPIOs")
	flag.Var(&defaultConfig.LEDPins, "led-pins", "Comma separated LED GPIOs")
	flag.IntVar(&defaultConfig.QueueCapacity, "queue-cap", defaultConfig.QueueCapacity, "Capacity of pulse and distance queues")
	flag.Var(&defaultConfig.Overflow, "overflow", "Full queue policy: drop-newest or drop-oldest")
	flag.Var(&defaultConfig.Coupling, "coupling", "Display coupling: paired or semaphore")
	flag.DurationVar(&defaultConfig.PulseWidth, "pulse-width", defaultConfig.PulseWidth, "Trigger pulse width")
	flag.DurationVar(&defaultConfig.Period, "period", defaultConfig.Period, "Delay between trigger pulses")
	flag.DurationVar(&defaultConfig.WaitTimeout, "wait-timeout", defaultConfig.WaitTimeout, "Display wait bound")
	flag.StringVar(&defaultConfig.DeviceID, "id", defaultConfig.DeviceID, "Device ID")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	conf.ButtonPins = append(PinList(nil), defaultConfig.ButtonPins...)
	conf.LEDPins = append(PinList(nil), defaultConfig.LEDPins...)
	return &conf
}

// Validate checks the config is usable.
func (c *Config) Validate() error {
	if c.TriggerPin < 0 || c.EchoPin < 0 {
		return fmt.Errorf("invalid trigger/echo pin %d/%d", c.TriggerPin, c.EchoPin)
	}
	if c.TriggerPin == c.EchoPin {
		return fmt.Errorf("trigger and echo share pin %d", c.EchoPin)
	}
	if c.QueueCapacity <= 0 {
		return fmt.Errorf("invalid queue capacity %d", c.QueueCapacity)
	}
	if c.PulseWidth <= 0 || c.Period <= 0 || c.WaitTimeout <= 0 {
		return fmt.Errorf("pulse width, period and wait timeout must be positive")
	}
	if c.Coupling != CouplingPaired && c.Coupling != CouplingSemaphore {
		return fmt.Errorf("invalid coupling %v", c.Coupling)
	}
	return nil
}

// PinList is a flag.Value of comma separated GPIO numbers.
type PinList []int

// String implements flag.Value.
func (l *PinList) String() string {
	if l == nil {
		return ""
	}
	strs := make([]string, len(*l))
	for i, id := range *l {
		strs[i] = strconv.Itoa(id)
	}
	return strings.Join(strs, ",")
}

// Set implements flag.Value.
func (l *PinList) Set(s string) error {
	var ids PinList
	for _, str := range strings.Split(s, ",") {
		str = strings.TrimSpace(str)
		if str == "" {
			continue
		}
		id, err := strconv.Atoi(str)
		if err != nil {
			return fmt.Errorf("invalid pin %q", str)
		}
		ids = append(ids, id)
	}
	*l = ids
	return nil
}
