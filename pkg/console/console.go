// Package console is the diagnostic text output of the tasks.
//
// Output is best effort: a sink that fails to write logs the error and
// carries on, tasks never see it.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/golang/glog"
)

// Console receives formatted diagnostic lines.
type Console interface {
	Printf(format string, args ...interface{})
}

// Func adapts a function to Console.
type Func func(format string, args ...interface{})

// Printf implements Console.
func (f Func) Printf(format string, args ...interface{}) {
	f(format, args...)
}

type glogConsole struct{}

func (glogConsole) Printf(format string, args ...interface{}) {
	glog.InfoDepth(1, strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
}

// Glog returns a console writing to the INFO log.
func Glog() Console {
	return glogConsole{}
}

// Discard drops everything.
var Discard Console = Func(func(string, ...interface{}) {})

// Writer writes lines to an io.Writer, one line per Printf.
type Writer struct {
	mu  sync.Mutex
	out io.Writer
}

// NewWriter creates a console writing to out.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Printf implements Console.
func (w *Writer) Printf(format string, args ...interface{}) {
	line := fmt.Sprintf(format, args...)
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := io.WriteString(w.out, line); err != nil {
		glog.Errorf("console write: %v", err)
	}
}

type multi []Console

func (m multi) Printf(format string, args ...interface{}) {
	for _, c := range m {
		c.Printf(format, args...)
	}
}

// Multi duplicates every line to all consoles, nil entries are skipped.
func Multi(consoles ...Console) Console {
	var m multi
	for _, c := range consoles {
		if c != nil {
			m = append(m, c)
		}
	}
	if len(m) == 1 {
		return m[0]
	}
	return m
}
