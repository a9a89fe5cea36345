package console

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken")
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.Printf("trigger task")
	w.Printf("distance: %f cm\n", 10.187)
	assert.Equal(t, "trigger task\ndistance: 10.187000 cm\n", buf.String())
}

func TestWriterIgnoresErrors(t *testing.T) {
	w := NewWriter(failWriter{})
	assert.NotPanics(t, func() { w.Printf("lost") })
}

func TestMulti(t *testing.T) {
	var a, b bytes.Buffer
	var lines []string
	c := Multi(NewWriter(&a), nil, NewWriter(&b), Func(func(format string, args ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}))
	c.Printf("echo %s", "task")
	assert.Equal(t, "echo task\n", a.String())
	assert.Equal(t, "echo task\n", b.String())
	assert.Equal(t, []string{"echo task"}, lines)

	single := NewWriter(&a)
	assert.Equal(t, Console(single), Multi(nil, single))
}

func TestGlogAndDiscard(t *testing.T) {
	assert.NotPanics(t, func() {
		Glog().Printf("hello %d", 1)
		Discard.Printf("dropped")
	})
}
