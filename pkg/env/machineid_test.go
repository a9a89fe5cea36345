package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMachineIDOr(t *testing.T) {
	id, err := MachineID()
	got := MachineIDOr("fallback")
	if err != nil {
		assert.Equal(t, "fallback", got)
		return
	}
	assert.Equal(t, id, got)
	assert.Len(t, got, 64, "protected ids are hex sha256")
}
