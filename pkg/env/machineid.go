// Package env describes the machine the ranger runs on.
package env

import (
	"github.com/denisbrodbeck/machineid"
)

// AppID salts the machine id so the raw id never leaves the host.
const AppID = "sonar.go"

// MachineID retrieves the unique ID identifying the machine.
func MachineID() (string, error) {
	return machineid.ProtectedID(AppID)
}

// MachineIDOr is MachineID falling back to fallback when the host has no id,
// as in most containers.
func MachineIDOr(fallback string) string {
	id, err := MachineID()
	if err != nil || id == "" {
		return fallback
	}
	return id
}
