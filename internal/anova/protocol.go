package anova

import (
	"fmt"
	"strconv"
	"strings"
)

// GATT endpoints of the appliance. The whole protocol runs over a single
// characteristic: commands are written to it, responses arrive as
// notifications on it.
const (
	ServiceUUID        = "ffe0"
	CharacteristicUUID = "ffe1"
)

// Wire commands. ASCII, terminated with '\r', max 20 bytes per GATT write.
const (
	cmdReadUnit       = "read unit"
	cmdSetUnit        = "set unit %s"
	cmdStatus         = "status"
	cmdStart          = "start"
	cmdStop           = "stop"
	cmdReadTemp       = "read temp"
	cmdReadTargetTemp = "read set temp"
	cmdSetTargetTemp  = "set temp %s"
)

const (
	commandTerminator = "\r"
	maxCommandLen     = 20
)

func encodeCommand(cmd string) ([]byte, error) {
	framed := cmd + commandTerminator
	if len(framed) > maxCommandLen {
		return nil, fmt.Errorf("command %q exceeds %d bytes", cmd, maxCommandLen)
	}
	return []byte(framed), nil
}

func encodeSetUnit(unit string) ([]byte, error) {
	if unit != RawUnitCelsius && unit != RawUnitFahrenheit {
		return nil, fmt.Errorf("invalid temperature unit %q", unit)
	}
	return encodeCommand(fmt.Sprintf(cmdSetUnit, unit))
}

func encodeSetTargetTemperature(value float64) ([]byte, error) {
	// The device accepts at most one decimal place.
	return encodeCommand(fmt.Sprintf(cmdSetTargetTemp, formatTemperature(value)))
}

// formatTemperature renders a temperature the way the device echoes it:
// one decimal place, trailing ".0" dropped.
func formatTemperature(value float64) string {
	s := strconv.FormatFloat(value, 'f', 1, 64)
	return strings.TrimSuffix(s, ".0")
}

// decodeResponse strips the terminator and surrounding whitespace from a
// raw notification payload.
func decodeResponse(data []byte) string {
	return strings.TrimSpace(strings.TrimSuffix(string(data), commandTerminator))
}
