package relay

import (
	"errors"
	"fmt"
	"strings"

	"go.bug.st/serial/enumerator"
)

// deviceNameHint identifies the relay hardware among USB serial ports.
const deviceNameHint = "micro:bit"

// USBPorts lists serial ports that expose USB vendor information.
func USBPorts() ([]*enumerator.PortDetails, error) {
	all, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("list serial ports: %w", err)
	}

	var out []*enumerator.PortDetails
	for _, port := range all {
		if port.IsUSB {
			out = append(out, port)
		}
	}

	return out, nil
}

// ResolveDevice returns path when given, otherwise auto-selects the USB
// port whose product or name matches the relay hardware.
func ResolveDevice(path string) (string, error) {
	if path != "" {
		return path, nil
	}

	ports, err := USBPorts()
	if err != nil {
		return "", err
	}
	if len(ports) == 0 {
		return "", errors.New("no usb serial ports detected")
	}

	for _, port := range ports {
		if matchesRelayHint(port) {
			return port.Name, nil
		}
	}

	return "", fmt.Errorf("no %s device among %d usb serial port(s)", deviceNameHint, len(ports))
}

func matchesRelayHint(port *enumerator.PortDetails) bool {
	text := strings.ToLower(port.Product + " " + port.Name)

	return strings.Contains(text, deviceNameHint)
}
