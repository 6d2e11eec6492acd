package volume

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Sensor returns the current raw knob position.
type Sensor interface {
	Read() (float64, error)
}

// IIOSensor reads a Linux industrial I/O raw channel, as exported by the
// ti-ads1015 driver for an ADS1115.
type IIOSensor struct {
	path string
}

// NewIIOSensor creates a sensor for the sysfs file at path, for example
// /sys/bus/iio/devices/iio:device0/in_voltage0_raw.
func NewIIOSensor(path string) *IIOSensor {
	return &IIOSensor{path: path}
}

// Path returns the sysfs file read by the sensor.
func (s *IIOSensor) Path() string {
	return s.path
}

// Read returns the raw channel value.
func (s *IIOSensor) Read() (float64, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return 0, fmt.Errorf("failed to read sensor: %w", err)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid sensor value %q: %w", strings.TrimSpace(string(data)), err)
	}
	return v, nil
}
