// Package control polls analog control inputs into synth parameters
package control

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// AnalogReader reads one raw converter value per channel. Implementations
// wrap whatever ADC the hardware provides.
type AnalogReader interface {
	Read(channel int) (int, error)
}

// IIOReader reads raw ADC values from a Linux industrial-IO device
// directory, e.g. /sys/bus/iio/devices/iio:device0 for an ADS1115 on
// the i2c bus. Each read opens in_voltage<ch>_raw.
type IIOReader struct {
	Dir string
}

// Read returns the raw value of the channel
func (r *IIOReader) Read(channel int) (int, error) {
	path := filepath.Join(r.Dir, fmt.Sprintf("in_voltage%d_raw", channel))
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}
	return v, nil
}
