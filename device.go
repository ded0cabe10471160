package ledbridge

import (
	"context"
	"time"

	"github.com/karalabe/hid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Logitech G27 racing wheel
const (
	g27VendorID  = 0x046d
	g27ProductID = 0xc29b
)

var (
	ErrDeviceNotFound     = errors.New("G27 not found")
	ErrDeviceAccessDenied = errors.New("G27 present but could not be opened")
	ErrDeviceDisconnected = errors.New("G27 disconnected")
)

// hidDevice is the subset of hid.Device the LED bar needs.
type hidDevice interface {
	Write([]byte) (int, error)
	Close() error
}

// to allow testing
var hidOpen = func() (hidDevice, error) {
	infos := hid.Enumerate(g27VendorID, g27ProductID)
	if len(infos) == 0 {
		return nil, ErrDeviceNotFound
	}
	dev, err := infos[0].Open()
	if err != nil {
		return nil, errors.Wrap(ErrDeviceAccessDenied, err.Error())
	}
	return dev, nil
}

// Device owns the exclusive HID handle to the wheel's RPM LED bar. It
// performs no retries itself; reconnection policy lives in the supervisor.
type Device struct {
	dev hidDevice
}

func NewDevice() *Device {
	return &Device{}
}

func (d *Device) Open() error {
	dev, err := hidOpen()
	if err != nil {
		return err
	}
	d.dev = dev
	log.Info("G27 connected")
	return nil
}

// Write sends the output report driving the RPM bar. The firmware expects
// report 00 F8 12 <mask> 00 00 00 01, with the mask's low five bits lighting
// green 1-2, orange 1-2 and red in order.
func (d *Device) Write(mask Bitmask) error {
	if d.dev == nil {
		return errors.Wrap(ErrDeviceDisconnected, "device not open")
	}
	report := []byte{0x00, 0xF8, 0x12, byte(mask), 0x00, 0x00, 0x00, 0x01}
	if _, err := d.dev.Write(report); err != nil {
		return errors.Wrap(ErrDeviceDisconnected, err.Error())
	}
	return nil
}

// Close releases the handle. Safe to call when already closed.
func (d *Device) Close() error {
	if d.dev == nil {
		return nil
	}
	err := d.dev.Close()
	d.dev = nil
	return err
}

var testStepDelay = 500 * time.Millisecond

// TestCycle walks the bar up from all-off to all-on and back down again,
// one LED at a time. Used by the diagnostic test command to verify the
// wheel without a game running.
func (d *Device) TestCycle(ctx context.Context) error {
	steps := []Bitmask{AllOff, LED1, LED1 | LED2, AllOn >> 2, AllOn >> 1, AllOn}
	for i := 0; i < len(steps)*2; i++ {
		step := steps[i%len(steps)]
		if i >= len(steps) {
			step = steps[len(steps)-1-i%len(steps)]
		}
		if err := d.Write(step); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(testStepDelay):
		}
	}
	return nil
}
