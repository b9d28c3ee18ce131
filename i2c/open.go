package i2c

import (
	"fmt"

	"github.com/d2r2/go-logger"
	"gobot.io/x/gobot/sysfs"
)

var lg = logger.NewPackageLogger("bus", logger.InfoLevel)

// Bus drivers accepted by Open.
const (
	DriverSysfs  = "sysfs"
	DriverPeriph = "periph"
	DriverI2CDev = "i2c-dev"
)

// Open returns a bus handle using the named driver. device is the device
// node for sysfs ("/dev/i2c-1") or the bus name for periph ("" selects the
// first bus); busNumber is used by the i2c-dev driver.
func Open(driver, device string, busNumber int) (DeviceCloser, error) {
	lg.Debugf("open %s bus (device %q, bus %d)", driver, device, busNumber)

	switch driver {
	case DriverSysfs, "":
		dev, err := sysfs.NewI2cDevice(device)
		if err != nil {
			return nil, fmt.Errorf("open sysfs device %s: %w", device, err)
		}
		return dev, nil

	case DriverPeriph:
		return OpenPeriph(device)

	case DriverI2CDev:
		return OpenI2CDev(busNumber), nil

	default:
		return nil, fmt.Errorf("unknown bus driver %q", driver)
	}
}
