package icm42605

import (
	"errors"
	"fmt"
	"time"

	"github.com/b3nn0/gyrod/sensors/accgyro"
	"github.com/b3nn0/gyrod/sensors/spibus"
)

const (
	detectAttempts = 20
	detectDelay    = 150 * time.Millisecond
	settleDelay    = 15 * time.Millisecond

	oneG = 512 * 4 // LSB/g at +/-16g
)

// The config registers encode FS_SEL as 3 - selector; the driver always runs the maximum
// range, which must encode as 0.
var (
	_ = [1]struct{}{}[accgyro.FSR2000DPS-3]
	_ = [1]struct{}{}[accgyro.FSR16G-3]
)

var ErrFilterOrder = errors.New("icm42605: gyro filter order must be 1..3")

// sleep is replaced in tests.
var sleep = time.Sleep

// Config holds the build options of the driver. It is validated once by New.
type Config struct {
	FilterOrder int  // GYRO_UI_FILT_ORD, 1..3
	DataReady   bool // route data-ready to INT1
}

func DefaultConfig() Config {
	return Config{FilterOrder: DefaultGyroFilterOrder, DataReady: true}
}

func (c Config) Validate() error {
	if c.FilterOrder < 1 || c.FilterOrder > 3 {
		return ErrFilterOrder
	}
	return nil
}

// Driver claims ICM-42605 devices found by Detect.
type Driver struct {
	cfg Config
}

func New(cfg Config) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Driver{cfg: cfg}, nil
}

// Detect looks for an ICM-42605 on bus at the init clock. The chip answers WHO_AM_I only after
// its internal boot, so the register is polled a fixed number of times. On success the bus is
// switched to the maximum clock; on failure it is left at the init clock.
func Detect(bus *spibus.Device) accgyro.Sensor {
	bus.SetSpeed(MaxSPIInitClockHz)

	bus.WriteRegister(RegPwrMgmt0, PwrMgmt0Reset)

	detected := accgyro.None
	for attempt := 0; attempt < detectAttempts; attempt++ {
		sleep(detectDelay)
		whoAmI, err := bus.ReadRegister(RegWhoAmI)
		if err == nil && whoAmI == WhoAmIConst {
			detected = accgyro.ICM42605SPI
			break
		}
	}
	if detected == accgyro.None {
		return accgyro.None
	}

	bus.SetSpeed(MaxSPIClockHz)

	return detected
}

// AccDetect returns the accelerometer driver if detection found this chip.
func (d *Driver) AccDetect(acc *accgyro.AccDev) (accgyro.AccDriver, bool) {
	if acc.Detection.Sensor != accgyro.ICM42605SPI {
		return nil, false
	}
	return accDriver{}, true
}

// GyroDetect returns the gyro driver if detection found this chip.
func (d *Driver) GyroDetect(gyro *accgyro.GyroDev) (accgyro.GyroDriver, bool) {
	if gyro.Detection.Sensor != accgyro.ICM42605SPI {
		return nil, false
	}
	gyro.Scale = accgyro.GyroScale2000DPS
	return &gyroDriver{cfg: d.cfg}, true
}

type accDriver struct{}

// Init sets the conversion constant. The range is programmed by the gyro init.
func (accDriver) Init(acc *accgyro.AccDev) {
	acc.OneG = oneG
}

func (accDriver) Read(acc *accgyro.AccDev) error {
	var data [6]byte
	if err := acc.Bus.ReadRegisterBuffer(RegAccelDataX1, data[:]); err != nil {
		return fmt.Errorf("icm42605: read accel: %w", err)
	}
	acc.ADCRaw = decodeAxes(data[:])
	return nil
}

type gyroDriver struct {
	cfg Config
}

// Init brings the gyro and accelerometer up. It must run once per power up, after
// accgyro.GyroPreInit. Register writes are not checked: there is nothing useful to do about a
// failed write half way through, so failures only show up in the bus write error count.
func (g *gyroDriver) Init(gyro *accgyro.GyroDev) {
	lpf := gyro.HardwareLPF
	bus := gyro.Bus

	bus.SetSpeed(MaxSPIInitClockHz)

	bus.WriteRegister(RegPwrMgmt0, pwrMgmt0LowNoiseTempOn)
	sleep(settleDelay)

	odr, rate := negotiateODR(gyro.RateKHz, gyro.DividerDrops)
	gyro.RateKHz = rate

	bus.WriteRegister(RegGyroConfig0, configValue(accgyro.FSR2000DPS, odr))
	sleep(settleDelay)

	bus.WriteRegister(RegAccelConfig0, configValue(accgyro.FSR16G, odr))
	sleep(settleDelay)

	if lpf != accgyro.HardwareLPFNormal {
		bus.WriteRegister(RegGyroAccelConfig0, UIFiltLowLatencyLPF)
	} else {
		bus.WriteRegister(RegGyroAccelConfig0, UIFiltLowLatency)
	}

	bus.WriteRegister(RegGyroConfig1, gyroConfig1Base|byte(g.cfg.FilterOrder-1)<<gyroConfig1OrderShift)

	bus.WriteRegister(RegIntConfig, Int1ModePulsed|Int1DriveCircuitPP|Int1PolarityActiveHigh)
	bus.WriteRegister(RegIntConfig0, UIDrdyIntClearOnSBR)

	if lpf != 0 && lpf < 4 {
		programAAF(bus, aafProfiles[lpf-1])
	}

	if g.cfg.DataReady {
		bus.WriteRegister(RegIntSource0, UIDrdyInt1EnEnabled)

		// datasheet: INT_ASYNC_RESET must be cleared from its default of 1 for INT1/INT2 to work
		intConfig1, _ := bus.ReadRegister(RegIntConfig1)
		intConfig1 &^= 1 << IntAsyncResetBit
		intConfig1 |= IntTPulseDuration8 | IntTDeassertDisabled
		bus.WriteRegister(RegIntConfig1, intConfig1)
	}

	bus.SetSpeed(MaxSPIClockHz)
}

// programAAF writes the anti-alias filter coefficients in user bank 1. Everything between the
// two bank selects addresses bank 1, so the sequence holds the bus.
func programAAF(bus *spibus.Device, cfg aaf) {
	bus.Exclusive(func(tx spibus.Tx) {
		tx.WriteRegister(RegBankSelect, Bank1)

		tx.WriteRegister(RegGyroConfigStatic2, gyroConfigStatic2Base|GyroConfigStatic2AAFEn|GyroConfigStatic2NFDis)
		tx.WriteRegister(RegGyroConfigStatic3, gyroConfigStatic3Base|cfg.delt)
		tx.WriteRegister(RegGyroConfigStatic4, byte(cfg.deltSqr&0xFF))
		tx.WriteRegister(RegGyroConfigStatic5, cfg.bitShift<<4|byte(cfg.deltSqr>>8)&0x0F)

		tx.WriteRegister(RegBankSelect, Bank0)
	})
}

var gyroReadCmd = [7]byte{RegGyroDataX1 | readFlag, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

func (g *gyroDriver) Read(gyro *accgyro.GyroDev) error {
	var data [7]byte
	if err := gyro.Bus.Transfer(gyroReadCmd[:], data[:]); err != nil {
		return fmt.Errorf("icm42605: read gyro: %w", err)
	}
	// data[0] is clocked in while the address goes out
	gyro.ADCRaw = decodeAxes(data[1:])
	return nil
}

func configValue(fsr, odr uint8) byte {
	return (3-fsr)<<configFSRShift | odr&configODRMask
}

func decodeAxes(b []byte) [3]int16 {
	return [3]int16{
		int16(uint16(b[0])<<8 | uint16(b[1])),
		int16(uint16(b[2])<<8 | uint16(b[3])),
		int16(uint16(b[4])<<8 | uint16(b[5])),
	}
}
