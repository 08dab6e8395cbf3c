// Package icm42605 provides a driver for the TDK InvenSense ICM-42605 6-axis gyro/accelerometer
// on an SPI bus. Register names follow the datasheet (DS-000292, rev 1.2).
package icm42605

const (
	WhoAmIConst byte = 0x42 // correct response from RegWhoAmI

	MaxSPIClockHz     = 24000000
	MaxSPIInitClockHz = 1000000
)

// User bank 0
const (
	RegBankSelect       byte = 0x76
	RegWhoAmI           byte = 0x75
	RegPwrMgmt0         byte = 0x4E
	RegGyroConfig0      byte = 0x4F
	RegAccelConfig0     byte = 0x50
	RegGyroConfig1      byte = 0x51
	RegGyroAccelConfig0 byte = 0x52
	RegIntConfig        byte = 0x14
	RegIntConfig0       byte = 0x63
	RegIntConfig1       byte = 0x64
	RegIntSource0       byte = 0x65
	RegAccelDataX1      byte = 0x1F // start of 6 bytes X/Y/Z, big-endian
	RegGyroDataX1       byte = 0x25 // start of 6 bytes X/Y/Z, big-endian
)

// User bank 1
const (
	RegGyroConfigStatic2 byte = 0x0B
	RegGyroConfigStatic3 byte = 0x0C
	RegGyroConfigStatic4 byte = 0x0D
	RegGyroConfigStatic5 byte = 0x0E
)

const (
	Bank0 byte = 0
	Bank1 byte = 1
)

// PWR_MGMT0
const (
	PwrMgmt0AccelModeLN    byte = 3 << 0
	PwrMgmt0GyroModeLN     byte = 3 << 2
	PwrMgmt0TempDisableOff byte = 0 << 5
	PwrMgmt0TempDisableOn  byte = 1 << 5
	PwrMgmt0Reset          byte = 0x00

	pwrMgmt0LowNoiseTempOn = PwrMgmt0TempDisableOff | PwrMgmt0AccelModeLN | PwrMgmt0GyroModeLN
)

// GYRO_CONFIG0 / ACCEL_CONFIG0: FS_SEL in bits 7:5, ODR in bits 3:0.
const (
	configFSRShift = 5
	configODRMask  = 0x0F
)

// GYRO_CONFIG1: 0x12 base, GYRO_UI_FILT_ORD in bits 3:2.
const (
	gyroConfig1Base        byte = 0x12
	gyroConfig1OrderShift  = 2
	DefaultGyroFilterOrder = 3 // 1..3
)

// GYRO_ACCEL_CONFIG0: ACCEL_UI_FILT_BW in bits 7:4, GYRO_UI_FILT_BW in bits 3:0.
const (
	AccelUIFiltBWLowLatency    byte = 14 << 4 // Dec2 runs at max(400Hz, ODR)
	GyroUIFiltBWLowLatency     byte = 14 << 0
	AccelUIFiltBWLowLatencyLPF byte = 7 << 4 // max(400Hz, ODR) / 40 = 400Hz
	GyroUIFiltBWLowLatencyLPF  byte = 7 << 0

	UIFiltLowLatency    = AccelUIFiltBWLowLatency | GyroUIFiltBWLowLatency
	UIFiltLowLatencyLPF = AccelUIFiltBWLowLatencyLPF | GyroUIFiltBWLowLatencyLPF
)

// INT_CONFIG
const (
	Int1ModePulsed         byte = 0 << 2
	Int1ModeLatched        byte = 1 << 2
	Int1DriveCircuitOD     byte = 0 << 1
	Int1DriveCircuitPP     byte = 1 << 1
	Int1PolarityActiveLow  byte = 0 << 0
	Int1PolarityActiveHigh byte = 1 << 0
)

// INT_CONFIG0, UI_DRDY_INT_CLEAR in bits 5:4
const (
	UIDrdyIntClearOnSBR        byte = 0<<5 | 0<<4
	UIDrdyIntClearOnF1BR       byte = 1<<5 | 0<<4
	UIDrdyIntClearOnSBRAndF1BR byte = 1<<5 | 1<<4
)

// INT_CONFIG1
const (
	IntAsyncResetBit       = 4
	IntTDeassertDisableBit = 5
	IntTPulseDurationBit   = 6

	IntTDeassertEnabled  byte = 0 << IntTDeassertDisableBit
	IntTDeassertDisabled byte = 1 << IntTDeassertDisableBit
	IntTPulseDuration100 byte = 0 << IntTPulseDurationBit
	IntTPulseDuration8   byte = 1 << IntTPulseDurationBit
)

// INT_SOURCE0
const (
	UIDrdyInt1EnDisabled byte = 0 << 3
	UIDrdyInt1EnEnabled  byte = 1 << 3
)

// GYRO_CONFIG_STATIC2 (bank 1)
const (
	gyroConfigStatic2Base   byte = 0xA8
	GyroConfigStatic2AAFDis byte = 0x2
	GyroConfigStatic2AAFEn  byte = 0x0
	GyroConfigStatic2NFDis  byte = 0x1
	GyroConfigStatic2NFEn   byte = 0x0

	gyroConfigStatic3Base byte = 0x80 // reset value of GYRO_AAF_DELT's upper bits
)

// burst read command for the gyro: address with the read bit, then filler
const readFlag byte = 0x80
