package icm42605

import "golang.org/x/exp/slices"

// aaf holds register-ready anti-alias filter coefficients, see datasheet section 5.3.
type aaf struct {
	deltSqr  uint16 // GYRO_AAF_DELTSQR, 12 bits
	delt     uint8  // GYRO_AAF_DELT, 6 bits
	bitShift uint8  // GYRO_AAF_BITSHIFT, 4 bits
}

// aafProfiles is indexed by hardware LPF selector - 1.
var aafProfiles = [4]aaf{
	{deltSqr: 3968, delt: 31, bitShift: 3}, // 995Hz, experimental
	{deltSqr: 680, delt: 26, bitShift: 6},  // 319Hz
	{deltSqr: 400, delt: 20, bitShift: 6},  // 236Hz
	{deltSqr: 256, delt: 16, bitShift: 7},  // 184Hz
}

type odrEntry struct {
	khz uint8
	odr uint8 // GYRO_ODR / ACCEL_ODR code
}

// odrTable maps rates reachable from the 8kHz base to ODR codes, fastest first.
var odrTable = []odrEntry{
	{khz: 8, odr: 3},
	{khz: 4, odr: 4},
	{khz: 2, odr: 5},
	{khz: 1, odr: 6},
}

const (
	baseRateKHz    = 8
	defaultODR     = 6
	defaultRateKHz = 1
)

// negotiateODR returns the ODR code for the requested rate and the rate actually used.
// Unsupported or unspecified rates fall back to 1kHz.
func negotiateODR(rateKHz, dividerDrops uint8) (odr, negotiatedKHz uint8) {
	if rateKHz != 0 {
		desired := uint8(baseRateKHz / (int(dividerDrops) + 1))
		if i := slices.IndexFunc(odrTable, func(e odrEntry) bool { return e.khz == desired }); i >= 0 {
			return odrTable[i].odr, rateKHz
		}
	}
	return defaultODR, defaultRateKHz
}
