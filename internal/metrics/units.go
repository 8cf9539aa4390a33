package metrics

// ByteUnit is a decimal size suffix as printed by `docker stats`.
type ByteUnit string

const (
	Byte     ByteUnit = "B"
	Kilobyte ByteUnit = "kB"
	Megabyte ByteUnit = "MB"
	Gigabyte ByteUnit = "GB"
	Terabyte ByteUnit = "TB"
)

// Multiplier returns the number of bytes in one u. Units are powers of 1000
// and matched case-sensitively.
func (u ByteUnit) Multiplier() (float64, bool) {
	switch u {
	case Byte:
		return 1, true
	case Kilobyte:
		return 1e3, true
	case Megabyte:
		return 1e6, true
	case Gigabyte:
		return 1e9, true
	case Terabyte:
		return 1e12, true
	default:
		return 0, false
	}
}

// ConvertToBytes scales magnitude by the multiplier of unit.
func ConvertToBytes(magnitude float64, unit string) (float64, error) {
	m, ok := ByteUnit(unit).Multiplier()
	if !ok {
		return 0, &UnrecognizedUnitError{Unit: unit}
	}
	return magnitude * m, nil
}
