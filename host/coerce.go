package host

import "math"

// ToInt64 coerces a host value to int64. Floats convert only when the
// value is integral and in range.
func ToInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint:
		if uint64(v) <= math.MaxInt64 {
			return int64(v), true
		}
	case uint64:
		if v <= math.MaxInt64 {
			return int64(v), true
		}
	case uintptr:
		if uint64(v) <= math.MaxInt64 {
			return int64(v), true
		}
	case float64:
		if v >= math.MinInt64 && v < math.MaxInt64 && v == float64(int64(v)) {
			return int64(v), true
		}
	case float32:
		if float64(v) >= math.MinInt64 && float64(v) < math.MaxInt64 && v == float32(int64(v)) {
			return int64(v), true
		}
	}
	return 0, false
}

// ToUint64 coerces a host value to uint64. Negative values never
// convert.
func ToUint64(value any) (uint64, bool) {
	switch v := value.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case uintptr:
		return uint64(v), true
	case uint8:
		return uint64(v), true
	case uint16:
		return uint64(v), true
	case uint32:
		return uint64(v), true
	case int8:
		if v >= 0 {
			return uint64(v), true
		}
	case int16:
		if v >= 0 {
			return uint64(v), true
		}
	case int32:
		if v >= 0 {
			return uint64(v), true
		}
	case int:
		if v >= 0 {
			return uint64(v), true
		}
	case int64:
		if v >= 0 {
			return uint64(v), true
		}
	case float64:
		if v >= 0 && v < math.MaxUint64 && v == float64(uint64(v)) {
			return uint64(v), true
		}
	case float32:
		if v >= 0 && float64(v) < math.MaxUint64 && v == float32(uint64(v)) {
			return uint64(v), true
		}
	}
	return 0, false
}

// ToFloat64 coerces a host value to float64. Integers always convert;
// 64-bit magnitudes may lose precision, matching native conversion.
func ToFloat64(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	}
	return 0, false
}

// ToBool coerces a host value to bool. Integers follow C truthiness.
func ToBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	default:
		if i, ok := ToInt64(v); ok {
			return i != 0, true
		}
		if u, ok := ToUint64(v); ok {
			return u != 0, true
		}
	}
	return false, false
}

// ToByte coerces a host value to one character byte. Accepts integral
// values in byte range and one-byte strings.
func ToByte(value any) (byte, bool) {
	switch v := value.(type) {
	case byte:
		return v, true
	case string:
		if len(v) == 1 {
			return v[0], true
		}
	default:
		if i, ok := ToInt64(v); ok && i >= 0 && i <= math.MaxUint8 {
			return byte(i), true
		}
	}
	return 0, false
}
