// Package utils contains small byte-order and angle helpers shared across the module.
package utils

import (
	"math"
	"sort"
)

// Int16FromBytesLE converts a two byte little-endian pair into its two's-complement
// signed value.
func Int16FromBytesLE(bytes []byte) int16 {
	return int16(uint16(bytes[1])<<8 | uint16(bytes[0]))
}

// BytesFromInt16LE converts a signed value back into its little-endian byte pair.
func BytesFromInt16LE(value int16) []byte {
	return []byte{byte(uint16(value)), byte(uint16(value) >> 8)}
}

func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

func RadToDeg(radians float64) float64 {
	return radians * 180 / math.Pi
}

func Median(values ...float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sort.Float64s(values)

	return values[int(math.Floor(float64(len(values))/2))]
}
