// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package quantum defines the fixed-point channel sample used by every
// paint device, together with the integer math the compositing code
// relies on.
//
// A Quantum is an unsigned 16-bit sample. Max is full intensity and full
// opacity; alpha channels use OpacityTransparent and OpacityOpaque for
// their two extremes.
//
// Multiplications are performed in 32-bit integers and normalised by
// dividing by Max with exact rounding, the 16-bit counterpart of the
// classic div255 trick:
//
//	t := a*b + 0x8000
//	r := (t + t>>16) >> 16
//
// References:
//   - Alvy Ray Smith, "Image Compositing Fundamentals", Tech Memo 4
//   - Jim Blinn, "Three Wrongs Make a Right", IEEE CG&A 1995
package quantum

// Quantum is a fixed-point channel sample.
type Quantum uint16

const (
	// Bits is the width of a Quantum in bits.
	Bits = 16

	// Max is full intensity.
	Max Quantum = 1<<Bits - 1

	// Half is the midpoint of the quantum range (rounded down).
	Half Quantum = Max / 2

	// OpacityTransparent is the alpha value of a fully transparent pixel.
	OpacityTransparent Quantum = 0

	// OpacityOpaque is the alpha value of a fully opaque pixel.
	OpacityOpaque Quantum = Max
)

// Upscale converts an 8-bit sample to a Quantum.
// Formula: v * 257, so 0 maps to 0 and 255 maps to Max.
func Upscale(v uint8) Quantum {
	return Quantum(v) * 257
}

// Downscale converts a Quantum to an 8-bit sample with rounding.
// Downscale(Upscale(v)) == v for every v.
func Downscale(q Quantum) uint8 {
	return uint8((uint32(q) + 128) / 257)
}

// Mul multiplies two quanta and divides by Max with exact rounding.
func Mul(a, b Quantum) Quantum {
	t := uint32(a)*uint32(b) + 0x8000
	return Quantum((t + t>>16) >> 16)
}

// Mul3 computes a*b*c / Max².
func Mul3(a, b, c Quantum) Quantum {
	return Mul(Mul(a, b), c)
}

// Div computes a*Max / b with rounding, clamped to Max.
// Division by zero yields Max.
func Div(a, b Quantum) Quantum {
	if b == 0 {
		return Max
	}
	v := (uint64(a)*uint64(Max) + uint64(b)/2) / uint64(b)
	if v > uint64(Max) {
		return Max
	}
	return Quantum(v)
}

// Inv returns Max - a.
func Inv(a Quantum) Quantum {
	return Max - a
}

// Lerp blends d towards s by alpha: d*(Max-alpha)/Max + s*alpha/Max.
// Lerp(d, s, 0) == d and Lerp(d, s, Max) == s.
func Lerp(d, s, alpha Quantum) Quantum {
	v := uint64(d)*uint64(Max-alpha) + uint64(s)*uint64(alpha)
	return Quantum((v + uint64(Half)) / uint64(Max))
}

// AddSat adds two quanta, saturating at Max.
func AddSat(a, b Quantum) Quantum {
	s := uint32(a) + uint32(b)
	if s > uint32(Max) {
		return Max
	}
	return Quantum(s)
}

// SubSat subtracts b from a, saturating at zero.
func SubSat(a, b Quantum) Quantum {
	if b >= a {
		return 0
	}
	return a - b
}

// RoundToQuantum clamps v to [0, Max] and rounds to nearest
// (add 0.5, then truncate).
func RoundToQuantum(v float64) Quantum {
	if v <= 0 {
		return 0
	}
	if v >= float64(Max) {
		return Max
	}
	return Quantum(v + 0.5)
}

// RoundSignedToQuantum clamps a signed intermediate to [0, Max].
func RoundSignedToQuantum(v int64) Quantum {
	if v <= 0 {
		return 0
	}
	if v >= int64(Max) {
		return Max
	}
	return Quantum(v)
}

// FromFloat maps [0,1] to [0, Max] with rounding and clamping.
func FromFloat(f float64) Quantum {
	return RoundToQuantum(f * float64(Max))
}

// ToFloat maps a Quantum to [0,1].
func ToFloat(q Quantum) float64 {
	return float64(q) / float64(Max)
}

// Min returns the smaller of a and b.
func Min(a, b Quantum) Quantum {
	if a < b {
		return a
	}
	return b
}

// Max2 returns the larger of a and b.
func Max2(a, b Quantum) Quantum {
	if a > b {
		return a
	}
	return b
}
