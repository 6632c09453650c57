package stats

import (
	"math"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type Number interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64
}

// SafeMean returns the arithmetic mean of all finite values.
// NaN and infinite values are ignored. The result is nil if nothing remains.
func SafeMean[T Number](values []T) *float64 {
	valid := finite(values)
	if len(valid) == 0 {
		return nil
	}
	mean := lo.Sum(valid) / float64(len(valid))
	return &mean
}

// Mean is SafeMean with 0 as fallback
func Mean[T Number](values []T) float64 {
	if m := SafeMean(values); m != nil {
		return *m
	}
	return 0
}

// PopulationStdDev returns the population standard deviation of all finite
// values or nil if there are none.
func PopulationStdDev(values []float64) *float64 {
	valid := finite(values)
	if len(valid) == 0 {
		return nil
	}
	mean := lo.Sum(valid) / float64(len(valid))
	sq := lo.SumBy(valid, func(v float64) float64 { return (v - mean) * (v - mean) })
	std := math.Sqrt(sq / float64(len(valid)))
	return &std
}

// StableMode returns the most frequent value.
// On ties the value encountered first wins. ok is false for empty input.
func StableMode[T comparable](values []T) (mode T, ok bool) {
	counts := make(map[T]int, len(values))
	order := make([]T, 0, len(values))
	for _, v := range values {
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++
	}
	best := 0
	for _, v := range order {
		if counts[v] > best {
			best = counts[v]
			mode = v
			ok = true
		}
	}
	return mode, ok
}

// Round rounds half away from zero to the given number of decimal places
func Round(v float64, places int32) float64 {
	ret, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return ret
}

func finite[T Number](values []T) []float64 {
	ret := make([]float64, 0, len(values))
	for _, v := range values {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		ret = append(ret, f)
	}
	return ret
}
