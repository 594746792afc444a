package classify

import "errors"

// ErrDivisionByZero is returned when a share is requested against a citywide
// total of zero.
var ErrDivisionByZero = errors.New("classify: citywide total is zero")

// Bucket is a percentage range used to color a community's share of the
// citywide total. The zero value is NonResidential, which is a marker for
// "no survey data" and not a range.
type Bucket int

const (
	NonResidential Bucket = iota
	BelowHalf             // < 0.5%
	HalfToOne             // 0.5 – 0.99%
	OneToTwo              // 1.0 – 1.99%
	TwoToThree            // 2.0 – 2.99%
	ThreeToFour           // 3.0 – 3.99%
	FourPlus              // >= 4.0%
)

// Buckets lists the six ranges from lowest to highest.
var Buckets = []Bucket{BelowHalf, HalfToOne, OneToTwo, TwoToThree, ThreeToFour, FourPlus}

// lowerBounds[i] is the inclusive lower bound of Buckets[i+1].
var lowerBounds = []float64{0.5, 1.0, 2.0, 3.0, 4.0}

var bucketLabels = map[Bucket]string{
	NonResidential: "non-residential",
	BelowHalf:      "<0.50%",
	HalfToOne:      "0.50-0.99%",
	OneToTwo:       "1.00-1.99%",
	TwoToThree:     "2.00-2.99%",
	ThreeToFour:    "3.00-3.99%",
	FourPlus:       ">4.00%",
}

func (b Bucket) String() string {
	if s, ok := bucketLabels[b]; ok {
		return s
	}
	return "unknown"
}

// IsRange reports whether b is one of the six percentage ranges.
func (b Bucket) IsRange() bool {
	return b >= BelowHalf && b <= FourPlus
}

// BucketFor maps a percentage onto its range. Boundary values belong to the
// higher bucket.
func BucketFor(percent float64) Bucket {
	b := BelowHalf
	for i, lo := range lowerBounds {
		if percent >= lo {
			b = Buckets[i+1]
		}
	}
	return b
}

// Percent returns count as a percentage of citywideTotal.
func Percent(count, citywideTotal int) (float64, error) {
	if citywideTotal == 0 {
		return 0, ErrDivisionByZero
	}
	return float64(count) * 100 / float64(citywideTotal), nil
}
