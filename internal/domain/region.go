package domain

import "errors"

var ErrInvalidRegion = errors.New("region must be 'India' or 'Canada'")

// Region is a fixed market. It determines display currency, conversion
// rate from the reference currency (INR), tax rate, and delivery policy.
// Values are case-sensitive literals.
type Region string

const (
	RegionIndia  Region = "India"
	RegionCanada Region = "Canada"
)

func (r Region) Valid() bool {
	return r == RegionIndia || r == RegionCanada
}

func ParseRegion(s string) (Region, error) {
	r := Region(s)
	if !r.Valid() {
		return "", ErrInvalidRegion
	}
	return r, nil
}
