package enums

import "fmt"

// PackageStatus is the availability of a pickup package.
type PackageStatus string

const (
	PackageStatusLiberado  PackageStatus = "liberado"
	PackageStatusReservado PackageStatus = "reservado"
)

var validPackageStatuses = []PackageStatus{
	PackageStatusLiberado,
	PackageStatusReservado,
}

// String implements fmt.Stringer.
func (s PackageStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known PackageStatus.
func (s PackageStatus) IsValid() bool {
	for _, candidate := range validPackageStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParsePackageStatus converts raw input into a PackageStatus.
func ParsePackageStatus(value string) (PackageStatus, error) {
	for _, candidate := range validPackageStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid package status %q", value)
}
