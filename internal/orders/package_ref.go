package orders

import (
	"regexp"
	"strconv"

	"github.com/cabanadebrincar/cabana-backend/pkg/db/models"
)

// legacyPackagePattern matches the package tag older quote forms appended to the theme text.
var legacyPackagePattern = regexp.MustCompile(`ID:\s*(\d+)`)

// ResolvePackageRef returns the pickup package referenced by an order. The explicit
// column wins; otherwise the legacy "ID: <digits>" tag in the theme is parsed.
// The theme fallback is only meaningful for orders already known to be pickup
// orders, such as those with a reconciled PEGUE_MONTE payment.
func ResolvePackageRef(explicit *int64, tema string) (int64, bool) {
	if id, ok := explicitRef(explicit); ok {
		return id, true
	}
	match := legacyPackagePattern.FindStringSubmatch(tema)
	if len(match) != 2 {
		return 0, false
	}
	id, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// PackageRef resolves the pickup package for a stored pickup order, falling back to
// the legacy theme tag.
func PackageRef(order *models.Orcamento) (int64, bool) {
	if order == nil {
		return 0, false
	}
	return ResolvePackageRef(order.PacotePegueMonteID, order.Tema)
}

// LinkedPackage returns the package stored in pacote_pegue_monte_id. Free text is ignored.
func LinkedPackage(order *models.Orcamento) (int64, bool) {
	if order == nil {
		return 0, false
	}
	return explicitRef(order.PacotePegueMonteID)
}

func explicitRef(id *int64) (int64, bool) {
	if id != nil && *id > 0 {
		return *id, true
	}
	return 0, false
}
