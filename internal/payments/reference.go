package payments

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cabanadebrincar/cabana-backend/pkg/enums"
)

// referenceSeparator joins the order id and the payment kind in the provider's external reference.
const referenceSeparator = "__"

// EncodeReference builds the external reference echoed back by the provider.
func EncodeReference(orderID int64, kind enums.PaymentKind) string {
	return strconv.FormatInt(orderID, 10) + referenceSeparator + kind.String()
}

// DecodeReference recovers (orderID, kind) from an external reference. Only a positive
// numeric id followed by a known kind is accepted.
func DecodeReference(ref string) (int64, enums.PaymentKind, error) {
	idPart, kindPart, found := strings.Cut(strings.TrimSpace(ref), referenceSeparator)
	if !found {
		return 0, "", fmt.Errorf("external reference %q: missing separator", ref)
	}
	for _, r := range idPart {
		if r < '0' || r > '9' {
			return 0, "", fmt.Errorf("external reference %q: order id is not numeric", ref)
		}
	}
	orderID, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || orderID <= 0 {
		return 0, "", fmt.Errorf("external reference %q: invalid order id", ref)
	}
	kind, err := enums.ParsePaymentKind(kindPart)
	if err != nil {
		return 0, "", fmt.Errorf("external reference %q: %w", ref, err)
	}
	return orderID, kind, nil
}
