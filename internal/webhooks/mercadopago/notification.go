package mercadopagowebhook

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
)

const topicPayment = "payment"

// Notification is the provider poke. It is untrusted and only names a payment to look up.
type Notification struct {
	PaymentID string
	Topic     string
	RequestID string
	Signature string
}

// IsPayment reports whether the notification refers to a payment resource.
func (n Notification) IsPayment() bool {
	return strings.EqualFold(n.Topic, topicPayment) && n.PaymentID != ""
}

type notificationBody struct {
	ID    flexibleID `json:"id"`
	Type  string     `json:"type"`
	Topic string     `json:"topic"`
	Data  struct {
		ID flexibleID `json:"id"`
	} `json:"data"`
}

// flexibleID accepts both JSON strings and numbers.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == "" {
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		*f = flexibleID(strings.TrimSpace(unquoted))
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*f = flexibleID(num.String())
	return nil
}

// ParseNotification extracts the payment id and topic from the JSON body and the
// query string. Body fields win; data.id wins over id.
func ParseNotification(body []byte, query url.Values) Notification {
	var parsed notificationBody
	if len(body) > 0 {
		_ = json.Unmarshal(body, &parsed)
	}

	n := Notification{
		PaymentID: firstNonEmpty(string(parsed.Data.ID), string(parsed.ID), query.Get("data.id"), query.Get("id")),
		Topic:     firstNonEmpty(parsed.Type, parsed.Topic, query.Get("type"), query.Get("topic")),
	}
	return n
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
