package mercadopagowebhook

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNotification(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		query url.Values
		id    string
		topic string
	}{
		{name: "nested data id", body: `{"type":"payment","data":{"id":"123"}}`, id: "123", topic: "payment"},
		{name: "numeric data id", body: `{"action":"payment.updated","type":"payment","data":{"id":987654321}}`, id: "987654321", topic: "payment"},
		{name: "flat id with topic", body: `{"id":55,"topic":"payment"}`, id: "55", topic: "payment"},
		{name: "query only", query: url.Values{"data.id": {"77"}, "type": {"payment"}}, id: "77", topic: "payment"},
		{name: "legacy ipn query", query: url.Values{"id": {"88"}, "topic": {"payment"}}, id: "88", topic: "payment"},
		{name: "merchant order", body: `{"topic":"merchant_order","id":"9"}`, id: "9", topic: "merchant_order"},
		{name: "garbage body falls back to query", body: `not json`, query: url.Values{"id": {"5"}, "topic": {"payment"}}, id: "5", topic: "payment"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			query := tc.query
			if query == nil {
				query = url.Values{}
			}
			n := ParseNotification([]byte(tc.body), query)
			assert.Equal(t, tc.id, n.PaymentID)
			assert.Equal(t, tc.topic, n.Topic)
		})
	}
}

func TestNotificationIsPayment(t *testing.T) {
	assert.True(t, Notification{PaymentID: "1", Topic: "payment"}.IsPayment())
	assert.True(t, Notification{PaymentID: "1", Topic: "PAYMENT"}.IsPayment())
	assert.False(t, Notification{PaymentID: "1", Topic: "merchant_order"}.IsPayment())
	assert.False(t, Notification{Topic: "payment"}.IsPayment())
}

func TestVerifySignature(t *testing.T) {
	secret := "s3cr3t"
	sig := computeSignature(secret, "id:123;request-id:req-1;ts:1704908010;")
	header := "ts=1704908010,v1=" + sig

	assert.True(t, VerifySignature(secret, header, "req-1", "123"))
	assert.True(t, VerifySignature(secret, " ts=1704908010 , v1="+sig, "req-1", "123"))
	assert.False(t, VerifySignature(secret, header, "req-2", "123"))
	assert.False(t, VerifySignature(secret, header, "req-1", "124"))
	assert.False(t, VerifySignature("other", header, "req-1", "123"))
	assert.False(t, VerifySignature(secret, "v1="+sig, "req-1", "123"))
	assert.False(t, VerifySignature(secret, "", "req-1", "123"))
	assert.Equal(t, "ts:1;", Manifest("", "", "1"))
}
