package metropole_test

import (
	"net/url"
	"testing"

	"github.com/prizmamta/metropole/internal/core/metropole"
	"github.com/stretchr/testify/assert"
)

func TestExtractPaymentID(t *testing.T) {
	tests := []struct {
		name  string
		query string
		body  string
		want  string
		ok    bool
	}{
		{
			name: "body type payment with data id",
			body: `{"type":"payment","data":{"id":"12345"}}`,
			want: "12345",
			ok:   true,
		},
		{
			name: "body data id as number",
			body: `{"action":"payment.updated","api_version":"v1","data":{"id":98765}}`,
			want: "98765",
			ok:   true,
		},
		{
			name: "body top level id",
			body: `{"id":555}`,
			want: "555",
			ok:   true,
		},
		{
			name:  "query id with topic payment",
			query: "id=777&topic=payment",
			want:  "777",
			ok:    true,
		},
		{
			name:  "query id with type payments",
			query: "id=778&type=payments",
			want:  "778",
			ok:    true,
		},
		{
			name:  "query data.id",
			query: "data.id=779",
			want:  "779",
			ok:    true,
		},
		{
			name:  "query id without topic",
			query: "id=780",
			want:  "780",
			ok:    true,
		},
		{
			name:  "query id with foreign topic",
			query: "id=781&topic=merchant_order",
			ok:    false,
		},
		{
			name: "query id beats body id",
			body: `{"data":{"id":"1"}}`,
			// the gateway occasionally sends both
			query: "id=2&topic=payment",
			want:  "2",
			ok:    true,
		},
		{
			name:  "query data.id beats body id",
			body:  `{"id":4}`,
			query: "data.id=3",
			want:  "3",
			ok:    true,
		},
		{
			name: "foreign topic falls back to body",
			body: `{"data":{"id":"5"}}`,
			// the topic filter only closes the query strategy
			query: "id=6&topic=merchant_order",
			want:  "5",
			ok:    true,
		},
		{
			name: "literal undefined rejected",
			body: `{"data":{"id":"undefined"}}`,
			ok:   false,
		},
		{
			name: "literal null rejected",
			body: `{"id":"null"}`,
			ok:   false,
		},
		{
			name: "malformed body ignored but query used",
			body: `{"data":`,
			// truncated JSON must not fail the extraction
			query: "id=42&topic=payment",
			want:  "42",
			ok:    true,
		},
		{
			name: "nothing",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, err := url.ParseQuery(tt.query)
			assert.NoError(t, err)

			got, ok := metropole.ExtractPaymentID(query, []byte(tt.body))

			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
