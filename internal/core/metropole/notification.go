package metropole

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strings"
)

// The gateway notifies through several shapes: plain query parameters
// ?id=123&topic=payment, a JSON body like {"type":"payment","data":{"id":123}},
// or a body with a top-level "id". Ids arrive both as JSON numbers and as
// strings. Extraction runs an ordered list of strategies and stops at the
// first one that yields a usable id; the query wins when both are present,
// which is where the gateway usually puts it.

// flexID decodes a JSON value that may be a string or a number.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

type notificationBody struct {
	Type   string `json:"type"`
	Action string `json:"action"`
	Data   struct {
		ID flexID `json:"id"`
	} `json:"data"`
	ID flexID `json:"id"`
}

type notification struct {
	query url.Values
	body  notificationBody
}

type extractStrategy func(n notification) (string, bool)

var extractStrategies = []extractStrategy{
	extractQueryID,
	extractQueryDataID,
	extractBodyDataID,
	extractBodyID,
}

func extractBodyDataID(n notification) (string, bool) {
	return usableID(string(n.body.Data.ID))
}

func extractBodyID(n notification) (string, bool) {
	return usableID(string(n.body.ID))
}

func extractQueryDataID(n notification) (string, bool) {
	return usableID(n.query.Get("data.id"))
}

func extractQueryID(n notification) (string, bool) {
	topic := n.query.Get("topic")
	if topic == "" {
		topic = n.query.Get("type")
	}
	if topic != "" && topic != "payment" && topic != "payments" {
		return "", false
	}
	return usableID(n.query.Get("id"))
}

// usableID filters out values the gateway is known to send for "no id".
func usableID(id string) (string, bool) {
	id = strings.TrimSpace(id)
	if id == "" || id == "undefined" || id == "null" {
		return "", false
	}
	return id, true
}

// ExtractPaymentID pulls a payment id out of an inbound notification. The
// body is only used to learn which payment to look up, never for status or
// amount. A malformed body is not an error, the query may still carry the id.
func ExtractPaymentID(query url.Values, rawBody []byte) (string, bool) {
	n := notification{query: query}
	if len(rawBody) > 0 {
		_ = json.Unmarshal(rawBody, &n.body)
	}

	for _, strategy := range extractStrategies {
		if id, ok := strategy(n); ok {
			return id, true
		}
	}

	return "", false
}
