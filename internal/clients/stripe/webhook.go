package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultWebhookTolerance bounds how stale a signed timestamp may be before
// the event is rejected as a possible replay.
const DefaultWebhookTolerance = 5 * time.Minute

// Event is a signature-verified webhook notification. Data holds the raw
// object payload so each consumer decodes only the shape it needs.
type Event struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"-"`
}

// ConstructEvent verifies the Stripe-Signature header against the raw request
// body and decodes the event envelope. The payload must be the exact bytes
// received on the wire.
func ConstructEvent(payload []byte, sigHeader, secret string) (Event, error) {
	return constructEventAt(payload, sigHeader, secret, DefaultWebhookTolerance, time.Now())
}

func constructEventAt(payload []byte, sigHeader, secret string, tolerance time.Duration, now time.Time) (Event, error) {
	ts, sigs, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return Event{}, err
	}

	if tolerance > 0 {
		signedAt := time.Unix(ts, 0)
		if now.Sub(signedAt) > tolerance || signedAt.Sub(now) > tolerance {
			return Event{}, fmt.Errorf("webhook timestamp outside tolerance")
		}
	}

	expected := computeSignature(ts, payload, secret)
	matched := false
	for _, sig := range sigs {
		decoded, decErr := hex.DecodeString(sig)
		if decErr != nil {
			continue
		}
		if hmac.Equal(decoded, expected) {
			matched = true
			break
		}
	}
	if !matched {
		return Event{}, fmt.Errorf("webhook signature mismatch")
	}

	var envelope struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		Data struct {
			Object json.RawMessage `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return Event{}, fmt.Errorf("decode webhook payload: %w", err)
	}
	return Event{ID: envelope.ID, Type: envelope.Type, Data: envelope.Data.Object}, nil
}

// parseSignatureHeader splits "t=<unix>,v1=<hex>[,v1=<hex>...]". Multiple v1
// entries appear while an endpoint secret is being rotated.
func parseSignatureHeader(header string) (int64, []string, error) {
	var (
		ts   int64
		sigs []string
	)
	sawTimestamp := false
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			parsed, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return 0, nil, fmt.Errorf("invalid webhook timestamp")
			}
			ts = parsed
			sawTimestamp = true
		case "v1":
			sigs = append(sigs, kv[1])
		}
	}
	if !sawTimestamp || len(sigs) == 0 {
		return 0, nil, fmt.Errorf("malformed signature header")
	}
	return ts, sigs, nil
}

func computeSignature(ts int64, payload []byte, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(ts, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return mac.Sum(nil)
}
