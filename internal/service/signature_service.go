package service

import (
	"crypto/hmac"
	"crypto/md5" //nolint:gosec // MD5 is mandated by the PayFast wire protocol
	"encoding/hex"
	"net/url"
	"sort"
	"strings"

	"github.com/craigsandeman1/fitmom-payments/internal/core/domain"
)

// itnFieldOrder is the gateway's fixed ITN signing order. Inbound
// verification must concatenate fields in exactly this sequence; lexical
// order is only correct for outbound checkout signing.
var itnFieldOrder = []string{
	"m_payment_id",
	"pf_payment_id",
	"payment_status",
	"item_name",
	"item_description",
	"amount_gross",
	"amount_fee",
	"amount_net",
	"custom_str1",
	"custom_str2",
	"custom_str3",
	"custom_str4",
	"custom_str5",
	"custom_int1",
	"custom_int2",
	"custom_int3",
	"custom_int4",
	"custom_int5",
	"name_first",
	"name_last",
	"email_address",
	"merchant_id",
}

// PayFastSignatureService implements ports.SignatureService for the PayFast
// parameter signature scheme: non-empty fields joined as key=urlencoded(value)
// pairs, optional passphrase appended, MD5 digest rendered lowercase hex.
type PayFastSignatureService struct{}

// NewPayFastSignatureService creates a new PayFast signature service.
func NewPayFastSignatureService() *PayFastSignatureService {
	return &PayFastSignatureService{}
}

// SignCheckout signs an outbound checkout parameter set in lexical field order.
func (s *PayFastSignatureService) SignCheckout(params map[string]string, passphrase string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == domain.FieldSignature {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return digest(encodePairs(keys, params, passphrase))
}

// SignNotification signs an inbound ITN parameter set in the gateway's fixed
// field order. The signature field is not in the order list and is therefore
// never part of the signed string.
func (s *PayFastSignatureService) SignNotification(params map[string]string, passphrase string) string {
	return digest(encodePairs(itnFieldOrder, params, passphrase))
}

// VerifyNotification recomputes the ITN signature and compares it against
// the declared one in constant time. A mismatch returns false, never an error.
func (s *PayFastSignatureService) VerifyNotification(params map[string]string, declared string, passphrase string) bool {
	if declared == "" {
		return false
	}
	expected := s.SignNotification(params, passphrase)
	return hmac.Equal([]byte(expected), []byte(declared))
}

// encodePairs builds the canonical parameter string: non-empty values,
// trimmed, urlencoded, joined with '&' in the given key order. Keys absent
// from params are skipped, so the same function serves both the full fixed
// ITN list and a sorted key slice.
func encodePairs(order []string, params map[string]string, passphrase string) string {
	var b strings.Builder
	for _, k := range order {
		v := strings.TrimSpace(params[k])
		if v == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(v))
	}
	if passphrase != "" {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString("passphrase=")
		b.WriteString(url.QueryEscape(passphrase))
	}
	return b.String()
}

func digest(payload string) string {
	sum := md5.Sum([]byte(payload)) //nolint:gosec // fixed external protocol requirement
	return hex.EncodeToString(sum[:])
}
