package domain

// PayFast ITN field names used by the reconciler.
const (
	FieldMerchantID       = "merchant_id"
	FieldPaymentID        = "m_payment_id"
	FieldGatewayPaymentID = "pf_payment_id"
	FieldPaymentStatus    = "payment_status"
	FieldSignature        = "signature"
	FieldAmountGross      = "amount_gross"
	FieldEmailAddress     = "email_address"
	FieldItemName         = "item_name"
)

// Gateway payment_status vocabulary. COMPLETE is the only value meaning
// successful settlement; FAILED and CANCELLED are terminal failures. Any
// other value is accepted but applies no transition.
const (
	GatewayStatusComplete  = "COMPLETE"
	GatewayStatusFailed    = "FAILED"
	GatewayStatusCancelled = "CANCELLED"
)

// Notification is a parsed inbound ITN callback: the raw field set as
// delivered by the gateway plus the network source it arrived from.
// Field order for signature verification comes from the gateway's fixed
// protocol field list, never from this map.
type Notification struct {
	Fields   map[string]string
	SourceIP string
}

// Signature returns the declared signature field.
func (n *Notification) Signature() string {
	return n.Fields[FieldSignature]
}

// Get returns a field value, empty string if absent.
func (n *Notification) Get(key string) string {
	return n.Fields[key]
}

// MapGatewayStatus translates the gateway status vocabulary to the internal
// purchase status. ok is false for unrecognized values.
func MapGatewayStatus(gatewayStatus string) (PurchaseStatus, bool) {
	switch gatewayStatus {
	case GatewayStatusComplete:
		return PurchaseStatusCompleted, true
	case GatewayStatusFailed, GatewayStatusCancelled:
		return PurchaseStatusFailed, true
	default:
		return "", false
	}
}
