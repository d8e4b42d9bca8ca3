package nativeflow

import (
	"encoding/json"
	"fmt"
)

// ButtonType tags the native-flow button variant carried in an entry's
// name field. The interactive-message extension recognizes seventeen
// variants; the ones without a classifier rule are reachable only through
// an explicit type field on the input.
type ButtonType string

const (
	TypeQuickReply        ButtonType = "quick_reply"
	TypeCTAURL            ButtonType = "cta_url"
	TypeCTACall           ButtonType = "cta_call"
	TypeCTACopy           ButtonType = "cta_copy"
	TypeCTACatalog        ButtonType = "cta_catalog"
	TypeCTAReminder       ButtonType = "cta_reminder"
	TypeCTACancelReminder ButtonType = "cta_cancel_reminder"
	TypeAddressMessage    ButtonType = "address_message"
	TypeSendLocation      ButtonType = "send_location"
	TypeSingleSelect      ButtonType = "single_select"
	TypeMPM               ButtonType = "mpm"
	TypePaymentInfo       ButtonType = "payment_info"
	TypePaymentStatus     ButtonType = "payment_status"
	TypePaymentMethod     ButtonType = "payment_method"
	TypeReviewAndPay      ButtonType = "review_and_pay"
	TypeReviewOrder       ButtonType = "review_order"
	TypeGalaxyMessage     ButtonType = "galaxy_message"
)

// classifierRule pairs a discriminating field with the type it implies.
type classifierRule struct {
	field string
	typ   ButtonType
}

// classifierRules is checked top to bottom and the first present field
// wins, so a button carrying both url and phoneNumber classifies as
// cta_url. The order is a fixed tie-break and part of the contract;
// do not rearrange it.
var classifierRules = []classifierRule{
	{"url", TypeCTAURL},
	{"copyText", TypeCTACopy},
	{"phoneNumber", TypeCTACall},
	{"catalogLink", TypeCTACatalog},
	{"reminderText", TypeCTAReminder},
	{"reminderId", TypeCTACancelReminder},
	{"addressId", TypeAddressMessage},
	{"options", TypeSingleSelect},
}

// Classify returns the semantic type of an arbitrary button-like value.
// An explicit type field wins verbatim (caller authority). Otherwise the
// first classifier rule whose field is present decides. Anything else,
// including non-object values, is a quick reply. Classify is total: it
// never fails.
func Classify(button any) ButtonType {
	m, ok := button.(map[string]any)
	if !ok {
		return TypeQuickReply
	}
	if t, ok := m["type"].(string); ok && t != "" {
		return ButtonType(t)
	}
	for _, rule := range classifierRules {
		if _, present := m[rule.field]; present {
			return rule.typ
		}
	}
	return TypeQuickReply
}

// requiredFields lists what a button of each type must carry before it can
// go on the wire. Types not listed need only the base pair.
var requiredFields = map[ButtonType][]string{
	TypeQuickReply:        {"id", "title"},
	TypeCTAURL:            {"id", "title", "url"},
	TypeCTACall:           {"id", "title", "phoneNumber"},
	TypeCTACopy:           {"id", "title", "copyText"},
	TypeCTACatalog:        {"id", "title", "catalogLink"},
	TypeCTAReminder:       {"id", "title", "reminderText", "reminderDateTime"},
	TypeCTACancelReminder: {"id", "title", "reminderId"},
	TypeAddressMessage:    {"id", "title", "addressId"},
	TypeSingleSelect:      {"id", "title", "options"},
}

func requiredFieldsFor(t ButtonType) []string {
	if fields, ok := requiredFields[t]; ok {
		return fields
	}
	return []string{"id", "title"}
}

// NewEntry builds a canonical entry of the given type, enforcing the
// type's required fields at construction time. params becomes the full
// buttonParamsJson object, so type-specific fields (url, phoneNumber,
// copyText, options, ...) belong here too.
func NewEntry(t ButtonType, params map[string]any) (NativeFlowEntry, error) {
	provided := make([]string, 0, len(params))
	for k := range params {
		provided = append(provided, k)
	}
	for _, f := range requiredFieldsFor(t) {
		if _, ok := params[f]; !ok {
			return NativeFlowEntry{}, MissingFieldsError(t, provided)
		}
	}

	data, err := json.Marshal(params)
	if err != nil {
		return NativeFlowEntry{}, fmt.Errorf("marshaling button params: %w", err)
	}
	return NativeFlowEntry{Name: string(t), ButtonParamsJSON: string(data)}, nil
}
