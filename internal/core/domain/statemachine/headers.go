package statemachine

import (
	"fmt"
	"maps"
	"strconv"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
)

const (
	// HeaderOrderID carries the identifier of the order being changed.
	HeaderOrderID = "orderId"

	// HeaderPaymentConfirmationNumber carries the payment reference sent with PAY.
	HeaderPaymentConfirmationNumber = "paymentConfirmationNumber"
)

// Headers is the metadata sent along with an event. It is forwarded verbatim
// to every interceptor.
//
// The reserved keys are typed fields; anything else travels in Extra.
type Headers struct {
	// OrderID is zero when the header is absent.
	OrderID order.ID

	// PaymentConfirmationNumber is empty when the header is absent.
	PaymentConfirmationNumber string

	// Extra holds caller-supplied keys other than the reserved ones.
	Extra map[string]string
}

// HasOrderID reports whether the orderId header is present.
func (h Headers) HasOrderID() bool {
	return h.OrderID != 0
}

// Get returns the value of key in string form, covering reserved and extra keys.
func (h Headers) Get(key string) (string, bool) {
	switch key {
	case HeaderOrderID:
		if !h.HasOrderID() {
			return "", false
		}
		return strconv.FormatInt(int64(h.OrderID), 10), true
	case HeaderPaymentConfirmationNumber:
		if h.PaymentConfirmationNumber == "" {
			return "", false
		}
		return h.PaymentConfirmationNumber, true
	default:
		v, ok := h.Extra[key]
		return v, ok
	}
}

// Map flattens the headers into their string map form.
func (h Headers) Map() map[string]string {
	m := make(map[string]string, len(h.Extra)+2)
	maps.Copy(m, h.Extra)
	for _, key := range []string{HeaderOrderID, HeaderPaymentConfirmationNumber} {
		delete(m, key)
		if v, ok := h.Get(key); ok {
			m[key] = v
		}
	}
	return m
}

// HeadersFromMap builds Headers from their string map form.
// A present but malformed orderId is an error; unknown keys go to Extra.
func HeadersFromMap(m map[string]string) (Headers, error) {
	var h Headers
	for key, value := range m {
		switch key {
		case HeaderOrderID:
			id, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return Headers{}, errs.NewValueIsInvalidErrorWithCause(HeaderOrderID, err)
			}
			if err := order.ID(id).Validate(); err != nil {
				return Headers{}, fmt.Errorf("header %s: %w", HeaderOrderID, err)
			}
			h.OrderID = order.ID(id)
		case HeaderPaymentConfirmationNumber:
			h.PaymentConfirmationNumber = value
		default:
			if h.Extra == nil {
				h.Extra = make(map[string]string)
			}
			h.Extra[key] = value
		}
	}
	return h, nil
}
