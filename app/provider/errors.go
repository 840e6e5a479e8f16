package provider

import "strings"

const genericPaymentErrorMessage = "There was an error processing your payment. Please try again."

// ClassifyError maps known provider failure substrings to user-facing copy.
// Anything unrecognized gets the generic message.
func ClassifyError(providerMessage string) string {
	switch {
	case strings.Contains(providerMessage, "PAYEE_ACCOUNT_RESTRICTED"):
		return "Payment system is currently under maintenance. Please contact support or try again later."
	case strings.Contains(providerMessage, "UNPROCESSABLE_ENTITY"):
		return "Unable to process payment at this time. Please contact support for assistance."
	default:
		return genericPaymentErrorMessage
	}
}
