package mapper

import (
	"time"

	"github.com/coshikowa/ms-go-agency/app/entity"
	"github.com/coshikowa/ms-go-agency/app/types"
)

// PaymentToResponse maps a payment row to its public API shape. The
// approval token, form data, and provider references stay server-side.
func PaymentToResponse(item *entity.Payment) *types.Payment {
	if item == nil {
		return nil
	}

	resp := &types.Payment{
		ID:            item.ID,
		RequestID:     item.RequestID,
		PaymentType:   item.PaymentType,
		AmountKES:     item.AmountKES,
		AmountUSD:     item.AmountUSD,
		Status:        item.Status,
		PaymentMethod: derefString(item.PaymentMethod),
		Email:         item.Email,
		CreatedAt:     item.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     item.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if item.CompletedAt != nil {
		resp.CompletedAt = item.CompletedAt.UTC().Format(time.RFC3339)
	}

	return resp
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
