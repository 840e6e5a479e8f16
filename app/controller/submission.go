package controller

import (
	"context"
	"errors"
	"net/http"

	"github.com/coshikowa/ms-go-agency/app/entity"
	"github.com/coshikowa/ms-go-agency/app/factory"
	"github.com/coshikowa/ms-go-agency/app/service"
	"github.com/coshikowa/ms-go-agency/app/types"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type submissionRelayer interface {
	Relay(ctx context.Context, kind string, payload types.SubmissionPayload, paymentID *uint64) (*service.RelayResult, error)
}

// SubmissionController exposes the direct relay endpoints used by flows
// that carry no payment, such as free hiring inquiries.
type SubmissionController struct {
	relay  submissionRelayer
	logger logrus.FieldLogger
}

func NewSubmissionController(relay submissionRelayer) *SubmissionController {
	return &SubmissionController{
		relay:  relay,
		logger: factory.NewModuleLogger("submissions-controller"),
	}
}

func (c *SubmissionController) SendJobApplication(ctx echo.Context) error {
	return c.send(ctx, entity.PaymentTypeJobApplication, "Your application has been sent. We will get back to you soon.")
}

func (c *SubmissionController) SendHiringRequest(ctx echo.Context) error {
	return c.send(ctx, entity.PaymentTypeHiringRequest, "Your hiring request has been sent. We will get back to you soon.")
}

func (c *SubmissionController) send(ctx echo.Context, kind, successMessage string) error {
	req, err := types.NewSubmissionRequestFromContext(ctx, kind)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	_, err = c.relay.Relay(ctx.Request().Context(), req.Kind, req.Payload, nil)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrOperatorEmail):
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Submission notification failed")
			return c.writeError(ctx, http.StatusBadGateway, "could not deliver your submission, please try again")
		default:
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Submission relay failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusOK, &types.MessageResponse{Success: true, Message: successMessage})
}

func (c *SubmissionController) writeError(ctx echo.Context, statusCode int, message string) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{Error: message})
}
