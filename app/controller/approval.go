package controller

import (
	"context"
	"net/http"
	"net/url"

	"github.com/coshikowa/ms-go-agency/app/factory"
	"github.com/coshikowa/ms-go-agency/app/service"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type tokenApprover interface {
	ApproveByToken(ctx context.Context, token string) (service.ApprovalOutcome, error)
}

// ApprovalController handles the operator's emailed approval link. The
// operator clicks from a mail client, so every path ends in a redirect to
// the result page rather than a JSON body.
type ApprovalController struct {
	approver        tokenApprover
	redirectBaseURL string
	logger          logrus.FieldLogger
}

func NewApprovalController(approver tokenApprover, redirectBaseURL string) *ApprovalController {
	return &ApprovalController{
		approver:        approver,
		redirectBaseURL: redirectBaseURL,
		logger:          factory.NewModuleLogger("approval-controller"),
	}
}

func (c *ApprovalController) ApprovePayment(ctx echo.Context) error {
	token := ctx.QueryParam("token")

	outcome, err := c.approver.ApproveByToken(ctx.Request().Context(), token)
	if err != nil {
		c.logger.WithError(err).Error("Token approval failed")
		return ctx.Redirect(http.StatusFound, c.redirectTo("error", "server_error"))
	}

	switch outcome {
	case service.ApprovalOutcomeCompleted, service.ApprovalOutcomeAlreadyCompleted:
		// The result page resolves the token to show the payment; both
		// first and repeat visits land on the same success view.
		return ctx.Redirect(http.StatusFound, c.redirectTo("token", token))
	default:
		return ctx.Redirect(http.StatusFound, c.redirectTo("error", "invalid_token"))
	}
}

func (c *ApprovalController) redirectTo(key, value string) string {
	target, err := url.Parse(c.redirectBaseURL)
	if err != nil {
		return c.redirectBaseURL
	}
	query := target.Query()
	query.Set(key, value)
	target.RawQuery = query.Encode()
	return target.String()
}
