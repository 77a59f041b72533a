package rest

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prizmamta/metropole/internal/core/metropole"
	"go.uber.org/zap"
)

//	@Summary	Webhook health check
//	@Schemes
//	@Description	the gateway probes the notification URL with GET
//	@Tags			payment
//	@Produce		json
//	@Success		200	"always"
//	@Router			/api/pix/webhook [get]
func (s *Server) handlerWebhookHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

//	@Summary	Payment notification
//	@Schemes
//	@Description	reconciles a gateway notification; every outcome, including internal failures, answers 200 so the gateway stops redelivering
//	@Tags			payment
//	@Accept			json
//	@Produce		json
//	@Success		200	"always"
//	@Router			/api/pix/webhook [post]
func (s *Server) handlerWebhook(c *gin.Context) {
	ctx := c.Request.Context()

	bBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		s.log.Error("failed read webhook body", zap.Error(err))
		bBody = nil
	}
	defer func() {
		if err := c.Request.Body.Close(); err != nil {
			s.log.Error("failed close body request", zap.Error(err))
		}
	}()

	paymentID, ok := metropole.ExtractPaymentID(c.Request.URL.Query(), bBody)
	if !ok {
		// Nothing actionable. A non-200 here would only make the
		// gateway redeliver the same empty notification forever.
		c.JSON(http.StatusOK, gin.H{"ok": true, "ignored": true})
		return
	}

	result, err := s.service.ProcessNotification(ctx, paymentID)
	if err != nil {
		s.log.Error("webhook processing failed",
			zap.String("paymentID", paymentID),
			zap.Error(err),
		)
		c.JSON(http.StatusOK, gin.H{"ok": true, "error": err.Error()})
		return
	}

	switch result.Outcome {
	case metropole.OutcomeIgnored:
		c.JSON(http.StatusOK, gin.H{"ok": true, "ignored": true})
	case metropole.OutcomeNotApproved:
		c.JSON(http.StatusOK, gin.H{"ok": true, "status": result.PaymentStatus})
	case metropole.OutcomeAmountMismatch:
		c.JSON(http.StatusOK, gin.H{"ok": true, "amount_mismatch": true})
	case metropole.OutcomeAlreadyDelivered:
		c.JSON(http.StatusOK, gin.H{"ok": true, "already_delivered": true})
	case metropole.OutcomeDelivered:
		c.JSON(http.StatusOK, gin.H{
			"ok":         true,
			"delivered":  true,
			"diamonds":   result.Diamonds,
			"order_id":   result.OrderID,
			"payment_id": result.PaymentID,
		})
	default:
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
