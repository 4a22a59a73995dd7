package main

import (
	"context"
	"errors"
	"fmt"
	"huletfish/src/middlewares"
	"huletfish/src/models"
	"huletfish/src/payments"
	"huletfish/src/types"
	"huletfish/src/utils"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// PaymentAPI is the part of payments.Service the HTTP layer calls.
type PaymentAPI interface {
	Checkout(ctx context.Context, in payments.CheckoutInput) (*payments.CheckoutResult, error)
	Verify(ctx context.Context, paymentID string, userID uint, isAdmin bool) (*models.Payment, error)
	History(ctx context.Context, userID uint, q payments.HistoryQuery) (*payments.HistoryPage, error)
	GetPayment(ctx context.Context, paymentID string, userID uint, isAdmin bool) (*models.Payment, error)
	RequestRefund(ctx context.Context, in payments.RefundInput) (*models.Payment, error)
	HandleWebhook(ctx context.Context, method types.PaymentMethod, payload []byte, header http.Header) (*payments.WebhookNotification, error)
}

const maxWebhookBody = 1 << 20

func fieldErrors(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			out = append(out, fmt.Sprintf("%s failed on %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		out = append(out, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
	}
	return out
}

func badRequest(ctx *gin.Context, err error) {
	ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request", "error": fieldErrors(err)})
}

// respondError maps the payments error taxonomy to statuses. Unknown errors never reach the client.
func respondError(ctx *gin.Context, err error) {
	var dup *payments.DuplicatePaymentError
	var gerr *payments.GatewayError
	switch {
	case errors.As(err, &dup):
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "A payment for this booking already exists", "paymentId": dup.PaymentID})
	case errors.Is(err, payments.ErrCheckoutInProgress):
		ctx.JSON(http.StatusConflict, gin.H{"success": false, "message": "A checkout for this booking is already in progress"})
	case errors.As(err, &gerr):
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Payment gateway error", "error": gerr.Message})
	case errors.Is(err, payments.ErrValidation):
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request", "error": err.Error()})
	case errors.Is(err, payments.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Not found"})
	case errors.Is(err, payments.ErrSignatureInvalid):
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid signature"})
	case errors.Is(err, payments.ErrRefundWindowClosed):
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Refunds close 24 hours before the experience starts"})
	case errors.Is(err, payments.ErrInvalidState):
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Payment cannot be changed in its current state", "error": err.Error()})
	default:
		log.Printf("[Payments] %s %s: %s\n", ctx.Request.Method, ctx.FullPath(), err.Error())
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
	}
}

func paymentHandlers(g *gin.RouterGroup, api PaymentAPI) *gin.RouterGroup {
	g.
		POST("/payments/checkout", func(ctx *gin.Context) {
			var body types.CheckoutRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				badRequest(ctx, err)
				return
			}
			result, err := api.Checkout(ctx.Request.Context(), payments.CheckoutInput{
				BookingID: body.BookingID,
				UserID:    ctx.GetUint("id"),
				IsAdmin:   middlewares.IsAdmin(ctx),
				Method:    types.PaymentMethod(body.PaymentMethod),
				Currency:  body.Currency,
				ReturnURL: body.ReturnURL,
				Metadata:  utils.RequestMetadata(ctx),
			})
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"success": true, "data": result})
		}).
		GET("/payments/history", func(ctx *gin.Context) {
			var query types.PaymentHistoryQuery
			if err := ctx.ShouldBindQuery(&query); err != nil {
				badRequest(ctx, err)
				return
			}
			page, err := api.History(ctx.Request.Context(), ctx.GetUint("id"), payments.HistoryQuery{
				Page:   query.Page,
				Limit:  query.Limit,
				Status: query.Status,
			})
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "data": page})
		}).
		GET("/payments/:paymentId", func(ctx *gin.Context) {
			var params types.PaymentRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				badRequest(ctx, err)
				return
			}
			payment, err := api.GetPayment(ctx.Request.Context(), params.PaymentID, ctx.GetUint("id"), middlewares.IsAdmin(ctx))
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "data": payment})
		}).
		GET("/payments/:paymentId/verify", func(ctx *gin.Context) {
			var params types.PaymentRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				badRequest(ctx, err)
				return
			}
			payment, err := api.Verify(ctx.Request.Context(), params.PaymentID, ctx.GetUint("id"), middlewares.IsAdmin(ctx))
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "data": payment})
		}).
		POST("/payments/:paymentId/refund", func(ctx *gin.Context) {
			var params types.PaymentRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				badRequest(ctx, err)
				return
			}
			var body types.RefundRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				badRequest(ctx, err)
				return
			}
			payment, err := api.RequestRefund(ctx.Request.Context(), payments.RefundInput{
				PaymentID: params.PaymentID,
				UserID:    ctx.GetUint("id"),
				Reason:    strings.TrimSpace(body.Reason),
				Amount:    body.Amount,
			})
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Refund request submitted", "data": payment})
		})
	return g
}

// webhookHandlers are public; authenticity comes from the gateway signature.
func webhookHandlers(g *gin.RouterGroup, api PaymentAPI) *gin.RouterGroup {
	receive := func(method types.PaymentMethod, ack gin.H) gin.HandlerFunc {
		return func(ctx *gin.Context) {
			payload, err := io.ReadAll(io.LimitReader(ctx.Request.Body, maxWebhookBody))
			if err != nil {
				log.Printf("Error reading request body: %s\n", err.Error())
				ctx.Status(http.StatusServiceUnavailable)
				return
			}
			if _, err := api.HandleWebhook(ctx.Request.Context(), method, payload, ctx.Request.Header); err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, ack)
		}
	}
	g.
		POST("/payments/webhook/stripe", receive(types.PAYMENT_METHOD_STRIPE, gin.H{"received": true})).
		POST("/payments/webhook/chapa", receive(types.PAYMENT_METHOD_CHAPA, gin.H{"success": true}))
	return g
}
