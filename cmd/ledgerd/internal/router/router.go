package router

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aptosedu/aptpay/ledger"
	"github.com/aptosedu/aptpay/logger"
	"github.com/aptosedu/aptpay/types"
)

// Store is the storage backend the router serves.
type Store interface {
	ledger.Appender
	ledger.Reader
}

// Manages the HTTP surface of the ledger service
type Router struct {
	Store Store
	// Base Gin group to use for routing
	Base gin.IRoutes
	Log  logger.Logger
}

const PaymentsPath = "/api/payments"

func (r *Router) createPayment(ctx *gin.Context) {
	var record types.PaymentRecord
	if err := ctx.BindJSON(&record); err != nil {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if record.Date.IsZero() {
		record.Date = time.Now().UTC()
	}

	if err := r.Store.Append(ctx, record); err != nil {
		var payErr *types.PayError
		if errors.As(err, &payErr) && payErr.Code == types.ErrInvalidInput {
			ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": payErr.Message})
			return
		}
		r.Log.Error("failed to store payment", map[string]any{"error": err.Error()})
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to store payment"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"status": "ok"})
}

func (r *Router) listPayments(ctx *gin.Context) {
	records, err := r.Store.List(ctx)
	if err != nil {
		r.Log.Error("failed to list payments", map[string]any{"error": err.Error()})
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to list payments"})
		return
	}
	if records == nil {
		records = []types.PaymentRecord{}
	}
	ctx.JSON(http.StatusOK, records)
}

// Register routes in the Gin engine
func (r *Router) Register() {
	r.Base.POST(PaymentsPath, r.createPayment)
	r.Base.GET(PaymentsPath, r.listPayments)
}
