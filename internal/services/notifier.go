package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/PeeapDev/merchant-backend/internal/realtime"
	"github.com/PeeapDev/merchant-backend/internal/types"
)

// OrderNotifier pushes order lifecycle events onto the merchant channel
// so the kitchen display and POS terminals update without polling.
type OrderNotifier interface {
	OrderCreated(merchantID uuid.UUID, order *types.Order)
	OrderStatusChanged(merchantID uuid.UUID, order *types.Order, previous string)
}

type orderNotifier struct {
	emit SSEEmitter
}

func NewOrderNotifier(emit SSEEmitter) OrderNotifier {
	return &orderNotifier{emit: emit}
}

func (n *orderNotifier) OrderCreated(merchantID uuid.UUID, order *types.Order) {
	if n == nil || n.emit == nil || merchantID == uuid.Nil {
		return
	}
	n.emit.Emit(context.Background(), realtime.SSEMessage{
		Channel: merchantID.String(),
		Event:   realtime.SSEEventOrderCreated,
		Data:    map[string]any{"order": order},
	})
}

func (n *orderNotifier) OrderStatusChanged(merchantID uuid.UUID, order *types.Order, previous string) {
	if n == nil || n.emit == nil || merchantID == uuid.Nil {
		return
	}
	n.emit.Emit(context.Background(), realtime.SSEMessage{
		Channel: merchantID.String(),
		Event:   realtime.SSEEventOrderStatusChanged,
		Data: map[string]any{
			"order_id": safeOrderID(order),
			"previous": previous,
			"status":   safeOrderStatus(order),
			"order":    order,
		},
	})
}

// StockNotifier surfaces low-stock warnings raised by checkout and the
// reorder sweep job.
type StockNotifier interface {
	StockLow(merchantID uuid.UUID, product *types.Product, onHand int64)
}

type stockNotifier struct {
	emit SSEEmitter
}

func NewStockNotifier(emit SSEEmitter) StockNotifier {
	return &stockNotifier{emit: emit}
}

func (n *stockNotifier) StockLow(merchantID uuid.UUID, product *types.Product, onHand int64) {
	if n == nil || n.emit == nil || merchantID == uuid.Nil || product == nil {
		return
	}
	n.emit.Emit(context.Background(), realtime.SSEMessage{
		Channel: merchantID.String(),
		Event:   realtime.SSEEventStockLow,
		Data: map[string]any{
			"product_id":    product.ID,
			"sku":           product.SKU,
			"name":          product.Name,
			"on_hand":       onHand,
			"reorder_level": product.ReorderLevel,
		},
	})
}

// JobNotifier mirrors background job progress onto the merchant channel.
type JobNotifier interface {
	JobProgress(merchantID uuid.UUID, job *types.JobRun, stage string, progress int, message string)
	JobFailed(merchantID uuid.UUID, job *types.JobRun, stage string, errorMessage string)
	JobDone(merchantID uuid.UUID, job *types.JobRun)
}

type jobNotifier struct {
	emit SSEEmitter
}

func NewJobNotifier(emit SSEEmitter) JobNotifier {
	return &jobNotifier{emit: emit}
}

func (n *jobNotifier) JobProgress(merchantID uuid.UUID, job *types.JobRun, stage string, progress int, message string) {
	if n == nil || n.emit == nil || merchantID == uuid.Nil {
		return
	}
	n.emit.Emit(context.Background(), realtime.SSEMessage{
		Channel: merchantID.String(),
		Event:   realtime.SSEEventJobProgress,
		Data: map[string]any{
			"job_id":   safeJobID(job),
			"job_type": safeJobType(job),
			"stage":    stage,
			"progress": progress,
			"message":  message,
		},
	})
}

func (n *jobNotifier) JobFailed(merchantID uuid.UUID, job *types.JobRun, stage string, errorMessage string) {
	if n == nil || n.emit == nil || merchantID == uuid.Nil {
		return
	}
	n.emit.Emit(context.Background(), realtime.SSEMessage{
		Channel: merchantID.String(),
		Event:   realtime.SSEEventJobFailed,
		Data: map[string]any{
			"job_id":   safeJobID(job),
			"job_type": safeJobType(job),
			"stage":    stage,
			"error":    errorMessage,
		},
	})
}

func (n *jobNotifier) JobDone(merchantID uuid.UUID, job *types.JobRun) {
	if n == nil || n.emit == nil || merchantID == uuid.Nil {
		return
	}
	n.emit.Emit(context.Background(), realtime.SSEMessage{
		Channel: merchantID.String(),
		Event:   realtime.SSEEventJobDone,
		Data: map[string]any{
			"job_id":   safeJobID(job),
			"job_type": safeJobType(job),
			"job":      job,
		},
	})
}

func safeOrderID(order *types.Order) uuid.UUID {
	if order == nil {
		return uuid.Nil
	}
	return order.ID
}

func safeOrderStatus(order *types.Order) string {
	if order == nil {
		return ""
	}
	return order.Status
}

func safeJobID(job *types.JobRun) uuid.UUID {
	if job == nil {
		return uuid.Nil
	}
	return job.ID
}

func safeJobType(job *types.JobRun) string {
	if job == nil {
		return ""
	}
	return job.JobType
}
