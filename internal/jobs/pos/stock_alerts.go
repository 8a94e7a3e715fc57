package pos

import (
	"github.com/google/uuid"

	"github.com/PeeapDev/merchant-backend/internal/jobs/runtime"
	"github.com/PeeapDev/merchant-backend/internal/repos"
	"github.com/PeeapDev/merchant-backend/internal/services"
)

// StockAlertsHandler sweeps the merchant's tracked products and raises
// a low-stock event for every one at or below its reorder level. The
// checkout path already alerts on the products it touches; this catches
// drift from purchase receipts and manual adjustments.
type StockAlertsHandler struct {
	productRepo repos.ProductRepo
	stockRepo   repos.StockMovementRepo
	notify      services.StockNotifier
}

func NewStockAlertsHandler(productRepo repos.ProductRepo, stockRepo repos.StockMovementRepo, notify services.StockNotifier) *StockAlertsHandler {
	return &StockAlertsHandler{
		productRepo: productRepo,
		stockRepo:   stockRepo,
		notify:      notify,
	}
}

func (h *StockAlertsHandler) Run(c *runtime.Context) {
	c.Progress("scan", 10, "listing tracked products")
	products, err := h.productRepo.ListByMerchant(c.Ctx, nil, c.Job.MerchantID, true)
	if err != nil {
		c.Fail("scan", err)
		return
	}
	ids := make([]uuid.UUID, 0, len(products))
	for _, p := range products {
		if p.TrackStock {
			ids = append(ids, p.ID)
		}
	}
	if len(ids) == 0 {
		c.Succeed(map[string]any{"alerts": 0, "tracked": 0})
		return
	}

	c.Progress("levels", 50, "reading stock levels")
	onHand, err := h.stockRepo.OnHandBulk(c.Ctx, nil, ids)
	if err != nil {
		c.Fail("levels", err)
		return
	}

	alerts := 0
	for _, p := range products {
		if !p.TrackStock {
			continue
		}
		if onHand[p.ID] <= p.ReorderLevel {
			h.notify.StockLow(c.Job.MerchantID, p, onHand[p.ID])
			alerts++
		}
	}
	c.Succeed(map[string]any{"alerts": alerts, "tracked": len(ids)})
}
