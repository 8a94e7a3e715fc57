package pos

import (
	"github.com/PeeapDev/merchant-backend/internal/jobs/runtime"
	"github.com/PeeapDev/merchant-backend/internal/services"
)

// reconcileBatch bounds how many parked ops one run reapplies.
const reconcileBatch = 100

// SyncReconcileHandler sweeps parked sync operations for a merchant and
// reapplies the ones with attempts left. The sync service enqueues a
// run whenever a push parks an op; it can also be kicked off by hand
// from the console.
type SyncReconcileHandler struct {
	sync services.SyncService
}

func NewSyncReconcileHandler(sync services.SyncService) *SyncReconcileHandler {
	return &SyncReconcileHandler{sync: sync}
}

func (h *SyncReconcileHandler) Run(c *runtime.Context) {
	c.Progress("reconcile", 10, "reapplying parked operations")
	applied, err := h.sync.RetryParked(c.Ctx, c.Job.MerchantID, reconcileBatch)
	if err != nil {
		c.Fail("reconcile", err)
		return
	}
	c.Succeed(map[string]any{"applied": applied})
}
