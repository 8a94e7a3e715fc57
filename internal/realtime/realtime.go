package realtime

type SSEEvent string

// Events are broadcast on the merchant channel so every open console
// (POS, kitchen display, back office) converges on the same state.
const (
	SSEEventOrderCreated       SSEEvent = "OrderCreated"
	SSEEventOrderStatusChanged SSEEvent = "OrderStatusChanged"
	SSEEventStockLow           SSEEvent = "StockLow"
	SSEEventTicketRedeemed     SSEEvent = "TicketRedeemed"
	SSEEventCashSessionOpened  SSEEvent = "CashSessionOpened"
	SSEEventCashSessionClosed  SSEEvent = "CashSessionClosed"
	SSEEventSyncOpApplied      SSEEvent = "SyncOpApplied"
	SSEEventSyncOpParked       SSEEvent = "SyncOpParked"
	SSEEventJobProgress        SSEEvent = "JobProgress"
	SSEEventJobFailed          SSEEvent = "JobFailed"
	SSEEventJobDone            SSEEvent = "JobDone"
)

type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}
