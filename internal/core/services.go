package core

import (
	"github.com/rs/zerolog"
)

type Services struct {
	Lifecycle *LifecycleService
	Ledger    *LedgerService
}

func NewServices(tx TxRunner, events EventSink, logger zerolog.Logger) *Services {
	if events == nil {
		events = NopSink{}
	}
	ledger := NewLedgerService(tx, events, logger)
	return &Services{
		Lifecycle: NewLifecycleService(tx, ledger, events, logger),
		Ledger:    ledger,
	}
}
