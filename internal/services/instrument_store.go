// Package services provides internal service implementations for the
// instrument registry backend.
package services

import (
	"context"

	"github.com/instrumentdb/pidinst-backend/database"
	"github.com/instrumentdb/pidinst-backend/model"
	"github.com/instrumentdb/pidinst-backend/pidinst"
)

// InstrumentStoreWrapper implements pidinst.Store on top of the database
// package.
type InstrumentStoreWrapper struct {
	DB database.DBConnection
}

// InstrumentByUUID loads a resolved instrument by canonical UUID.
func (w *InstrumentStoreWrapper) InstrumentByUUID(ctx context.Context, uuid string) (*model.Instrument, error) {
	return database.InstrumentByUUID(ctx, w.DB, uuid)
}

// ListInstrumentUUIDs returns every instrument UUID in stable order.
func (w *InstrumentStoreWrapper) ListInstrumentUUIDs(ctx context.Context) ([]string, error) {
	return database.ListInstrumentUUIDs(ctx, w.DB)
}

// SavePID persists an issued PID.
func (w *InstrumentStoreWrapper) SavePID(ctx context.Context, uuid, pid string) error {
	return database.SavePID(ctx, w.DB, uuid, pid)
}

// Ensure compile-time interface check
var _ pidinst.Store = (*InstrumentStoreWrapper)(nil)
