package storage

import (
	"context"
	"time"

	bulkapp "github.com/marketplace/portal/internal/application/bulk"
)

var _ bulkapp.Archive = DisabledArchive{}

// DisabledArchive is used when object storage is turned off. Uploads are
// still forwarded to the backend, only the copy is skipped.
type DisabledArchive struct{}

// Put does nothing
func (DisabledArchive) Put(context.Context, string, []byte, string) error {
	return nil
}

// URL always fails with bulkapp.ErrArchiveDisabled
func (DisabledArchive) URL(context.Context, string) (string, time.Time, error) {
	return "", time.Time{}, bulkapp.ErrArchiveDisabled
}

// Delete does nothing
func (DisabledArchive) Delete(context.Context, string) error {
	return nil
}
