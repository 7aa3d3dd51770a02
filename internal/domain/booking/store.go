package booking

import (
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/clinicportal/clinicportal/internal/platform/storage"
)

// NewVisitRAMStore returns an in-memory visit store.
func NewVisitRAMStore() storage.Store[Visit] {
	return storage.NewRAMStore[Visit]()
}

// NewVisitFileStore stores one JSON document per visit under dir/visite,
// named patientKey_YYYYMMDD_HHmm.
func NewVisitFileStore(dir string, log zerolog.Logger) storage.Store[Visit] {
	return storage.NewFileStore[Visit](
		filepath.Join(dir, "visite"),
		fileName,
		log.With().Str("store", "visit-file").Logger(),
	)
}
