package models

import (
	"fmt"
	"strings"
)

// DataCompletenessError aborts evaluation for a single patient when a
// mandatory value is missing and no default applies. Batch processing
// records it per patient and continues with the rest.
type DataCompletenessError struct {
	PatientID string
	Missing   []string
}

func (e *DataCompletenessError) Error() string {
	return fmt.Sprintf("patient %s: incomplete clinical data: missing %s",
		e.PatientID, strings.Join(e.Missing, ", "))
}

// CatalogIntegrityError means the rule catalog itself is malformed. It is
// detected at catalog-load time and is fatal to process startup, never
// encountered per patient.
type CatalogIntegrityError struct {
	Problems []string
}

func (e *CatalogIntegrityError) Error() string {
	return fmt.Sprintf("rule catalog is malformed: %s", strings.Join(e.Problems, "; "))
}
