package constants

// DocumentStatus is the outcome of processing one label document.
type DocumentStatus string

const (
	DocumentSucceeded DocumentStatus = "SUCCEEDED" // record produced, no field defaulted
	DocumentDegraded  DocumentStatus = "DEGRADED"  // record produced, some fields defaulted
	DocumentFailed    DocumentStatus = "FAILED"    // no record
)
