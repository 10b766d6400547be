package constants

// ArchiveVariant selects which base path a document is archived under.
type ArchiveVariant string

// Stable values (these exact strings appear in log lines).
const (
	VariantOriginal ArchiveVariant = "ORIGINAL" // document as received
	VariantRedacted ArchiveVariant = "REDACTED" // sensitive content removed
)
