package constants

// VerificationStatus is the outcome of organization identity resolution
type VerificationStatus string

const (
	VerificationRNAMatchedWithSubvention   VerificationStatus = "RNA_MATCHED_WITH_DATA_SUBVENTION"
	VerificationRNAMatchedWithDB           VerificationStatus = "RNA_MATCHED_WITH_DATA_DB"
	VerificationRNANotMatched              VerificationStatus = "RNA_NOT_MATCHED"
	VerificationSiretMatchedWithSubvention VerificationStatus = "SIRET_MATCHED_WITH_DATA_SUBVENTION"
	VerificationSiretMatchedWithDB         VerificationStatus = "SIRET_MATCHED_WITH_DATA_DB"
	VerificationSiretNotMatched            VerificationStatus = "SIRET_NOT_MATCHED"
	VerificationNameExactMatched           VerificationStatus = "NAME_EXACT_MATCHED_WITH_DB"
	VerificationNameApproximateMatched     VerificationStatus = "NAME_APPROXIMATE_MATCHED_WITH_DB"
	VerificationNameNotMatched             VerificationStatus = "NAME_NOT_MATCHED"
	VerificationNoData                     VerificationStatus = "NO_DATA"
	VerificationFailed                     VerificationStatus = "FAILED"
)

// Verified reports whether the status links the mission to a registry organization
func (s VerificationStatus) Verified() bool {
	switch s {
	case VerificationRNAMatchedWithSubvention, VerificationRNAMatchedWithDB,
		VerificationSiretMatchedWithSubvention, VerificationSiretMatchedWithDB,
		VerificationNameExactMatched:
		return true
	}
	return false
}

// Organization provenance
const (
	OrganizationSourceRegistry   = "RNA_REGISTRY"
	OrganizationSourceSubvention = "DATA_SUBVENTION"
	OrganizationSourcePublisher  = "PUBLISHER"
)

// MaxNameMatchCandidates bounds the approximate candidate list stored per name
const MaxNameMatchCandidates = 10
