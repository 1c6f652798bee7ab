package constants

type (
	APIStatus   string
	CachePrefix string
)

const (
	APIStatusOk    APIStatus = "ok"
	APIStatusError APIStatus = "error"

	CachePrefixGrantsAssociation   CachePrefix = "GRANTS_ASSO_"
	CachePrefixGrantsEtablissement CachePrefix = "GRANTS_ETAB_"
)

// Import pipeline sizing defaults
const (
	DefaultChunkSize        = 2000
	DefaultBuildConcurrency = 50
	DefaultUpsertBatchSize  = 200
)
