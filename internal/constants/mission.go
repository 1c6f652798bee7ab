package constants

// StatusCode is the API-level acceptance of a mission
type StatusCode string

const (
	StatusAccepted StatusCode = "ACCEPTED"
	StatusRefused  StatusCode = "REFUSED"
)

// GeolocStatus describes how an address got its coordinates
type GeolocStatus string

const (
	GeolocShouldEnrich        GeolocStatus = "SHOULD_ENRICH"
	GeolocEnriched            GeolocStatus = "ENRICHED"
	GeolocEnrichedByPublisher GeolocStatus = "ENRICHED_BY_PUBLISHER"
	GeolocNotFound            GeolocStatus = "NOT_FOUND"
	GeolocNoData              GeolocStatus = "NO_DATA"
	GeolocFailed              GeolocStatus = "FAILED"
)

// GeocoderMinScore is the exclusive lower bound on result_score for an accepted match
const GeocoderMinScore = 0.4

const (
	RemoteNo       = "no"
	RemotePossible = "possible"
	RemoteFull     = "full"
)

var RemoteValues = map[string]bool{
	RemoteNo:       true,
	RemotePossible: true,
	RemoteFull:     true,
}

var MissionDomains = map[string]bool{
	"environnement":          true,
	"solidarite-insertion":   true,
	"sante":                  true,
	"culture-loisirs":        true,
	"education":              true,
	"emploi":                 true,
	"sport":                  true,
	"humanitaire":            true,
	"animaux":                true,
	"vivre-ensemble":         true,
	"benevolat-competences":  true,
	"prevention-protection":  true,
	"memoire-et-citoyennete": true,
	"autre":                  true,
}

// Description length bounds, in characters
const (
	DescriptionMinLength = 300
	DescriptionMaxLength = 20000
)

// Moderation comments set on refused missions
const (
	CommentTitleMissing          = "Titre manquant"
	CommentTitleEncoding         = "Problème d'encodage dans le titre"
	CommentTitleTooShort         = "Le titre est trop court (1 seul mot)"
	CommentDescriptionMissing    = "Description manquante"
	CommentDescriptionEncoding   = "Problème d'encodage dans la description"
	CommentDescriptionTooShort   = "La description est trop courte (moins de 300 caractères)"
	CommentDescriptionTooLong    = "La description est trop longue (plus de 20000 caractères)"
	CommentApplicationURLMissing = "Url de candidature manquante"
	CommentCountryInvalid        = "Code pays non valide"
	CommentRemoteInvalid         = "Valeur de télétravail non valide (no, possible ou full)"
	CommentPlacesInvalid         = "Nombre de places invalide (doit être supérieur à 0)"
	CommentDomainInvalid         = "Domaine non valide"
	CommentOrganizationEncoding  = "Problème d'encodage dans le nom de l'organisation"
)
