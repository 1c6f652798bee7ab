package dtos

// Valued is the grants API wrapper around every field: [{"value": ...}, ...].
// Several sources may report a field; the first one wins.
type Valued[T any] []struct {
	Value T `json:"value"`
}

// First returns the first reported value, or the zero value
func (v Valued[T]) First() T {
	var zero T
	if len(v) == 0 {
		return zero
	}
	return v[0].Value
}

// GrantsAddress is a postal address as returned by the grants API
type GrantsAddress struct {
	Number     string `json:"numero"`
	StreetType string `json:"type_voie"`
	Street     string `json:"voie"`
	PostalCode string `json:"code_postal"`
	City       string `json:"commune"`
}

// GrantsAssociation is the association payload of GET /association/{rna}
type GrantsAssociation struct {
	RNA               Valued[string]        `json:"rna"`
	Siren             Valued[string]        `json:"siren"`
	DenominationRNA   Valued[string]        `json:"denomination_rna"`
	DenominationSiren Valued[string]        `json:"denomination_siren"`
	ObjectRNA         Valued[string]        `json:"objet_social"`
	Nature            Valued[string]        `json:"nature"`
	Status            Valued[string]        `json:"etat"`
	CreationDate      Valued[string]        `json:"date_creation_rna"`
	ModificationDate  Valued[string]        `json:"date_modification_rna"`
	HeadOfficeAddress Valued[GrantsAddress] `json:"adresse_siege_rna"`
	Website           Valued[string]        `json:"site_web"`
	Email             Valued[string]        `json:"email"`
	Phone             Valued[string]        `json:"telephone"`
	Establishments    []GrantsEstablishment `json:"etablissements"`
}

// GrantsAssociationEnvelope is the top-level response of GET /association/{rna}
type GrantsAssociationEnvelope struct {
	Association *GrantsAssociation `json:"association"`
}

// GrantsEstablishment is the payload of GET /etablissement/{siret}
type GrantsEstablishment struct {
	Siret        Valued[string]        `json:"siret"`
	HeadOffice   Valued[bool]          `json:"siege"`
	Denomination Valued[string]        `json:"denomination"`
	RNA          Valued[string]        `json:"rna"`
	Address      Valued[GrantsAddress] `json:"adresse"`
	Phone        Valued[string]        `json:"telephone"`
	Email        Valued[string]        `json:"email"`
}

// GrantsEstablishmentEnvelope is the top-level response of GET /etablissement/{siret}
type GrantsEstablishmentEnvelope struct {
	Establishment *GrantsEstablishment `json:"etablissement"`
}
