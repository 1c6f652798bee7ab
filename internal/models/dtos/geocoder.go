package dtos

// GeocodeRequestRow is one line of the batch geocoder CSV payload
type GeocodeRequestRow struct {
	ClientID       string
	AddressIndex   int
	Address        string
	City           string
	PostCode       string
	DepartmentCode string
}

// GeocodeResult is one line of the geocoder CSV response, read by header name
type GeocodeResult struct {
	ClientID     string
	AddressIndex int
	Score        float64
	Name         string // result_name, street part of the match
	Label        string
	PostCode     string
	City         string
	CityCode     string
	Context      string // "75, Paris, Île-de-France"
	Latitude     *float64
	Longitude    *float64
}
