package catalog

import "strings"

// Países soportados por el catálogo regulatorio (ISO-3166 alpha-2).
// Las indicaciones sin país aplican universalmente.
var supportedCountries = map[string]struct{}{
	"DZ": {}, "MA": {}, "TN": {}, "EG": {},
	"FR": {}, "ES": {}, "PT": {}, "IT": {},
	"AR": {}, "BR": {}, "UY": {}, "MX": {},
	"US": {}, "CA": {},
}

// ValidCountry valida un código de país; el vacío es válido (universal).
func ValidCountry(code string) bool {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return true
	}
	_, ok := supportedCountries[code]
	return ok
}
