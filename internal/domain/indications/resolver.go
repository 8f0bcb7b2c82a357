package indications

import "strings"

// ResolveQuery es el contexto de tratamiento contra el que se busca la
// indicación aplicable. CountryCode y AgeCategoryID son refinamientos
// opcionales.
type ResolveQuery struct {
	ProductID     string
	SpeciesID     string
	RouteID       string
	CountryCode   string
	AgeCategoryID string
}

// Resolution es el resultado de la cascada. Tier identifica el nivel de
// especificidad que matcheó; Fallback marca el "best effort" (ningún
// nivel matcheó pero había candidatos), para que el caller lo loguee
// como match de baja confianza.
type Resolution struct {
	Indication Indication
	Tier       string
	Fallback   bool
}

const (
	TierCountryAge = "country_age"
	TierCountry    = "country"
	TierAge        = "age"
	TierUniversal  = "universal"
	TierFallback   = "fallback"
)

// specificityTiers es la cascada de especificidad como tabla ordenada de
/// reglas: se evalúa en orden y gana el primer nivel con match. Agregar
// un nivel nuevo es insertar una fila, sin tocar el control de flujo.
var specificityTiers = []struct {
	name  string
	match func(q ResolveQuery, ind Indication) bool
}{
	{
		// país + edad exactos
		name: TierCountryAge,
		match: func(q ResolveQuery, ind Indication) bool {
			return ind.CountryCode != "" && ind.CountryCode == q.CountryCode &&
				ind.AgeCategoryID != "" && ind.AgeCategoryID == q.AgeCategoryID
		},
	},
	{
		// país exacto, cualquier edad
		name: TierCountry,
		match: func(q ResolveQuery, ind Indication) bool {
			return ind.CountryCode != "" && ind.CountryCode == q.CountryCode &&
				ind.AgeCategoryID == ""
		},
	},
	{
		// universal por país, edad exacta
		name: TierAge,
		match: func(q ResolveQuery, ind Indication) bool {
			return ind.CountryCode == "" &&
				ind.AgeCategoryID != "" && ind.AgeCategoryID == q.AgeCategoryID
		},
	},
	{
		// totalmente universal
		name: TierUniversal,
		match: func(q ResolveQuery, ind Indication) bool {
			return ind.CountryCode == "" && ind.AgeCategoryID == ""
		},
	},
}

// Resolve aplica la cascada de especificidad sobre los candidatos ya
// cargados (activos, en orden de creación). Devuelve false si no hay
// candidatos: "sin guía regulatoria" es un resultado válido, no un error.
//
// Determinismo: dentro de un nivel gana el primer candidato en orden de
// creación; entre niveles siempre gana el más específico, sin importar
// el orden de los candidatos.
func Resolve(q ResolveQuery, candidates []Indication) (Resolution, bool) {
	if len(candidates) == 0 {
		return Resolution{}, false
	}

	q.CountryCode = strings.ToUpper(strings.TrimSpace(q.CountryCode))
	q.AgeCategoryID = strings.TrimSpace(q.AgeCategoryID)

	for _, tier := range specificityTiers {
		for _, ind := range candidates {
			if tier.match(q, ind) {
				return Resolution{Indication: ind, Tier: tier.name}, true
			}
		}
	}

	// Ningún nivel matcheó pero hay candidatos: devolvemos el primero en
	// orden de creación como "best effort" en vez de fallar.
	return Resolution{Indication: candidates[0], Tier: TierFallback, Fallback: true}, true
}
