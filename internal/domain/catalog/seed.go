package catalog

// Seeds de referencia compartidos por los repos memory y postgres (dev).
// En producción estas tablas las administra el equipo de catálogo.

func SeedSpecies() []Species {
	return []Species{
		{ID: "sp-bovine", Name: "bovine"},
		{ID: "sp-ovine", Name: "ovine"},
		{ID: "sp-caprine", Name: "caprine"},
		{ID: "sp-equine", Name: "equine"},
	}
}

func SeedRoutes() []Route {
	return []Route{
		{ID: "rt-oral", Code: "PO", Name: "oral"},
		{ID: "rt-im", Code: "IM", Name: "intramuscular"},
		{ID: "rt-sc", Code: "SC", Name: "subcutaneous"},
		{ID: "rt-iv", Code: "IV", Name: "intravenous"},
		{ID: "rt-topical", Code: "TOP", Name: "topical"},
	}
}

func SeedAgeCategories() []AgeCategory {
	return []AgeCategory{
		{ID: "ac-bov-calf", SpeciesID: "sp-bovine", Name: "calf", MinMonths: 0, MaxMonths: 8},
		{ID: "ac-bov-young", SpeciesID: "sp-bovine", Name: "young", MinMonths: 8, MaxMonths: 24},
		{ID: "ac-bov-adult", SpeciesID: "sp-bovine", Name: "adult", MinMonths: 24, MaxMonths: 0},
		{ID: "ac-ovi-lamb", SpeciesID: "sp-ovine", Name: "lamb", MinMonths: 0, MaxMonths: 6},
		{ID: "ac-ovi-adult", SpeciesID: "sp-ovine", Name: "adult", MinMonths: 6, MaxMonths: 0},
	}
}
