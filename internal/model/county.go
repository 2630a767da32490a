package model

// Counties lists the Romanian counties offered in forms and filters.
var Counties = []string{
	"Alba", "Arad", "Argeș", "Bacău", "Bihor", "Bistrița-Năsăud", "Botoșani",
	"Brașov", "Brăila", "Buzău", "Caraș-Severin", "Călărași", "Cluj", "Constanța",
	"Covasna", "Dâmbovița", "Dolj", "Galați", "Giurgiu", "Gorj", "Harghita",
	"Hunedoara", "Ialomița", "Iași", "Ilfov", "Maramureș", "Mehedinți", "Mureș",
	"Neamț", "Olt", "Prahova", "Satu Mare", "Sălaj", "Sibiu", "Suceava",
	"Teleorman", "Timiș", "Tulcea", "Vaslui", "Vâlcea", "Vrancea", "București",
}

var countySet = func() map[string]bool {
	m := make(map[string]bool, len(Counties))
	for _, c := range Counties {
		m[c] = true
	}
	return m
}()

func IsCounty(name string) bool {
	return countySet[name]
}
