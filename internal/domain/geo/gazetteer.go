package geo

import "strings"

// Place is a gazetteer entry.
type Place struct {
	Coordinates Coordinates
	Zone        string
}

// gazetteer keys are normalized "city, country" strings.
var gazetteer = map[string]Place{
	"guatemala city, guatemala":      {Coordinates{14.6349, -90.5069}, "America/Guatemala"},
	"ciudad de guatemala, guatemala": {Coordinates{14.6349, -90.5069}, "America/Guatemala"},
	"mixco, guatemala":               {Coordinates{14.6333, -90.6064}, "America/Guatemala"},
	"villa nueva, guatemala":         {Coordinates{14.5269, -90.5875}, "America/Guatemala"},
	"quetzaltenango, guatemala":      {Coordinates{14.8347, -91.5180}, "America/Guatemala"},
	"antigua guatemala, guatemala":   {Coordinates{14.5586, -90.7295}, "America/Guatemala"},
	"escuintla, guatemala":           {Coordinates{14.3050, -90.7850}, "America/Guatemala"},
	"cobán, guatemala":               {Coordinates{15.4708, -90.3708}, "America/Guatemala"},
	"coban, guatemala":               {Coordinates{15.4708, -90.3708}, "America/Guatemala"},
	"huehuetenango, guatemala":       {Coordinates{15.3197, -91.4709}, "America/Guatemala"},
	"mexico city, mexico":            {Coordinates{19.4326, -99.1332}, "America/Mexico_City"},
	"san salvador, el salvador":      {Coordinates{13.6929, -89.2182}, "America/El_Salvador"},
	"tegucigalpa, honduras":          {Coordinates{14.0723, -87.1921}, "America/Tegucigalpa"},
	"managua, nicaragua":             {Coordinates{12.1150, -86.2362}, "America/Managua"},
	"san josé, costa rica":           {Coordinates{9.9281, -84.0907}, "America/Costa_Rica"},
	"san jose, costa rica":           {Coordinates{9.9281, -84.0907}, "America/Costa_Rica"},
	"panama city, panama":            {Coordinates{8.9824, -79.5199}, "America/Panama"},
	"bogotá, colombia":               {Coordinates{4.7110, -74.0721}, "America/Bogota"},
	"bogota, colombia":               {Coordinates{4.7110, -74.0721}, "America/Bogota"},
	"lima, peru":                     {Coordinates{-12.0464, -77.0428}, "America/Lima"},
	"buenos aires, argentina":        {Coordinates{-34.6037, -58.3816}, "America/Argentina/Buenos_Aires"},
	"santiago, chile":                {Coordinates{-33.4489, -70.6693}, "America/Santiago"},
	"madrid, spain":                  {Coordinates{40.4168, -3.7038}, "Europe/Madrid"},
	"new york, united states":        {Coordinates{40.7128, -74.0060}, "America/New_York"},
	"los angeles, united states":     {Coordinates{34.0522, -118.2437}, "America/Los_Angeles"},
	"london, united kingdom":         {Coordinates{51.5074, -0.1278}, "Europe/London"},
}

// Normalize lowercases the query, trims it, collapses inner whitespace and
// removes whitespace around commas.
func Normalize(cityCountry string) string {
	parts := strings.Split(strings.ToLower(cityCountry), ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		clean := strings.Join(strings.Fields(part), " ")
		if clean == "" {
			continue
		}
		out = append(out, clean)
	}
	return strings.Join(out, ", ")
}

// LookupPlace checks the static gazetteer only.
func LookupPlace(cityCountry string) (Place, bool) {
	place, ok := gazetteer[Normalize(cityCountry)]
	return place, ok
}
