package weather

var descriptions = map[int]string{
	0:  "Ciel dégagé",
	1:  "Principalement clair",
	2:  "Partiellement nuageux",
	3:  "Couvert",
	45: "Brouillard",
	48: "Brouillard givrant",
	51: "Bruine légère",
	53: "Bruine modérée",
	55: "Bruine dense",
	56: "Bruine verglaçante légère",
	57: "Bruine verglaçante dense",
	61: "Pluie faible",
	63: "Pluie modérée",
	65: "Pluie forte",
	66: "Pluie verglaçante légère",
	67: "Pluie verglaçante forte",
	71: "Neige faible",
	73: "Neige modérée",
	75: "Neige forte",
	77: "Grains de neige",
	80: "Averses faibles",
	81: "Averses modérées",
	82: "Averses fortes",
	85: "Averses de neige faible",
	86: "Averses de neige fortes",
	95: "Orages",
	96: "Orages grêle léger",
	99: "Orages grêle fort",
}

// Describe returns the French label of a WMO weather code.
func Describe(code int) string {
	if d, ok := descriptions[code]; ok {
		return d
	}
	return "N/A"
}

// Icon returns an emoji for a WMO weather code.
func Icon(code int) string {
	switch code {
	case 0:
		return "☀️"
	case 1, 2:
		return "🌤️"
	case 3:
		return "☁️"
	case 45, 48:
		return "🌫️"
	case 51, 53, 55, 56, 57:
		return "🌦️"
	case 61, 63, 65, 80, 81, 82:
		return "🌧️"
	case 71, 73, 75, 77, 85, 86:
		return "❄️"
	case 95, 96, 99:
		return "⛈️"
	}
	return "🌡️"
}
