package classify

// The seven canonical analytical themes, in report order.
const (
	ThemeGeopolitical = "Geopolitical Tensions"
	ThemeCyber        = "Cybersecurity Warfare"
	ThemeEmergingTech = "Emerging Tech"
	ThemeNational     = "National Security"
	ThemeMilitary     = "Military Modernization"
	ThemeRulesOrder   = "Rules-Based Order"
	ThemeForesight    = "Strategic Foresight"
)

// Themes lists the canonical themes in their stable presentation order.
var Themes = []string{
	ThemeGeopolitical,
	ThemeCyber,
	ThemeEmergingTech,
	ThemeNational,
	ThemeMilitary,
	ThemeRulesOrder,
	ThemeForesight,
}

// synonyms maps lowercase label variations the model tends to emit onto
// canonical themes.
var synonyms = map[string]string{
	"geopolitics":  ThemeGeopolitical,
	"geopolitical": ThemeGeopolitical,
	"tensions":     ThemeGeopolitical,
	"statecraft":   ThemeGeopolitical,
	"diplomacy":    ThemeGeopolitical,
	"asean":        ThemeGeopolitical,

	"cyber":         ThemeCyber,
	"cybersecurity": ThemeCyber,
	"security":      ThemeCyber,
	"warfare":       ThemeCyber,
	"espionage":     ThemeCyber,

	"tech":       ThemeEmergingTech,
	"technology": ThemeEmergingTech,
	"emerging":   ThemeEmergingTech,
	"innovation": ThemeEmergingTech,
	"ai":         ThemeEmergingTech,
	"quantum":    ThemeEmergingTech,

	"national":    ThemeNational,
	"homeland":    ThemeNational,
	"terrorism":   ThemeNational,
	"extremism":   ThemeNational,
	"biosecurity": ThemeNational,

	"military":      ThemeMilitary,
	"defense":       ThemeMilitary,
	"modernization": ThemeMilitary,
	"doctrine":      ThemeMilitary,
	"alliance":      ThemeMilitary,

	"rules":         ThemeRulesOrder,
	"law":           ThemeRulesOrder,
	"legal":         ThemeRulesOrder,
	"international": ThemeRulesOrder,
	"un":            ThemeRulesOrder,
	"treaty":        ThemeRulesOrder,

	"foresight":   ThemeForesight,
	"trends":      ThemeForesight,
	"climate":     ThemeForesight,
	"demographic": ThemeForesight,
	"future":      ThemeForesight,
}

// dropLabels are model answers that mean "does not belong in the digest".
var dropLabels = map[string]struct{}{
	"irrelevant":    {},
	"other":         {},
	"uncategorized": {},
	"none":          {},
}

type themeKeywords struct {
	theme    string
	keywords []string
}

// fallbackKeywords drives the deterministic keyword classifier. The slice is
// ordered: the first theme whose keyword list matches wins, so ties resolve
// the same way on every run.
var fallbackKeywords = []themeKeywords{
	{ThemeGeopolitical, []string{"china", "russia", "taiwan", "ukraine", "iran", "diplomacy", "sanctions", "trade war", "nuclear", "middle east", "africa", "asean", "indo-pacific"}},
	{ThemeCyber, []string{"cyber", "hack", "breach", "malware", "ransomware", "apt", "espionage", "disinformation", "deepfake", "infrastructure attack", "zero-day"}},
	{ThemeEmergingTech, []string{"ai", "artificial intelligence", "quantum", "autonomous", "drone", "space", "satellite", "semiconductor", "chip", "biotech", "crispr", "5g"}},
	{ThemeNational, []string{"terrorism", "extremism", "pandemic", "biosecurity", "food security", "energy security", "homeland", "radicalization", "social cohesion"}},
	{ThemeMilitary, []string{"military", "defense", "weapons", "hypersonic", "fighter", "naval", "alliance", "nato", "exercise", "doctrine", "hybrid warfare"}},
	{ThemeRulesOrder, []string{"un", "united nations", "sanctions", "peacekeeping", "unclos", "maritime law", "sovereignty", "international law", "humanitarian"}},
	{ThemeForesight, []string{"climate", "demographic", "aging", "urbanization", "migration", "arctic", "resource", "megacities", "non-state", "wagner", "pmc"}},
}
