package transroute

import "strings"

// Language is a translation target offered to users.
type Language struct {
	Name   string // English name, used in prompts
	Code   string // ISO code (e.g. "vi", "zh-CN")
	Native string
}

// Languages lists the common targets in menu order.
var Languages = []Language{
	{"Vietnamese", "vi", "Tiếng Việt"},
	{"English", "en", "English"},
	{"Japanese", "ja", "日本語"},
	{"Chinese Simplified", "zh-CN", "中文简体"},
	{"Chinese Traditional", "zh-TW", "中文繁體"},
	{"Korean", "ko", "한국어"},
	{"French", "fr", "Français"},
	{"German", "de", "Deutsch"},
	{"Spanish", "es", "Español"},
	{"Italian", "it", "Italiano"},
	{"Portuguese", "pt", "Português"},
	{"Russian", "ru", "Русский"},
	{"Thai", "th", "ไทย"},
	{"Indonesian", "id", "Bahasa Indonesia"},
	{"Malay", "ms", "Bahasa Melayu"},
	{"Hindi", "hi", "हिन्दी"},
	{"Arabic", "ar", "العربية"},
	{"Dutch", "nl", "Nederlands"},
	{"Polish", "pl", "Polski"},
	{"Turkish", "tr", "Türkçe"},
	{"Swedish", "sv", "Svenska"},
	{"Danish", "da", "Dansk"},
	{"Norwegian", "no", "Norsk"},
	{"Finnish", "fi", "Suomi"},
	{"Greek", "el", "Ελληνικά"},
	{"Czech", "cs", "Čeština"},
	{"Romanian", "ro", "Română"},
	{"Hungarian", "hu", "Magyar"},
	{"Ukrainian", "uk", "Українська"},
	{"Hebrew", "he", "עברית"},
	{"Persian", "fa", "فارسی"},
	{"Bengali", "bn", "বাংলা"},
	{"Filipino", "tl", "Filipino"},
	{"Urdu", "ur", "اردو"},
}

// localeAliases maps region-qualified codes that have their own entry.
var localeAliases = map[string]string{
	"zh_cn": "zh-CN",
	"zh_sg": "zh-CN",
	"zh_tw": "zh-TW",
	"zh_hk": "zh-TW",
	"nb":    "no",
	"iw":    "he",
}

// GetLanguageName returns the English name for a language code, locale
// ("es_ES", "pt-BR") or name. Falls back to the input itself if not found.
func GetLanguageName(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return lang
	}
	if l, ok := lookupLanguage(lang); ok {
		return l.Name
	}
	return lang
}

func lookupLanguage(lang string) (Language, bool) {
	norm := strings.ToLower(NormalizeLocale(lang))
	if alias, ok := localeAliases[norm]; ok {
		norm = strings.ToLower(NormalizeLocale(alias))
	}
	for _, l := range Languages {
		if strings.EqualFold(l.Name, lang) || strings.ToLower(NormalizeLocale(l.Code)) == norm {
			return l, true
		}
	}
	// Try the base language of a locale
	if base, _, found := strings.Cut(norm, "_"); found {
		if alias, ok := localeAliases[base]; ok {
			base = alias
		}
		for _, l := range Languages {
			if strings.EqualFold(l.Code, base) {
				return l, true
			}
		}
	}
	return Language{}, false
}

// NormalizeLocale converts a language code to the underscore format (e.g., "es-ES" → "es_ES").
func NormalizeLocale(langCode string) string {
	return strings.ReplaceAll(langCode, "-", "_")
}
