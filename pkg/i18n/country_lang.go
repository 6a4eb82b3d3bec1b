package i18n

import "strings"

// CountryToLanguage maps an ISO 3166-1 alpha-2 country code to a site language.
// Returns DefaultLanguage and false if no specific mapping exists.
func CountryToLanguage(countryCode string) (Language, bool) {
	lang, ok := countryLangMap[strings.ToUpper(strings.TrimSpace(countryCode))]
	if !ok {
		return DefaultLanguage, false
	}
	return lang, true
}

var countryLangMap = map[string]Language{
	// Chinese
	"CN": LangZH, "SG": LangZH,
	"TW": LangZHTW, "HK": LangZHTW, "MO": LangZHTW,
	// German
	"DE": LangDE, "AT": LangDE, "LI": LangDE,
	// Spanish
	"ES": LangES, "MX": LangES, "AR": LangES, "CO": LangES,
	"CL": LangES, "PE": LangES, "VE": LangES, "EC": LangES,
	"UY": LangES, "PY": LangES, "BO": LangES, "CU": LangES,
	// French
	"FR": LangFR, "MC": LangFR, "SN": LangFR, "CI": LangFR,
	// Italian
	"IT": LangIT, "SM": LangIT,
	// Portuguese
	"PT": LangPT, "BR": LangPT, "AO": LangPT, "MZ": LangPT,
	// Dutch
	"NL": LangNL, "SR": LangNL,
	// Others
	"TR": LangTR, "VN": LangVI, "ID": LangID,
	// English (explicit, also the default fallback)
	"US": LangEN, "GB": LangEN, "AU": LangEN, "CA": LangEN,
	"NZ": LangEN, "IE": LangEN, "IN": LangEN, "ZA": LangEN,
}
