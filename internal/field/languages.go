package field

// SupportedLanguages is the closed set of language codes the application
// handles. Translation fan-out targets every code here except the source.
var SupportedLanguages = []string{
	"fr", "en", "es", "de", "it", "pt", "nl", "pl", "ru", "ja", "zh",
	"ko", "ar", "cs", "da", "el", "hu", "id", "nb", "sv", "tr", "uk",
}

func IsSupportedLanguage(code string) bool {
	for _, l := range SupportedLanguages {
		if l == code {
			return true
		}
	}
	return false
}
