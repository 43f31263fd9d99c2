package model

// SurveyMissingTokens are the GSS codes for inapplicable, don't know and
// no-answer responses. They mark a missing value, never a category level.
var SurveyMissingTokens = []string{
	"IAP",
	"IAP,DK,NA,uncodeable",
	"NOT SURE",
	"DK",
	"IAP, DK, NA, uncodeable",
	".a",
	"CAN'T CHOOSE",
}

// GenericMissingTokens are the usual empty-cell spellings of tabular exports
var GenericMissingTokens = []string{
	"",
	"NA",
	"N/A",
	"NaN",
	"nan",
	"NULL",
	"null",
	"None",
	"<NA>",
	"#N/A",
}

// MissingTokens returns every literal that is read as a missing value
func MissingTokens() []string {
	tokens := make([]string, 0, len(SurveyMissingTokens)+len(GenericMissingTokens))
	tokens = append(tokens, SurveyMissingTokens...)
	tokens = append(tokens, GenericMissingTokens...)
	return tokens
}

// IsMissingToken reports whether s is one of MissingTokens
func IsMissingToken(s string) bool {
	for _, token := range SurveyMissingTokens {
		if s == token {
			return true
		}
	}
	for _, token := range GenericMissingTokens {
		if s == token {
			return true
		}
	}
	return false
}
