// Package language normalizes user-supplied language selectors to the set the
// recognition tool supports.
package language

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Auto asks the recognition tool to detect the spoken language itself.
const Auto = "auto"

// supported maps ISO 639-1 bases to the codes passed to the recognizer.
var supported = map[string]string{
	"zh": "zh",
	"en": "en",
}

// Normalize maps a user-supplied selector ("en", "zh-CN", "English", "auto")
// to a supported language code or Auto. Unknown or unsupported languages are
// rejected.
func Normalize(input string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(input))
	if trimmed == "" || trimmed == Auto {
		return Auto, nil
	}

	tag, err := language.Parse(trimmed)
	if err != nil {
		// Tolerate full English names ("english", "chinese").
		if code, ok := byName[trimmed]; ok {
			return code, nil
		}
		return "", fmt.Errorf("unrecognized language %q", input)
	}
	base, _ := tag.Base()
	if code, ok := supported[base.String()]; ok {
		return code, nil
	}
	return "", fmt.Errorf("unsupported language %q (supported: zh, en, auto)", input)
}

var byName = map[string]string{
	"english": "en",
	"chinese": "zh",
}

// IsSupported reports whether code is a supported recognizer language or Auto.
func IsSupported(code string) bool {
	if code == Auto {
		return true
	}
	_, ok := supported[code]
	return ok
}
