package document

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Case references look like "O/0959/23" or "O-0959-23".
var caseRefPattern = regexp.MustCompile(`([A-Z][/-]\d{4,}[/-]\d{2,})`)

// ExtractCaseReference finds the case reference, trying the source filename
// first and then the first page of text. When neither yields a match it
// falls back to a timestamp-derived identifier so ingestion can proceed.
func ExtractCaseReference(filename string, pages []PageText) string {
	name := filename
	if idx := strings.LastIndexAny(name, `/\`); idx >= 0 {
		name = name[idx+1:]
	}
	if m := caseRefPattern.FindString(name); m != "" {
		return strings.ReplaceAll(m, "-", "/")
	}
	if len(pages) > 0 {
		if m := caseRefPattern.FindString(pages[0].Text); m != "" {
			return strings.ReplaceAll(m, "-", "/")
		}
	}
	return fmt.Sprintf("CASE-%d", time.Now().Unix())
}
