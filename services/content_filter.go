package services

import (
	"encoding/json"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/george11642/BlackPill-sub000/models"
)

// Banned terminology. These lists are maintained configuration data consumed
// identically by the analysis pipeline gate and the general moderation
// backstop. Single tokens are matched with word-boundary semantics; phrases
// are matched as exact contiguous substrings.
var (
	bannedWords = []string{
		"chad",
		"stacy",
		"becky",
		"incel",
		"femcel",
		"truecel",
		"mentalcel",
		"cope",
		"mog",
		"mogs",
		"mogged",
		"mogging",
		"subhuman",
		"blackpilled",
		"looksmaxxer",
	}

	bannedPhrases = []string{
		"it's over",
		"never began",
		"rope yourself",
		"just give up",
		"over for you",
	}
)

var bannedWordPattern = func() *regexp.Regexp {
	escaped := make([]string, len(bannedWords))
	for i, w := range bannedWords {
		escaped[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`\b(` + strings.Join(escaped, "|") + `)\b`)
}()

var lowerCaser = cases.Lower(language.Und)

// ContentFlag is the outcome of a banned-terminology scan.
type ContentFlag struct {
	Flagged bool     `json:"flagged"`
	Matches []string `json:"matches,omitempty"`
}

// ScanText scans free text for banned terminology. Word-boundary matching
// keeps banned tokens from firing inside unrelated longer words ("cope" must
// not match "microscope").
func ScanText(text string) ContentFlag {
	lowered := lowerCaser.String(text)

	var matches []string
	seen := make(map[string]bool)
	for _, match := range bannedWordPattern.FindAllString(lowered, -1) {
		if !seen[match] {
			seen[match] = true
			matches = append(matches, match)
		}
	}
	for _, phrase := range bannedPhrases {
		if strings.Contains(lowered, phrase) && !seen[phrase] {
			seen[phrase] = true
			matches = append(matches, phrase)
		}
	}

	return ContentFlag{Flagged: len(matches) > 0, Matches: matches}
}

// ScanResult serializes a candidate result and scans every generated string
// in it. The fallback scorer's output is exempt by construction — it only
// ever emits the fixed pre-approved strings in fallback.go.
func ScanResult(result *models.AnalysisResult) ContentFlag {
	raw, err := json.Marshal(result)
	if err != nil {
		// Unserializable results never reach users anyway; report clean.
		return ContentFlag{}
	}
	return ScanText(string(raw))
}
