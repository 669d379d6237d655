package codec

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/tyler-smith/go-bip39"

	tycheerr "github.com/mrz1836/tyche/pkg/errors"
)

// MaxTypoDistance is the maximum Levenshtein distance to consider a suggestion.
const MaxTypoDistance = 2

var (
	// whitespaceRegex matches one or more whitespace characters.
	whitespaceRegex = regexp.MustCompile(`\s+`)

	// numberedListRegex matches numbered list prefixes like "1." "2)" "3:"
	numberedListRegex = regexp.MustCompile(`(?m)^\s*\d+[\.\)\:]\s*`)
)

// EncodeMnemonic renders b as a BIP39 English phrase. b must be 16, 20, 24,
// 28, or 32 bytes; anything else fails with ErrInvalidLength.
func EncodeMnemonic(b []byte) (string, error) {
	switch len(b) {
	case 16, 20, 24, 28, 32:
	default:
		return "", tycheerr.WithSuggestion(
			tycheerr.WithDetails(tycheerr.ErrInvalidLength, map[string]string{"bytes": strconv.Itoa(len(b))}),
			"mnemonic encoding needs 16, 20, 24, 28, or 32 bytes",
		)
	}

	phrase, err := bip39.NewMnemonic(b)
	if err != nil {
		return "", tycheerr.WithCause(tycheerr.ErrInvalidMnemonic, err)
	}
	return phrase, nil
}

// DecodeMnemonic recovers the bytes behind a BIP39 phrase. Misspelled words
// are reported with suggestions.
func DecodeMnemonic(phrase string) ([]byte, error) {
	normalized := NormalizeMnemonic(phrase)
	if normalized == "" {
		return nil, tycheerr.ErrInvalidMnemonic
	}

	b, err := bip39.EntropyFromMnemonic(normalized)
	if err != nil {
		invalid := tycheerr.WithCause(tycheerr.ErrInvalidMnemonic, err)
		if typos := DetectTypos(normalized); len(typos) > 0 {
			return nil, tycheerr.WithSuggestion(invalid, FormatTypoSuggestions(typos))
		}
		return nil, invalid
	}
	return b, nil
}

// NormalizeMnemonic lowercases the phrase, strips numbered-list prefixes and
// commas, and collapses whitespace.
func NormalizeMnemonic(input string) string {
	input = strings.ToLower(input)
	input = numberedListRegex.ReplaceAllString(input, " ")
	input = strings.ReplaceAll(input, ",", " ")
	input = whitespaceRegex.ReplaceAllString(input, " ")
	return strings.TrimSpace(input)
}

// IsValidWord checks if a word is in the BIP39 English word list.
func IsValidWord(word string) bool {
	_, ok := bip39.GetWordIndex(strings.ToLower(word))
	return ok
}

// SuggestWord finds the closest BIP39 word to the input using Levenshtein distance.
// Returns "" if no word is within MaxTypoDistance.
func SuggestWord(input string) string {
	input = strings.ToLower(input)

	minDist := math.MaxInt
	var suggestion string

	for _, word := range bip39.GetWordList() {
		dist := levenshtein.ComputeDistance(input, word)
		if dist == 0 {
			return word
		}
		if dist < minDist {
			minDist = dist
			suggestion = word
		}
	}

	if minDist <= MaxTypoDistance {
		return suggestion
	}
	return ""
}

// TypoInfo describes one word that is not in the word list.
type TypoInfo struct {
	Index      int    // 0-based word position
	Word       string // the word as typed
	Suggestion string // closest list word, or ""
}

// DetectTypos returns every word of phrase that is not in the word list.
func DetectTypos(phrase string) []TypoInfo {
	var typos []TypoInfo
	for i, word := range strings.Fields(NormalizeMnemonic(phrase)) {
		if IsValidWord(word) {
			continue
		}
		typos = append(typos, TypoInfo{
			Index:      i,
			Word:       word,
			Suggestion: SuggestWord(word),
		})
	}
	return typos
}

// FormatTypoSuggestions renders typos one per line, words numbered from 1.
func FormatTypoSuggestions(typos []TypoInfo) string {
	var b strings.Builder
	for i, typo := range typos {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("word ")
		b.WriteString(strconv.Itoa(typo.Index + 1))
		b.WriteString(": '")
		b.WriteString(typo.Word)
		b.WriteByte('\'')
		if typo.Suggestion != "" {
			b.WriteString(" - did you mean '")
			b.WriteString(typo.Suggestion)
			b.WriteString("'?")
		} else {
			b.WriteString(" is not a valid BIP39 word")
		}
	}
	return b.String()
}
