package decrypt

import (
	"unicode"
	"unicode/utf8"
)

// confidenceFullLength is the rune count at which length stops limiting the score.
const confidenceFullLength = 8.0

// Confidence scores how much text looks like something a person typed, in
// [0, 1]. Short strings, control characters and code points outside letters,
// digits, punctuation, symbols and whitespace all pull the score down.
func Confidence(text string) float64 {
	total := utf8.RuneCountInString(text)
	if total == 0 {
		return 0
	}

	var control, acceptable int
	for _, r := range text {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			// Whitespace controls are acceptable and still count as control.
			acceptable++
			control++
		case unicode.IsControl(r) || unicode.Is(unicode.Cs, r):
			control++
		case unicode.IsLetter(r), unicode.IsNumber(r), unicode.IsPunct(r), unicode.IsSymbol(r), unicode.Is(unicode.Zs, r):
			acceptable++
		}
	}

	n := float64(total)
	lengthScore := min(n/confidenceFullLength, 1.0)
	score := lengthScore * (float64(acceptable) / n) * (1 - float64(control)/n)

	return max(0, min(score, 1))
}
