package speech

import (
	"regexp"
	"strings"
)

// Normalizer rewrites text so a TTS engine reads it naturally:
// special characters become their spoken names, common abbreviations
// are expanded, and URLs and decimal numbers are spelled out.
type Normalizer struct {
	special       *strings.Replacer
	urls          *strings.Replacer
	abbreviations map[string]string
	decimalWord   string
	dateWord      string
}

var (
	decimalRe = regexp.MustCompile(`(\d+)\.(\d+)`)
	dateRe    = regexp.MustCompile(`(\d{2})/(\d{2})/(\d{4})`)
	spacesRe  = regexp.MustCompile(`\s+`)
)

// NewNormalizer creates a Normalizer for the given BCP 47 language tag.
// Portuguese variants get Portuguese spoken forms; everything else
// falls back to English.
func NewNormalizer(language string) *Normalizer {
	if strings.HasPrefix(strings.ToLower(language), "pt") {
		return &Normalizer{
			special: strings.NewReplacer(
				"%", " por cento", "$", " reais", "€", " euros", "£", " libras",
				"@", " arroba", "#", " hashtag", "&", " e", "+", " mais",
				"=", " igual a", "<", " menor que", ">", " maior que",
				"°", " graus", "™", "", "®", "", "©", "",
			),
			urls: strings.NewReplacer(
				"www.", "www ponto ", ".com", " ponto com", ".org", " ponto org",
				".gov", " ponto gov", ".edu", " ponto edu", ".br", " ponto br",
				"//", " barra barra ",
			),
			abbreviations: map[string]string{
				"dr.": "doutor", "dra.": "doutora", "sr.": "senhor", "sra.": "senhora",
				"prof.": "professor", "profa.": "professora", "etc.": "etcétera",
				"ex.": "exemplo", "tel.": "telefone", "av.": "avenida",
				"hrs.": "horas", "min.": "minutos", "seg.": "segundos",
			},
			decimalWord: "vírgula",
			dateWord:    "de",
		}
	}
	return &Normalizer{
		special: strings.NewReplacer(
			"%", " percent", "$", " dollars", "€", " euros", "£", " pounds",
			"@", " at", "#", " hashtag", "&", " and", "+", " plus",
			"=", " equals", "<", " less than", ">", " greater than",
			"°", " degrees", "™", "", "®", "", "©", "",
		),
		urls: strings.NewReplacer(
			"www.", "www dot ", ".com", " dot com", ".org", " dot org",
			".gov", " dot gov", ".edu", " dot edu",
			"//", " slash slash ",
		),
		abbreviations: map[string]string{
			"dr.": "doctor", "mr.": "mister", "mrs.": "missus",
			"etc.": "etcetera", "e.g.": "for example",
		},
		decimalWord: "point",
		dateWord:    "of",
	}
}

// Normalize prepares text for speech synthesis.
func (n *Normalizer) Normalize(text string) string {
	text = decimalRe.ReplaceAllString(text, "$1 "+n.decimalWord+" $2")
	text = dateRe.ReplaceAllString(text, "$1 "+n.dateWord+" $2 "+n.dateWord+" $3")
	text = n.urls.Replace(text)
	text = n.expandAbbreviations(text)
	text = n.special.Replace(text)
	text = stripControl(text)
	text = spacesRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

func (n *Normalizer) expandAbbreviations(text string) string {
	words := strings.Split(text, " ")
	for i, word := range words {
		if full, ok := n.abbreviations[strings.ToLower(word)]; ok {
			words[i] = full
		}
	}
	return strings.Join(words, " ")
}

func stripControl(text string) string {
	return strings.Map(func(r rune) rune {
		if r < ' ' {
			return ' '
		}
		return r
	}, text)
}
