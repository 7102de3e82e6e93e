package speech

import "testing"

func TestNormalizePortuguese(t *testing.T) {
	n := NewNormalizer("pt-BR")

	tests := []struct {
		in   string
		want string
	}{
		{"50% de desconto", "50 por cento de desconto"},
		{"valor de 3.14", "valor de 3 vírgula 14"},
		{"reunião em 25/12/2026", "reunião em 25 de 12 de 2026"},
		{"acesse www.exemplo.org", "acesse www ponto exemplo ponto org"},
		{"o dr. silva chegou", "o doutor silva chegou"},
		{"muito    espaço\taqui", "muito espaço aqui"},
	}
	for _, tt := range tests {
		if got := n.Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeEnglishFallback(t *testing.T) {
	n := NewNormalizer("en-US")

	if got := n.Normalize("save 20% today"); got != "save 20 percent today" {
		t.Errorf("unexpected normalization: %q", got)
	}
	if got := n.Normalize("pi is 3.14"); got != "pi is 3 point 14" {
		t.Errorf("unexpected decimal normalization: %q", got)
	}
}

func TestNormalizeStripsControlCharacters(t *testing.T) {
	n := NewNormalizer("en")
	if got := n.Normalize("line\r\nbreak\x00here"); got != "line break here" {
		t.Errorf("unexpected control handling: %q", got)
	}
}
