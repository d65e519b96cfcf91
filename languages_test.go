package transroute

import "testing"

func TestGetLanguageName(t *testing.T) {
	tests := []struct {
		code     string
		expected string
	}{
		{"vi", "Vietnamese"},
		{"es_ES", "Spanish"},
		{"pt-BR", "Portuguese"},
		{"zh-CN", "Chinese Simplified"},
		{"zh_TW", "Chinese Traditional"},
		{"zh_HK", "Chinese Traditional"},
		{"nb_NO", "Norwegian"},
		{"Japanese", "Japanese"},
		{"japanese", "Japanese"},
		{"Klingon", "Klingon"}, // fallback
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			result := GetLanguageName(tt.code)
			if result != tt.expected {
				t.Errorf("GetLanguageName(%q) = %q, want %q", tt.code, result, tt.expected)
			}
		})
	}
}

func TestNormalizeLocale(t *testing.T) {
	if got := NormalizeLocale("es-ES"); got != "es_ES" {
		t.Errorf("NormalizeLocale(es-ES) = %q", got)
	}
}
