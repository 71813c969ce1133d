package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"apostrophe and ampersand", "Anush's Jams & Co.", "anush-s-jams-co"},
		{"already clean", "vardan-woodworks", "vardan-woodworks"},
		{"diacritics folded", "Café São João", "cafe-sao-joao"},
		{"uppercase", "ANI BAKERY", "ani-bakery"},
		{"leading and trailing junk", "  --Tea House!  ", "tea-house"},
		{"digits kept", "24/7 Khinkali", "24-7-khinkali"},
		{"empty", "", ""},
		{"only punctuation", "!!!", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Slugify(tc.in))
		})
	}
}
