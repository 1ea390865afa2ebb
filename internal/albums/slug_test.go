package albums

import (
	"testing"

	"github.com/stretchr/testify/assert"

	_ "github.com/capria-app/capria/testing"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Family Photos 2025":   "family-photos-2025",
		"Vacaciones en Málaga": "vacaciones-en-malaga",
		"  Trimmed  ":          "trimmed",
		"a--b---c":             "a-b-c",
		"ÀÉÎÕÜ":                "aeiou",
	}
	for input, want := range cases {
		assert.Equal(t, want, slugify(input), input)
	}
}

func TestSlugifyEmpty(t *testing.T) {
	assert.Equal(t, "", slugify(""))
	assert.Equal(t, "", slugify("!!!"))
}
