package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Electronics":      "electronics",
		"Home & Garden":    "home-garden",
		"  Spaced  Out  ":  "spaced-out",
		"Already-Slugged":  "already-slugged",
		"Ünïcode Stripped": "ncode-stripped",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "input %q", in)
	}
}
