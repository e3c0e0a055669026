package pageid

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iudanet/mapboard/internal/validation"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"seal page", "/maps/seal.html", "seal-map"},
		{"kemsing page", "/kemsing/", "kemsing-map"},
		{"otford page", "/otford.html", "otford-map"},
		{"swanley village", "/swanleyvillage.html", "swanleyvillage-map"},
		{"horton kirby", "/hortonkirby.html", "hortonkirby-map"},
		{"eynsford", "/eynsford.html", "eynsford-map"},
		{"farningham", "/farningham.html", "farningham-map"},
		{"south darenth", "/southdarenth.html", "southdarenth-map"},
		{"crockenhill", "/crockenhill.html", "crockenhill-map"},
		{"shoreham", "/shoreham.html", "shoreham-map"},
		{"root falls back", "/", DefaultKey},
		{"plain swanley falls back", "/swanley.html", DefaultKey},
		{"empty path falls back", "", DefaultKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.path))
		})
	}
}

func TestResolve_IsPure(t *testing.T) {
	assert.Equal(t, Resolve("/otford.html"), Resolve("/otford.html"))
}

func TestKeys_AreValid(t *testing.T) {
	keys := Keys()
	assert.Len(t, keys, len(routes)+1)
	assert.Equal(t, DefaultKey, keys[len(keys)-1])
	for _, k := range keys {
		assert.NoError(t, validation.ValidatePageKey(k), k)
	}
}
