// Package pageid maps a navigation path to the key of the shared record
// that holds the page's drawing.
package pageid

import "strings"

// DefaultKey is used for paths that match no known map.
const DefaultKey = "swanley-map"

type route struct {
	token string
	key   string
}

// routes are matched in order; the first token contained in the path wins.
var routes = []route{
	{token: "seal", key: "seal-map"},
	{token: "kemsing", key: "kemsing-map"},
	{token: "otford", key: "otford-map"},
	{token: "swanleyvillage", key: "swanleyvillage-map"},
	{token: "hortonkirby", key: "hortonkirby-map"},
	{token: "eynsford", key: "eynsford-map"},
	{token: "farningham", key: "farningham-map"},
	{token: "southdarenth", key: "southdarenth-map"},
	{token: "crockenhill", key: "crockenhill-map"},
	{token: "shoreham", key: "shoreham-map"},
}

// Resolve returns the record key for a navigation path.
func Resolve(path string) string {
	for _, r := range routes {
		if strings.Contains(path, r.token) {
			return r.key
		}
	}
	return DefaultKey
}

// Keys returns every known key, the default one last.
func Keys() []string {
	keys := make([]string, 0, len(routes)+1)
	for _, r := range routes {
		keys = append(keys, r.key)
	}
	return append(keys, DefaultKey)
}
