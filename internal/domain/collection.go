package domain

import "fmt"

// Collection names one of the independently persisted record sets.
type Collection string

const (
	CollectionRecommendations Collection = "recommendations"
	CollectionMessages        Collection = "messages"
	CollectionDonations       Collection = "donations"
)

// Collections lists every known collection in a stable order.
func Collections() []Collection {
	return []Collection{CollectionRecommendations, CollectionMessages, CollectionDonations}
}

// aliases maps historical path segments onto their canonical collection.
// The recommendations resource was reachable as "contact" and "contacts"
// in earlier deployments and clients still probe those names.
var aliases = map[string]Collection{
	"contact":  CollectionRecommendations,
	"contacts": CollectionRecommendations,
}

// ParseCollection resolves a path segment to a collection, accepting legacy
// aliases. Unknown names return ErrUnknownCollection.
func ParseCollection(name string) (Collection, error) {
	switch Collection(name) {
	case CollectionRecommendations, CollectionMessages, CollectionDonations:
		return Collection(name), nil
	}
	if c, ok := aliases[name]; ok {
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCollection, name)
}
