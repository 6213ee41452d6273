package helpers

import (
	"sync"

	"github.com/brianvoe/gofakeit/v7"
)

// IdentityGenerator returns a display name for a new connection.
type IdentityGenerator func() string

// RandomFullName gives "First Last" names. Collisions are possible.
func RandomFullName() string {
	return gofakeit.Name()
}

// FixedIdentities cycles through names in order; handy for tests and demos.
func FixedIdentities(names ...string) IdentityGenerator {
	var mu sync.Mutex
	i := 0
	return func() string {
		if len(names) == 0 {
			return RandomFullName()
		}
		mu.Lock()
		defer mu.Unlock()
		name := names[i%len(names)]
		i++
		return name
	}
}
