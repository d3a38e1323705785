package reproducible_test

import (
	"fmt"

	reproducible "github.com/diskfs/go-reproducible"
	"github.com/diskfs/go-reproducible/util/timestamp"
)

func lookup(value string) timestamp.LookupFunc {
	return func(key string) (string, bool) {
		return value, key == timestamp.SourceDateEpochEnv
	}
}

// Resolve a build timestamp when SOURCE_DATE_EPOCH=1000000000.
func ExampleResolver_Resolve() {
	r := reproducible.New(reproducible.WithLookup(lookup("1000000000")))
	fmt.Println(r.Resolve(1700000000))
	// Output: 1000000000
}

// Resolve a timestamp for a 32-bit on-disk field. The override does not fit, so it is clamped.
func ExampleWithWidth() {
	r := reproducible.New(
		reproducible.WithWidth(timestamp.Width32),
		reproducible.WithLookup(lookup("99999999999")),
	)
	fmt.Println(r.Resolve(1700000000))
	// Output: 2147483647
}

// The same name gives the same UUID in every build with the same SOURCE_DATE_EPOCH.
func ExampleResolver_UUID() {
	r := reproducible.New(reproducible.WithLookup(lookup("1609459200")))
	fmt.Println(r.UUID("rootfs") == r.UUID("rootfs"))
	// Output: true
}
