package hackaigc

import (
	"fmt"
	"math/rand/v2"
)

// GuestIdentity is the throwaway pseudo-user sent upstream with every call.
// It lives only for the duration of one outbound request's headers and body.
type GuestIdentity struct {
	ID string
	IP string
}

// RandSource is the randomness identity synthesis needs. *rand.Rand from
// math/rand/v2 satisfies it, which lets tests inject a seeded source.
type RandSource interface {
	IntN(n int) int
}

// globalRand delegates to the package-level math/rand/v2 functions, which are
// safe for concurrent use.
type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

const hexDigits = "0123456789abcdef"

// SynthesizeGuestIdentity builds a fresh guest_<32 hex> id plus a random
// dotted-quad for the forwarded-for headers. No uniqueness guarantee beyond
// informal collision avoidance; nothing downstream remembers these.
func SynthesizeGuestIdentity(rnd RandSource) GuestIdentity {
	buf := make([]byte, 32)
	for i := range buf {
		buf[i] = hexDigits[rnd.IntN(16)]
	}
	return GuestIdentity{
		ID: "guest_" + string(buf),
		IP: fmt.Sprintf("%d.%d.%d.%d", rnd.IntN(256), rnd.IntN(256), rnd.IntN(256), rnd.IntN(256)),
	}
}
