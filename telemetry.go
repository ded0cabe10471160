package ledbridge

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Reading is a normalized telemetry snapshot extracted from a single
// datagram. Values are passed by copy and never mutated after parsing.
type Reading struct {
	CurrentRPM float32
	MaxRPM     float32
	IdleRPM    float32

	// SessionActive is false while the player is in a menu, paused, or
	// the packet's RPM fields are not sane enough to drive the LEDs.
	SessionActive bool
}

// idle RPM assumed for games that do not transmit one
const defaultIdleRPM = 1000

// ErrMalformedPacket is returned by parsers when a datagram is too short
// or fails a structural check. The supervisor discards such datagrams.
var ErrMalformedPacket = errors.New("malformed telemetry packet")

// ParseFunc converts one raw UDP payload into a Reading. Implementations
// are pure: identical bytes always yield identical output.
type ParseFunc func([]byte) (Reading, error)

type GameProfile int

const (
	DiRTRally2 GameProfile = iota
	ForzaHorizon5
)

func (g GameProfile) String() string {
	switch g {
	case ForzaHorizon5:
		return "Forza Horizon 5"
	default:
		return "DiRT Rally 2.0"
	}
}

// DefaultPort is the UDP port the game sends telemetry to out of the box.
func (g GameProfile) DefaultPort() int {
	switch g {
	case ForzaHorizon5:
		return 9999
	default:
		return 20777
	}
}

func (g GameProfile) Parser() ParseFunc {
	switch g {
	case ForzaHorizon5:
		return parseForzaHorizon5
	default:
		return parseDirtRally2
	}
}

// ParseGameProfile maps a user-supplied game name or alias to a profile.
func ParseGameProfile(s string) (GameProfile, error) {
	switch strings.ToLower(s) {
	case "dirt-rally-2", "dr2", "dirt":
		return DiRTRally2, nil
	case "forza-horizon-5", "fh5", "forza":
		return ForzaHorizon5, nil
	}
	return 0, fmt.Errorf("unknown game %q (supported: dirt-rally-2, forza-horizon-5)", s)
}

// stalenessThreshold is the number of consecutive identical readings after
// which telemetry is considered paused. DiRT Rally 2.0 keeps streaming the
// last frame while the game is paused.
const stalenessThreshold = 5

type stalenessTracker struct {
	last   Reading
	count  int
	primed bool
}

func (t *stalenessTracker) observe(r Reading) {
	if t.primed && r == t.last {
		if t.count < stalenessThreshold {
			t.count++
		}
		return
	}
	t.last = r
	t.count = 0
	t.primed = true
}

func (t *stalenessTracker) stale() bool {
	return t.count >= stalenessThreshold
}
