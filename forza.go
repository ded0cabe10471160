package ledbridge

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// Forza Horizon 5 "Sled" fixed-layout packet. The larger "Dash" format
// begins with the same fields, so both are accepted.
const (
	forzaSledPacketSize   = 232
	forzaIsRaceOnOffset   = 0
	forzaMaxRPMOffset     = 8
	forzaIdleRPMOffset    = 12
	forzaCurrentRPMOffset = 16
)

func parseForzaHorizon5(data []byte) (Reading, error) {
	if len(data) < forzaSledPacketSize {
		return Reading{}, errors.Wrapf(ErrMalformedPacket,
			"forza packet is %d bytes, need %d", len(data), forzaSledPacketSize)
	}
	raceOn := int32(binary.LittleEndian.Uint32(data[forzaIsRaceOnOffset:])) == 1
	r := Reading{
		CurrentRPM: f32At(data, forzaCurrentRPMOffset),
		MaxRPM:     f32At(data, forzaMaxRPMOffset),
		IdleRPM:    f32At(data, forzaIdleRPMOffset),
	}
	r.SessionActive = raceOn && r.CurrentRPM >= 0 && r.IdleRPM >= 0 && r.MaxRPM > r.IdleRPM
	return r, nil
}

// SledPacket builds a minimal Forza Horizon 5 Sled datagram carrying the
// given RPM fields. Used by the telemetry simulator and by tests.
func SledPacket(current, max, idle float32, raceOn bool) []byte {
	data := make([]byte, forzaSledPacketSize)
	if raceOn {
		binary.LittleEndian.PutUint32(data[forzaIsRaceOnOffset:], 1)
	}
	putF32At(data, forzaMaxRPMOffset, max)
	putF32At(data, forzaIdleRPMOffset, idle)
	putF32At(data, forzaCurrentRPMOffset, current)
	return data
}

func putF32At(data []byte, offset int, v float32) {
	binary.LittleEndian.PutUint32(data[offset:], math.Float32bits(v))
}
