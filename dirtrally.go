package ledbridge

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// DiRT Rally 2.0 "extradata=3" extended packet. Enable in
// hardware_settings_config.xml:
//   <udp enabled="true" extradata="3" ip="127.0.0.1" port="20777" delay="1" />
const (
	dirtRallyPacketSize       = 264
	dirtRallyCurrentRPMOffset = 148
	dirtRallyMaxRPMOffset     = 252
)

func parseDirtRally2(data []byte) (Reading, error) {
	if len(data) < dirtRallyPacketSize {
		return Reading{}, errors.Wrapf(ErrMalformedPacket,
			"dirt rally packet is %d bytes, need %d", len(data), dirtRallyPacketSize)
	}
	r := Reading{
		CurrentRPM: f32At(data, dirtRallyCurrentRPMOffset),
		MaxRPM:     f32At(data, dirtRallyMaxRPMOffset),
		// idle RPM is not part of the extradata=3 layout
		IdleRPM: defaultIdleRPM,
	}
	// the game has no explicit on-track flag; sane RPM bounds stand in
	r.SessionActive = r.CurrentRPM >= 0 && r.MaxRPM > r.IdleRPM
	return r, nil
}

func f32At(data []byte, offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(data[offset:]))
}
