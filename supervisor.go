package ledbridge

import (
	"context"
	"net"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ConnectionState tracks where the supervisor is in its socket and device
// lifecycle. It is mutated only by the goroutine running the supervisor.
type ConnectionState int

const (
	StateInitializing ConnectionState = iota
	StateDeviceMissing
	StateDeviceReady
	StateListening
	StateReconnecting
	StateShuttingDown
)

func (s ConnectionState) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateDeviceMissing:
		return "device-missing"
	case StateDeviceReady:
		return "device-ready"
	case StateListening:
		return "listening"
	case StateReconnecting:
		return "reconnecting"
	case StateShuttingDown:
		return "shutting-down"
	}
	return "unknown"
}

// LEDWriter is the device surface the supervisor drives. Satisfied by
// *Device; stubbed in tests.
type LEDWriter interface {
	Open() error
	Write(Bitmask) error
	Close() error
}

type Config struct {
	Game GameProfile
	Port int

	// RequireDevice makes a missing wheel at startup a fatal error
	// instead of entering the retry loop.
	RequireDevice bool

	// Zero values fall back to 1s / 500ms / 5s.
	ReceiveTimeout time.Duration
	BackoffMin     time.Duration
	BackoffMax     time.Duration
}

const (
	defaultReceiveTimeout = time.Second
	defaultBackoffMin     = 500 * time.Millisecond
	defaultBackoffMax     = 5 * time.Second
)

// Supervisor owns the telemetry socket and the LED device for their entire
// lifetime and drives the receive, parse, map, write cycle. Parse and
// single-write failures never terminate the loop; only device absence
// (under RequireDevice) and socket bind failures are fatal.
type Supervisor struct {
	cfg    Config
	device LEDWriter
	parse  ParseFunc

	conn      *net.UDPConn
	state     ConnectionState
	retry     *backoff
	retryAt   time.Time
	staleness stalenessTracker
}

func NewSupervisor(cfg Config, device LEDWriter) *Supervisor {
	if cfg.ReceiveTimeout == 0 {
		cfg.ReceiveTimeout = defaultReceiveTimeout
	}
	if cfg.BackoffMin == 0 {
		cfg.BackoffMin = defaultBackoffMin
	}
	if cfg.BackoffMax == 0 {
		cfg.BackoffMax = defaultBackoffMax
	}
	return &Supervisor{
		cfg:    cfg,
		device: device,
		parse:  cfg.Game.Parser(),
		state:  StateInitializing,
		retry:  newBackoff(cfg.BackoffMin, cfg.BackoffMax),
	}
}

// State reports the current lifecycle state. Not synchronized; only for
// use by the goroutine running the supervisor or after Run has returned.
func (s *Supervisor) State() ConnectionState {
	return s.state
}

// Run drives the bridge until ctx is cancelled. It returns ctx's error on
// cancellation, or a fatal error when the socket cannot be bound or the
// wheel is absent under the RequireDevice policy.
func (s *Supervisor) Run(ctx context.Context) error {
	if err := s.openDevice(ctx); err != nil {
		return err
	}
	if err := s.bind(); err != nil {
		return err
	}
	defer s.shutdown()
	return s.listen(ctx)
}

func (s *Supervisor) openDevice(ctx context.Context) error {
	err := s.device.Open()
	if err == nil {
		s.state = StateDeviceReady
		return nil
	}
	if s.cfg.RequireDevice {
		return errors.Wrap(err, "wheel required but not available")
	}
	s.state = StateDeviceMissing
	log.WithField("err", err).Warn("wheel not available, retrying")
	for {
		select {
		case <-ctx.Done():
			s.state = StateShuttingDown
			return ctx.Err()
		case <-time.After(s.retry.Next()):
		}
		if err = s.device.Open(); err == nil {
			s.retry.Reset()
			s.state = StateDeviceReady
			return nil
		}
		log.WithField("err", err).Error("wheel open failed")
	}
}

func (s *Supervisor) bind() error {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{
		IP:   net.IPv4(127, 0, 0, 1),
		Port: s.cfg.Port,
	})
	if err != nil {
		return errors.Wrapf(err, "unable to bind UDP port %d", s.cfg.Port)
	}
	s.conn = conn
	s.state = StateListening
	log.WithFields(log.Fields{
		"game": s.cfg.Game.String(),
		"port": conn.LocalAddr().(*net.UDPAddr).Port,
	}).Info("listening for telemetry")
	return nil
}

func (s *Supervisor) listen(ctx context.Context) error {
	buf := make([]byte, 2048)
	for {
		select {
		case <-ctx.Done():
			s.state = StateShuttingDown
			return ctx.Err()
		default:
		}
		s.maybeReconnect()
		if err := s.conn.SetReadDeadline(time.Now().Add(s.cfg.ReceiveTimeout)); err != nil {
			return errors.Wrap(err, "unable to arm receive deadline")
		}
		n, _, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			// timeouts bound shutdown latency and pace reconnect checks
			if nerr, ok := err.(net.Error); ok && nerr.Timeout() {
				continue
			}
			if ctx.Err() != nil {
				s.state = StateShuttingDown
				return ctx.Err()
			}
			return errors.Wrap(err, "udp receive")
		}
		s.process(buf[:n])
	}
}

func (s *Supervisor) process(data []byte) {
	reading, err := s.parse(data)
	if err != nil {
		log.WithField("err", err).Debug("discarding datagram")
		return
	}
	s.staleness.observe(reading)
	if s.staleness.stale() {
		// game is paused but still streaming the last frame
		reading.SessionActive = false
	}
	if s.state != StateListening {
		// freshest-wins: parsed but not rendered while the wheel is away
		return
	}
	if err := s.device.Write(LEDMask(reading)); err != nil {
		if errors.Cause(err) == ErrDeviceDisconnected {
			log.Warn("wheel disconnected, reconnecting")
			if err := s.device.Close(); err != nil {
				log.WithField("err", err).Warn("unable to close wheel")
			}
			s.state = StateReconnecting
			s.retry.Reset()
			s.retryAt = time.Now().Add(s.retry.Next())
			return
		}
		log.WithField("err", err).Error("LED write failed")
	}
}

func (s *Supervisor) maybeReconnect() {
	if s.state != StateReconnecting || time.Now().Before(s.retryAt) {
		return
	}
	if err := s.device.Open(); err != nil {
		log.WithField("err", err).Error("wheel reopen failed")
		s.retryAt = time.Now().Add(s.retry.Next())
		return
	}
	s.retry.Reset()
	s.state = StateListening
	log.Info("wheel reconnected")
}

func (s *Supervisor) shutdown() {
	s.state = StateShuttingDown
	if err := s.conn.Close(); err != nil {
		log.WithField("err", err).Warn("unable to close telemetry socket")
	}
	// best effort: leave the bar dark
	_ = s.device.Write(AllOff)
	if err := s.device.Close(); err != nil {
		log.WithField("err", err).Warn("unable to close wheel")
	}
}
