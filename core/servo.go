package core

import (
	"math"
	"strconv"
	"time"

	"hermes/protocol"
)

// ServoPhase is a state of the servo velocity profile.
type ServoPhase uint8

const (
	PhaseIdle ServoPhase = iota
	PhaseAccelerating
	PhaseCruising
	PhaseDecelerating
	PhaseSettling
)

func (p ServoPhase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAccelerating:
		return "accelerating"
	case PhaseCruising:
		return "cruising"
	case PhaseDecelerating:
		return "decelerating"
	case PhaseSettling:
		return "settling"
	}
	return "phase(" + strconv.Itoa(int(p)) + ")"
}

// ServoSettingsSize is the settings block following (code, id) in a PATCH.
const ServoSettingsSize = 15

// ServoSettings is the decoded configuration of a servo. Angles are in
// degrees, Speed in degrees/s and Accel in degrees/s². A Speed or Accel of
// zero or below means unbounded.
type ServoSettings struct {
	Pin     GPIOPin
	Default uint16
	TMin    uint16 // theoretical range mapped onto the pulse bounds
	TMax    uint16
	Min     uint16 // allowed range, within [TMin, TMax]
	Max     uint16
	Speed   int16
	Accel   int16
}

// DecodeServoSettings parses [pin][default][tmin][tmax][min][max][speed][accel].
func DecodeServoSettings(p []byte) (ServoSettings, error) {
	if len(p) < ServoSettingsSize {
		return ServoSettings{}, ErrShortPayload
	}
	return ServoSettings{
		Pin:     GPIOPin(p[0]),
		Default: protocol.Uint16(p[1:]),
		TMin:    protocol.Uint16(p[3:]),
		TMax:    protocol.Uint16(p[5:]),
		Min:     protocol.Uint16(p[7:]),
		Max:     protocol.Uint16(p[9:]),
		Speed:   protocol.Int16(p[11:]),
		Accel:   protocol.Int16(p[13:]),
	}, nil
}

// ServoState is a snapshot of the motion state, positions in microseconds.
type ServoState struct {
	Phase     ServoPhase
	Current   float64
	Target    float64
	Speed     float64 // µs/s
	Direction int8
	Attached  bool
}

// Servo is a runnable device driving a hobby servo with a trapezoidal
// velocity profile. Positions are kept in pulse width units.
type Servo struct {
	deviceID
	settings ServoSettings
	actuator Actuator

	// pulse mapping
	minPulse, maxPulse float64
	scale              float64 // µs per degree

	maxSpeed float64 // µs/s, +Inf when unbounded
	accel    float64 // µs/s², +Inf when unbounded

	current    float64
	target     float64
	speed      float64
	direction  float64
	decelPoint float64

	phase       ServoPhase
	phaseStart  time.Duration
	lastTick    time.Duration
	settleDelay time.Duration

	written uint16
	dirty   bool // force the next write
}

func (*Servo) Code() protocol.MessageCode         { return protocol.SERVO }
func (*Servo) Name() string                       { return "Servo" }
func (*Servo) PayloadSize() protocol.PayloadSize  { return protocol.Fixed(ServoSettingsSize) }
func (*Servo) Runnable() bool                     { return true }
func (*Servo) MutationSize() protocol.PayloadSize { return protocol.Fixed(2) }
func (s *Servo) Phase() ServoPhase                { return s.phase }
func (s *Servo) Settings() ServoSettings          { return s.settings }

// PulseWidth returns the last pulse width written to the actuator.
func (s *Servo) PulseWidth() uint16 { return s.written }

// State returns the current motion state.
func (s *Servo) State() ServoState {
	st := ServoState{
		Phase:     s.phase,
		Current:   s.current,
		Target:    s.target,
		Speed:     s.speed,
		Direction: int8(s.direction),
	}
	if s.actuator != nil {
		st.Attached = s.actuator.Attached()
	}
	return st
}

// Configure replaces the whole configuration. The servo is re-armed at its
// default position and settles there.
func (s *Servo) Configure(fw *Firmware, settings []byte) error {
	cfg, err := DecodeServoSettings(settings)
	if err != nil {
		return err
	}
	if cfg.TMax <= cfg.TMin {
		return ErrInvalidRange
	}
	cfg.Min = clampU16(cfg.Min, cfg.TMin, cfg.TMax)
	cfg.Max = clampU16(cfg.Max, cfg.TMin, cfg.TMax)
	if cfg.Min > cfg.Max {
		return ErrInvalidRange
	}
	cfg.Default = clampU16(cfg.Default, cfg.Min, cfg.Max)

	if s.actuator == nil {
		if fw.hal.Servos == nil {
			return ErrNoDriver
		}
		s.actuator = fw.hal.Servos.NewActuator()
	} else if s.actuator.Attached() && s.settings.Pin != cfg.Pin {
		if err := s.actuator.Detach(); err != nil {
			return err
		}
	}

	fwCfg := fw.cfg
	s.settings = cfg
	s.minPulse = float64(fwCfg.MinPulse)
	s.maxPulse = float64(fwCfg.MaxPulse)
	s.scale = (s.maxPulse - s.minPulse) / float64(cfg.TMax-cfg.TMin)
	s.maxSpeed = unbounded(cfg.Speed, s.scale)
	s.accel = unbounded(cfg.Accel, s.scale)
	s.settleDelay = fwCfg.SettleDelay

	now := fw.clock.Now()
	s.current = s.toPulse(cfg.Default)
	s.target = s.current
	s.speed = 0
	s.direction = 1
	s.decelPoint = s.target
	s.lastTick = now

	if err := s.actuator.Attach(cfg.Pin); err != nil {
		return err
	}
	s.dirty = true
	if err := s.write(); err != nil {
		return err
	}
	s.enter(fw, PhaseSettling, now)
	return nil
}

// Mutate sets a new target from a big-endian angle.
func (s *Servo) Mutate(fw *Firmware, value []byte) error {
	if len(value) < 2 {
		return ErrShortPayload
	}
	return s.SetTarget(fw, protocol.ReadPosition(value[0], value[1]))
}

// SetTarget starts a move to angle, clamped into [Min, Max]. The motion
// restarts from rest whatever phase the servo was in.
func (s *Servo) SetTarget(fw *Firmware, angle uint16) error {
	if s.actuator == nil {
		return ErrNoDriver
	}
	angle = clampU16(angle, s.settings.Min, s.settings.Max)
	now := fw.clock.Now()

	if !s.actuator.Attached() {
		if err := s.actuator.Attach(s.settings.Pin); err != nil {
			return err
		}
		s.dirty = true
	}

	s.target = s.toPulse(angle)
	s.speed = 0
	s.lastTick = now
	if s.target == s.current {
		s.decelPoint = s.target
		s.enter(fw, PhaseSettling, now)
		return s.write()
	}
	s.direction = 1
	if s.target < s.current {
		s.direction = -1
	}

	if math.IsInf(s.accel, 1) {
		s.speed = s.maxSpeed
		s.decelPoint = s.target
		s.enter(fw, PhaseCruising, now)
		return nil
	}

	// distance needed to brake from cruise speed
	brake := math.Abs(s.target-s.current) / 2
	if !math.IsInf(s.maxSpeed, 1) {
		brake = math.Min(brake, s.maxSpeed*s.maxSpeed/(2*s.accel))
	}
	s.decelPoint = s.target - s.direction*brake
	s.enter(fw, PhaseAccelerating, now)
	return nil
}

// Tick advances the profile by the time elapsed since the previous tick.
func (s *Servo) Tick(fw *Firmware, now time.Duration) {
	switch s.phase {
	case PhaseIdle:
		return
	case PhaseSettling:
		if now-s.phaseStart >= s.settleDelay {
			if s.actuator.Attached() {
				if err := s.actuator.Detach(); err != nil {
					fw.trace.Println("Servo: detach: " + err.Error())
				}
			}
			s.enter(fw, PhaseIdle, now)
		}
		return
	}

	dt := (now - s.lastTick).Seconds()
	s.lastTick = now
	if dt <= 0 && !math.IsInf(s.speed, 1) {
		return
	}

	switch s.phase {
	case PhaseAccelerating:
		s.speed += s.accel * dt
		if s.speed > s.maxSpeed {
			s.speed = s.maxSpeed
			s.enter(fw, PhaseCruising, now)
		}
		s.advance(fw, dt, now)
	case PhaseCruising:
		s.advance(fw, dt, now)
	case PhaseDecelerating:
		if s.speed-s.accel*dt <= 0 {
			s.arrive(fw, now)
			return
		}
		s.speed -= s.accel * dt
		s.advance(fw, dt, now)
	}
}

// arriveEpsilon is the remaining distance, in µs, treated as arrival.
const arriveEpsilon = 1e-6

// advance integrates one step. The step never passes the target.
func (s *Servo) advance(fw *Firmware, dt float64, now time.Duration) {
	if math.IsInf(s.speed, 1) {
		s.arrive(fw, now)
		return
	}
	next := s.current + s.direction*s.speed*dt
	// a step below one ulp or within arriveEpsilon of target would stall
	if next == s.current || math.Abs(s.target-next) < arriveEpsilon || (next-s.target)*s.direction >= 0 {
		s.arrive(fw, now)
		return
	}
	s.current = next
	if err := s.write(); err != nil {
		fw.trace.Println("Servo: write: " + err.Error())
	}
	if s.phase != PhaseDecelerating && (s.current-s.decelPoint)*s.direction >= 0 {
		s.enter(fw, PhaseDecelerating, now)
	}
}

func (s *Servo) arrive(fw *Firmware, now time.Duration) {
	s.current = s.target
	s.speed = 0
	if err := s.write(); err != nil {
		fw.trace.Println("Servo: write: " + err.Error())
	}
	s.enter(fw, PhaseSettling, now)
}

// write sends the rounded position if it differs from the last write.
func (s *Servo) write() error {
	us := uint16(math.Round(s.current))
	if !s.dirty && us == s.written {
		return nil
	}
	if err := s.actuator.WritePulseWidth(us); err != nil {
		return err
	}
	s.written = us
	s.dirty = false
	return nil
}

func (s *Servo) enter(fw *Firmware, phase ServoPhase, now time.Duration) {
	s.phase = phase
	s.phaseStart = now
	fw.trace.Record(EvtPhase, uint8(protocol.SERVO), s.id, millis(now), uint32(phase))
}

func (s *Servo) toPulse(angle uint16) float64 {
	return s.minPulse + float64(angle-s.settings.TMin)*s.scale
}

// unbounded converts a degree rate to pulse units; v <= 0 is +Inf.
func unbounded(v int16, scale float64) float64 {
	if v <= 0 {
		return math.Inf(1)
	}
	return float64(v) * scale
}

func clampU16(v, lo, hi uint16) uint16 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
