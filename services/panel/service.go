// services/panel/service.go
package panel

import (
	"context"
	"time"

	"capbutton-go/bus"
	"capbutton-go/errcode"
	"capbutton-go/types"
	"capbutton-go/x/timex"
)

const (
	eventQueueLen   = 16
	commandQueueLen = 8

	schemaVersion = 1

	domainIO   = "io"
	buttonName = "main"

	ownerSerial = "panel:serial"
)

// Run services the bus until ctx is cancelled, using the supplied
// platform resources.
func Run(ctx context.Context, conn *bus.Connection, res Resources) {
	New(conn, res).Run(ctx)
}

// Service exposes the panel on the message bus: retained state under
// panel/state, capabilities under panel/cap/..., and a control surface
// accepting set_mode/read verbs. The hardware loop runs on its own
// goroutine; the service goroutine owns all bus publication.
type Service struct {
	conn *bus.Connection
	res  Resources

	cmds chan Command
	evCh chan Event

	loopCancel context.CancelFunc
	loopDone   chan struct{}
	pinClaims  []pinClaim
	serialBus  string

	cfg        types.PanelConfig
	lampValues map[types.PlayerID]types.LampValue
	btnValue   types.ButtonValue
	ready      bool
}

type pinClaim struct {
	owner string
	pin   int
}

func New(conn *bus.Connection, res Resources) *Service {
	return &Service{
		conn:       conn,
		res:        res,
		cmds:       make(chan Command, commandQueueLen),
		evCh:       make(chan Event, eventQueueLen),
		lampValues: map[types.PlayerID]types.LampValue{},
	}
}

// Run consumes config, control, and loop telemetry until ctx is
// cancelled. All bus publication happens on this goroutine.
func (s *Service) Run(ctx context.Context) {
	cfgSub := s.conn.Subscribe(topicConfigPanel())
	ctrlSub := s.conn.Subscribe(ctrlWildcard())
	defer s.conn.Unsubscribe(cfgSub)
	defer s.conn.Unsubscribe(ctrlSub)

	s.publishState("idle", "awaiting_config")

	for {
		select {
		case <-ctx.Done():
			s.stopLoop()
			s.publishState("stopped", "context_cancelled")
			return

		case msg := <-cfgSub.Channel():
			cfg, err := decodeConfig(msg.Payload)
			if err != nil {
				s.publishState("error", "config_invalid")
				continue
			}
			if err := s.applyConfig(ctx, cfg); err != nil {
				// The old loop is already torn down; gate controls
				// until a good config lands.
				s.ready = false
				s.publishState("error", "apply_config_failed")
				continue
			}
			s.ready = true
			s.publishState("ready", "configured")

		case m := <-ctrlSub.Channel():
			if !s.ready {
				s.replyErr(m, errcode.PanelNotReady)
				continue
			}
			s.handleControl(m)

		case ev := <-s.evCh:
			s.handleEvent(ev)
		}
	}
}

// applyConfig tears down any previous loop, claims the configured
// hardware, publishes the capability surface, and starts the loop.
func (s *Service) applyConfig(ctx context.Context, cfg types.PanelConfig) error {
	s.stopLoop()

	now := s.res.Clock.NowMs()

	p1Pin, _ := lampPin(cfg, types.Player1)
	p2Pin, _ := lampPin(cfg, types.Player2)

	p1Out, err := s.claimOutput(ownerFor(types.Player1), p1Pin)
	if err != nil {
		return err
	}
	p2Out, err := s.claimOutput(ownerFor(types.Player2), p2Pin)
	if err != nil {
		s.releaseClaims()
		return err
	}
	mirrorOut, err := s.claimOutput("panel:mirror", cfg.Button.MirrorPin)
	if err != nil {
		s.releaseClaims()
		return err
	}
	statusOut, err := s.claimOutput("panel:status", cfg.Button.StatusPin)
	if err != nil {
		s.releaseClaims()
		return err
	}
	btnIn, err := s.res.Pins.ClaimInput("panel:button", cfg.Button.Pin, PullNone)
	if err != nil {
		s.releaseClaims()
		return err
	}
	s.pinClaims = append(s.pinClaims, pinClaim{owner: "panel:button", pin: cfg.Button.Pin})

	src, err := s.res.Serial.Claim(ownerSerial, cfg.Serial.Bus, cfg.Serial.Baud)
	if err != nil {
		s.releaseClaims()
		return err
	}
	s.serialBus = cfg.Serial.Bus

	ctrl := NewController(NewLamp(p1Out), NewLamp(p2Out), now)
	mon := NewButtonMonitor(btnIn, mirrorOut)
	driver := NewDriver(DriverConfig{
		Controller: ctrl,
		Button:     mon,
		Status:     statusOut,
		Keys:       s.res.Keys,
		Serial:     src,
		Commands:   s.cmds,
		Clock:      s.res.Clock,
		Emit:       s.emitEvent,
		KeyHold:    msDuration(cfg.KeyHoldMs),
		IdleDelay:  msDuration(cfg.IdleMs),
	})

	s.cfg = cfg
	s.publishCapabilities(cfg, now)

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.loopCancel = cancel
	s.loopDone = done
	go func() {
		defer close(done)
		driver.Run(loopCtx)
	}()
	return nil
}

// publishCapabilities announces the capability surface: retained info,
// status up, and the power-on lamp values.
func (s *Service) publishCapabilities(cfg types.PanelConfig, now int64) {
	for _, p := range []types.PlayerID{types.Player1, types.Player2} {
		pin, _ := lampPin(cfg, p)
		name := p.String()
		s.pubRetained(capInfo(domainIO, "lamp", name), types.Info{
			SchemaVersion: schemaVersion,
			Driver:        "gpio_lamp",
			Detail:        types.LampInfo{Pin: pin},
		})
		v := types.LampValue{Mode: types.LampOff, Level: 0}
		s.lampValues[p] = v
		s.pubRetained(capValue(domainIO, "lamp", name), v)
		s.pubRetained(capStatus(domainIO, "lamp", name),
			types.CapabilityStatus{Link: types.LinkUp, TS: now})
	}

	s.pubRetained(capInfo(domainIO, "button", buttonName), types.Info{
		SchemaVersion: schemaVersion,
		Driver:        "gpio_button",
		Detail: types.ButtonInfo{
			Pin:       cfg.Button.Pin,
			MirrorPin: cfg.Button.MirrorPin,
			StatusPin: cfg.Button.StatusPin,
			KeyHoldMs: cfg.KeyHoldMs,
		},
	})
	s.pubRetained(capStatus(domainIO, "button", buttonName),
		types.CapabilityStatus{Link: types.LinkUp, TS: now})
}

func (s *Service) handleControl(m *bus.Message) {
	// panel/cap/<domain>/<kind>/<name>/control/<verb>
	if m.Topic.Len() < 7 {
		s.replyErr(m, errcode.InvalidTopic)
		return
	}
	domain, _ := m.Topic.At(2).(string)
	kind, _ := m.Topic.At(3).(string)
	name, _ := m.Topic.At(4).(string)
	verb, _ := m.Topic.At(6).(string)

	if domain != domainIO {
		s.replyErr(m, errcode.UnknownCapability)
		return
	}

	switch kind {
	case "lamp":
		p, ok := types.ParsePlayerID(name)
		if !ok {
			s.replyErr(m, errcode.UnknownCapability)
			return
		}
		s.handleLampControl(m, p, verb)
	case "button":
		if name != buttonName {
			s.replyErr(m, errcode.UnknownCapability)
			return
		}
		s.handleButtonControl(m, verb)
	default:
		s.replyErr(m, errcode.UnknownCapability)
	}
}

func (s *Service) handleLampControl(m *bus.Message, p types.PlayerID, verb string) {
	switch verb {
	case "set_mode":
		set, code := As[types.LampSet](m.Payload)
		if code != "" {
			s.replyErr(m, code)
			return
		}
		if !set.Mode.Valid() {
			s.replyErr(m, errcode.InvalidParams)
			return
		}
		// Hand the change to the loop; it applies on the next iteration.
		select {
		case s.cmds <- Command{Player: p, Mode: set.Mode}:
			s.replyOK(m)
		default:
			s.replyErr(m, errcode.Busy)
		}
	case "read":
		if m.CanReply() {
			s.conn.Reply(m, s.lampValues[p], false)
			return
		}
		s.pubRetained(capValue(domainIO, "lamp", p.String()), s.lampValues[p])
	default:
		s.replyErr(m, errcode.Unsupported)
	}
}

func (s *Service) handleButtonControl(m *bus.Message, verb string) {
	switch verb {
	case "read":
		if m.CanReply() {
			s.conn.Reply(m, s.btnValue, false)
			return
		}
		s.pubRetained(capValue(domainIO, "button", buttonName), s.btnValue)
	default:
		s.replyErr(m, errcode.Unsupported)
	}
}

// handleEvent republishes loop telemetry. The lamp/button caches let the
// read verbs answer without touching loop-owned state.
func (s *Service) handleEvent(ev Event) {
	switch ev.Kind {
	case EvLamp:
		name := ev.Player.String()
		v := types.LampValue{Mode: ev.Mode, Level: levelByte(ev.Level)}
		s.lampValues[ev.Player] = v
		s.pubRetained(capValue(domainIO, "lamp", name), v)
		s.pubRetained(capStatus(domainIO, "lamp", name),
			types.CapabilityStatus{Link: types.LinkUp, TS: ev.TSms})

	case EvButtonLevel:
		v := types.ButtonValue{Pressed: ev.Level}
		s.btnValue = v
		s.pubRetained(capValue(domainIO, "button", buttonName), v)
		s.pubRetained(capStatus(domainIO, "button", buttonName),
			types.CapabilityStatus{Link: types.LinkUp, TS: ev.TSms})

	case EvButtonPress:
		s.conn.Publish(s.conn.NewMessage(
			capEventTagged(domainIO, "button", buttonName, "pressed"),
			types.ButtonValue{Pressed: true}, false))
	}
}

// emitEvent is the loop's telemetry callback. It must never block; if
// the service is backlogged the event is dropped.
func (s *Service) emitEvent(ev Event) {
	select {
	case s.evCh <- ev:
	default:
	}
}

// ---- loop lifecycle & claims ----

func (s *Service) stopLoop() {
	if s.loopCancel != nil {
		s.loopCancel()
		<-s.loopDone
		s.loopCancel = nil
		s.loopDone = nil
	}
	s.releaseClaims()
}

func (s *Service) claimOutput(owner string, pin int) (OutputPin, error) {
	out, err := s.res.Pins.ClaimOutput(owner, pin, false)
	if err != nil {
		return nil, err
	}
	s.pinClaims = append(s.pinClaims, pinClaim{owner: owner, pin: pin})
	return out, nil
}

func (s *Service) releaseClaims() {
	for _, c := range s.pinClaims {
		s.res.Pins.Release(c.owner, c.pin)
	}
	s.pinClaims = nil
	if s.serialBus != "" {
		s.res.Serial.Release(ownerSerial, s.serialBus)
		s.serialBus = ""
	}
}

func ownerFor(p types.PlayerID) string {
	return "panel:lamp:" + p.String()
}

// ---- bus helpers ----

func (s *Service) publishState(level, status string) {
	s.conn.Publish(s.conn.NewMessage(topicState(),
		types.PanelState{Level: level, Status: status, TS: timex.NowMs()}, true))
}

func (s *Service) pubRetained(t bus.Topic, p any) {
	s.conn.Publish(s.conn.NewMessage(t, p, true))
}

func msDuration(ms uint32) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
