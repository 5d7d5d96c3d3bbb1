package board

import (
	"sync"

	"golang.org/x/sync/singleflight"

	"sensehat-go/errcode"
	"sensehat-go/logging"
	"sensehat-go/services/board/platform"
	"sensehat-go/types"
)

// State is the provider's position in Empty -> Building -> Cached.
type State uint8

const (
	StateEmpty State = iota
	StateBuilding
	StateCached
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateBuilding:
		return "building"
	case StateCached:
		return "cached"
	default:
		return "unknown"
	}
}

// Provider owns the process-wide board cell. The first successful Acquire
// stores the Board; it is never replaced or cleared afterwards. A failed
// bring-up leaves the cell empty so the next Acquire starts from scratch.
//
// Concurrent first-time callers share a single in-flight bring-up and all
// observe its result. Bring-up cannot be cancelled and has no timeout: a
// hung bus transaction blocks every caller waiting on it.
type Provider struct {
	transport types.BusTransport
	selector  string
	sel       SelectFunc
	mode      Mode
	log       logging.Logger
	optErr    error

	flight singleflight.Group

	mu    sync.Mutex
	state State
	board *Board
}

// Option configures a Provider.
type Option func(*Provider)

// WithTransport sets the bus transport. Default: periph.io on the host.
func WithTransport(t types.BusTransport) Option { return func(p *Provider) { p.transport = t } }

// WithSelector replaces the controller tie-break policy. Default: SelectFirst.
func WithSelector(sel SelectFunc) Option { return func(p *Provider) { p.sel = sel } }

func WithMode(m Mode) Option                  { return func(p *Provider) { p.mode = m } }
func WithLogger(l logging.Logger) Option      { return func(p *Provider) { p.log = l } }
func WithEnumerationSelector(s string) Option { return func(p *Provider) { p.selector = s } }

// WithConfig applies a loaded Config. An unparsable mode keeps the current one
// and is logged as a warning once the provider is built.
func WithConfig(cfg Config) Option {
	return func(p *Provider) {
		if cfg.Selector != "" {
			p.selector = cfg.Selector
		}
		if cfg.Controller != "" {
			p.sel = SelectByID(types.ControllerID(cfg.Controller))
		}
		m, err := ParseMode(cfg.Mode)
		if err != nil {
			p.optErr = err
			return
		}
		p.mode = m
	}
}

func NewProvider(opts ...Option) *Provider {
	p := &Provider{
		selector: types.SelectorI2C,
		sel:      SelectFirst,
		mode:     Sequential,
	}
	for _, o := range opts {
		o(p)
	}
	if p.log == nil {
		p.log = logging.NewNopLogger()
	}
	if p.transport == nil {
		p.transport = platform.NewPeriphTransport(p.log)
	}
	if p.optErr != nil {
		p.log.Warnw("ignoring config value", "mode", p.mode, "error", p.optErr)
	}
	return p
}

// State reports the current lifecycle state.
func (p *Provider) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Acquire returns the board, bringing it up on first use. Once cached, every
// call returns the identical *Board without touching the bus.
func (p *Provider) Acquire() (*Board, error) {
	p.mu.Lock()
	if b := p.board; b != nil {
		p.mu.Unlock()
		return b, nil
	}
	p.mu.Unlock()

	v, err, shared := p.flight.Do("board", p.build)
	if err != nil {
		if shared {
			p.log.Debugw("joined failed bring-up", "error", err)
		}
		return nil, err
	}
	return v.(*Board), nil
}

func (p *Provider) build() (any, error) {
	p.mu.Lock()
	// A caller may enter a new flight just after the previous one cached.
	if b := p.board; b != nil {
		p.mu.Unlock()
		return b, nil
	}
	p.state = StateBuilding
	p.mu.Unlock()

	// A panicking driver must not leave the cell stuck in Building.
	finished := false
	defer func() {
		if !finished {
			p.mu.Lock()
			p.state = StateEmpty
			p.mu.Unlock()
		}
	}()

	p.log.Debugw("board bring-up started", "selector", p.selector, "mode", p.mode)
	b, err := bringUpBoard(p.transport, p.selector, p.sel, p.mode, p.log)
	finished = true

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.state = StateEmpty
		p.log.Warnw("board bring-up failed", "code", errcode.Of(err), "sensor", errcode.KindOf(err), "error", err)
		return nil, err
	}
	p.board = b
	p.state = StateCached
	p.log.Infow("board ready", "board", b.String())
	return b, nil
}
