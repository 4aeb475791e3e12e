// Package session owns one satpg run end to end: the elaborated network,
// the fault database, both simulators, the test-vector pool, and the
// ambient config/logging/metrics objects. It replaces the C++ original's
// AtpgMgr process-wide singleton (spec.md 9's explicit guidance) with a
// plain struct composed by value, the way the teacher's Fan struct
// (pkg/algorithm/fan.go) composes its Circuit/Topology/Implication/
// Frontier/Backtrace/Decision sub-objects.
package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/satpg-go/satpg/internal/config"
	"github.com/satpg-go/satpg/internal/logx"
	"github.com/satpg-go/satpg/internal/metrics"
	"github.com/satpg-go/satpg/pkg/backtrace"
	"github.com/satpg-go/satpg/pkg/dtpg"
	"github.com/satpg-go/satpg/pkg/fault"
	"github.com/satpg-go/satpg/pkg/fsim"
	"github.com/satpg-go/satpg/pkg/netlist"
	"github.com/satpg-go/satpg/pkg/rtpg"
	"github.com/satpg-go/satpg/pkg/testvector"
	"github.com/satpg-go/satpg/pkg/tpg"
)

// Session owns every object one ATPG run needs. Exactly one Session exists
// per run; nothing it holds is a package-level global.
type Session struct {
	ID uuid.UUID

	Config  *config.Config
	Logger  *logx.Logger
	Metrics *metrics.Registry

	Net *tpg.Network
	DB  *fault.DB

	// Sim2 and Sim3 are two independent fsim.Simulator instances over the
	// same network; both simulate three-valued pbit.Pair values (fsim has
	// no separate two-valued mode). Sim2 serves SPSFP/SPPFP/PPSFP callers;
	// no caller in this module uses Sim3.
	Sim2 *fsim.Simulator
	Sim3 *fsim.Simulator

	TVMgr *testvector.Mgr
}

// New elaborates p into a Network, extracts its fault database, and wires
// up both simulators plus the test-vector pool, all under cfg's settings.
// Structural elaboration errors (spec.md 7: malformed network) abort
// construction and are returned, never panicked.
func New(p *netlist.ParsedNetwork, cfg *config.Config, logger *logx.Logger) (*Session, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = logx.New(logx.Config{Level: logx.Level(cfg.Logging.Level), Format: logx.Format(cfg.Logging.Format)})
	}

	net, err := tpg.ElaborateFrom(p)
	if err != nil {
		return nil, fmt.Errorf("elaboration failed: %w", err)
	}
	logger.Circuit(fmt.Sprintf("elaborated network %q: %d nodes, %d FFRs", net.Name, len(net.Nodes), len(net.FFRRoots)))

	db := fault.ExtractAll(net)
	logger.Circuit(fmt.Sprintf("extracted %d faults (%d representative)", len(db.Faults), len(db.Representatives())))

	var mreg *metrics.Registry
	if cfg.Metrics.Enabled {
		mreg = metrics.New(cfg.Metrics.Namespace)
	}

	width := len(net.PIs) + len(net.PPIs)
	twoFrame := hasSequentialElements(net)

	return &Session{
		ID:      uuid.New(),
		Config:  cfg,
		Logger:  logger,
		Metrics: mreg,
		Net:     net,
		DB:      db,
		Sim2:    fsim.New(net, db),
		Sim3:    fsim.New(net, db),
		TVMgr:   testvector.NewMgr(width, twoFrame),
	}, nil
}

func hasSequentialElements(net *tpg.Network) bool { return len(net.PPIs) > 0 }

// NewBackTracer builds a back-tracer for this session's network using the
// configured backtrace mode and frame count.
func (s *Session) NewBackTracer() *backtrace.BackTracer {
	var strat backtrace.Strategy
	switch s.Config.Dtpg.BacktraceMode {
	case "simple":
		strat = backtrace.Simple
	case "just2":
		strat = backtrace.Just2
	default:
		strat = backtrace.Just1
	}
	frames := 1
	if hasSequentialElements(s.Net) {
		frames = 2
	}
	return backtrace.New(s.Net, strat, frames)
}

// NewDtpgEngine builds a DTPG engine over this session's objects using the
// configured scope and solver timeout.
func (s *Session) NewDtpgEngine() *dtpg.Engine {
	var scope dtpg.Scope
	switch s.Config.Dtpg.Engine {
	case "single":
		scope = dtpg.ScopeSingle
	case "mffc":
		scope = dtpg.ScopeMFFC
	default:
		scope = dtpg.ScopeFFR
	}
	timeout := s.Config.Dtpg.SolverTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return dtpg.New(s.Net, s.DB, s.Sim2, s.NewBackTracer(), scope, timeout)
}

// NewPlainRTPG builds a Plain RTPG runner over this session's network and
// its Sim2 simulator.
func (s *Session) NewPlainRTPG(seed int64) *rtpg.Plain {
	cfg := rtpg.Config{
		PatternBudget: s.Config.Rtpg.PatternBudget,
		MinF:          s.Config.Rtpg.MinF,
		MaxI:          s.Config.Rtpg.MaxI,
	}
	return rtpg.NewPlain(s.Net, s.DB, s.Sim2, seed, cfg)
}

// NewWSARTPG builds a WSA-constrained RTPG runner over this session's
// network and its Sim2 simulator. p2 selects the Metropolis-style
// acceptance walk over plain WSA rejection.
func (s *Session) NewWSARTPG(seed int64, p2 bool) *rtpg.WSA {
	cfg := rtpg.WSAConfig{
		Config: rtpg.Config{
			PatternBudget: s.Config.Rtpg.PatternBudget,
			MinF:          s.Config.Rtpg.MinF,
			MaxI:          s.Config.Rtpg.MaxI,
		},
		Limit: s.Config.Rtpg.WSALimit,
		P2:    p2,
	}
	return rtpg.NewWSA(s.Net, s.DB, s.Sim2, seed, cfg)
}

// Coverage reports the fraction of representative faults that have left
// the Undetected state.
func (s *Session) Coverage() float64 {
	reps := s.DB.Representatives()
	if len(reps) == 0 {
		return 1
	}
	resolved := 0
	for _, fid := range reps {
		if s.DB.Faults[fid].Status != fault.Undetected {
			resolved++
		}
	}
	return float64(resolved) / float64(len(reps))
}
