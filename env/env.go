// Package env holds the explicit environment threaded through the prover
// core: parsed options, statistics accumulators, the shared deadline and
// the logger. The original design kept these as process globals; here every
// long-running component receives an *Env instead.
package env

import (
	"math/rand"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
)

// Mode selects the output style of the prover.
type Mode byte

const (
	// ModeVampire is the human-readable mode: result line, optional proof,
	// then statistics.
	ModeVampire = Mode(iota)
	// ModeSpider is the terse one-line summary mode.
	ModeSpider
)

// Proof selects how proofs are printed after a refutation.
type Proof byte

const (
	// ProofOff suppresses proof output.
	ProofOff = Proof(iota)
	// ProofOn prints the proof in the native notation.
	ProofOn
	// ProofTPTP prints the proof as TPTP derivations.
	ProofTPTP
)

// Options is the parsed CLI configuration handed to the core.
type Options struct {
	InputFile   string
	Mode        Mode
	TimeLimit   time.Duration // 0 means no limit
	MemoryLimit uint64        // bytes; 0 means no limit
	Proof       Proof
	RandomSeed  int64
	TestID      string
}

// Env is the environment passed to all core operations.
type Env struct {
	Options    Options
	Statistics Statistics
	Log        *logrus.Logger
	Rand       *rand.Rand

	start    time.Time
	deadline time.Time // zero when no time limit
	memLimit uint64    // raised by memRecoverStep on exhaustion
}

// memRecoverStep is how much the memory budget is raised after exhaustion,
// so that result reporting itself can still allocate.
const memRecoverStep = 1 << 20

// New creates an environment from options. The deadline starts running
// immediately.
func New(opts Options) *Env {
	log := logrus.New()
	if opts.Mode == ModeSpider {
		log.SetLevel(logrus.ErrorLevel)
	}
	e := &Env{
		Options:  opts,
		Log:      log,
		Rand:     rand.New(rand.NewSource(opts.RandomSeed)),
		start:    time.Now(),
		memLimit: opts.MemoryLimit,
	}
	if opts.TimeLimit > 0 {
		e.deadline = e.start.Add(opts.TimeLimit)
	}
	return e
}

// Elapsed returns the wall-clock time since the environment was created.
func (e *Env) Elapsed() time.Duration {
	return time.Since(e.start)
}

// ElapsedDeciseconds returns the elapsed time in tenths of a second, the
// unit used by the spider output line.
func (e *Env) ElapsedDeciseconds() int {
	return int(e.Elapsed() / (100 * time.Millisecond))
}

// TimeLimitReached reports whether the deadline has passed.
func (e *Env) TimeLimitReached() bool {
	return !e.deadline.IsZero() && time.Now().After(e.deadline)
}

// CheckDeadline returns ErrTimeLimit once the deadline has passed.
// Inner loops poll it at explicit checkpoints.
func (e *Env) CheckDeadline() error {
	if e.TimeLimitReached() {
		return ErrTimeLimit
	}
	return nil
}

// CheckMemory returns ErrMemoryLimit when the in-use heap exceeds the
// memory budget. On failure the budget is raised by a small constant so the
// reporter can still allocate.
func (e *Env) CheckMemory() error {
	if e.memLimit == 0 {
		return nil
	}
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	if ms.HeapAlloc > e.memLimit {
		e.memLimit += memRecoverStep
		return ErrMemoryLimit
	}
	return nil
}
