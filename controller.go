/*
Copyright © 2015-2022 Leo Antunes <leo@costela.net>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <http://www.gnu.org/licenses/>.
*/

package gobnp

import (
	"context"
	"io"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Controller multiplexes the pricing subproblems of a decomposition
// across the registered solvers. Per round it decides which problems
// to attempt, in which order, heuristically or exactly and under which
// limits, and aggregates the emitted columns.
type Controller struct {
	decomp    *Decomposition
	solvers   []Solver
	settings  Settings
	score     ScoreFunc
	logger    logrus.FieldLogger
	branching BranchingSource
	metrics   *Metrics

	problems []*PricingProblem
	limits   []SolveLimits
	dirty    [][]updateFlags // per problem, per solver
	pool     *ColumnPool

	statsMu sync.Mutex
	stats   map[string]*SolverStats

	heurRoundsNoCols int
	lastPoolStats    PoolStats
	initialized      bool
}

// updateFlags tracks which parts of a subproblem a given solver has
// not seen yet.
type updateFlags struct {
	obj    bool
	bounds bool
	cons   bool
}

func (f updateFlags) any() bool { return f.obj || f.bounds || f.cons }

// RoundResult is what one pricing round reports back to the master
// pricing loop.
type RoundResult struct {
	// Columns are the deduplicated improving columns of this round.
	Columns []*Column
	NCols   int

	// AllDetermined reports that every relevant subproblem reached a
	// determined status this round. Together with NCols == 0 under
	// reduced-cost pricing this certifies the master dual solution as
	// reduced-cost optimal; see OptimalityProof.
	AllDetermined   bool
	OptimalityProof bool

	// LowerBounds holds the per-block pricing lower bounds (symmetry
	// duplicates repeat their representative's value). Only meaningful
	// when LowerBoundsValid is set.
	LowerBounds      []float64
	LowerBoundsValid bool

	// Aborted is set when the early-stop criterion or the round budget
	// prevented some jobs from being dispatched.
	Aborted bool

	Duration time.Duration
}

// NewController creates a pricing controller for a validated
// decomposition and a non-empty, priority-ordered set of solvers.
func NewController(decomp *Decomposition, solvers []Solver, opts ...Option) (*Controller, error) {
	if err := decomp.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating decomposition")
	}
	if len(solvers) == 0 {
		return nil, errors.New("no pricing solvers registered")
	}

	discard := logrus.New()
	discard.SetOutput(io.Discard)

	c := &Controller{
		decomp:   decomp,
		solvers:  sortSolvers(solvers),
		settings: DefaultSettings(),
		logger:   discard,
	}
	c.score = scoreFor(c.settings.Scoring)

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, errors.Wrap(err, "applying controller option")
		}
	}

	return c, nil
}

// InitSolve initializes the solver backends and the per-block state.
// Must be called once before the first pricing round.
func (c *Controller) InitSolve(ctx context.Context) error {
	if c.initialized {
		return errors.New("controller already initialized")
	}

	for _, s := range c.solvers {
		if err := s.Init(ctx); err != nil {
			return errors.Wrapf(err, "initializing solver %q", s.Name())
		}
		if err := s.BuildModels(c.decomp.Subproblems); err != nil {
			return errors.Wrapf(err, "building models for solver %q", s.Name())
		}
	}

	n := c.decomp.NBlocks()
	c.problems = make([]*PricingProblem, n)
	c.limits = make([]SolveLimits, n)
	c.dirty = make([][]updateFlags, n)
	for b := 0; b < n; b++ {
		c.problems[b] = NewPricingProblem(b, c.settings.ColumnWindow)
		c.limits[b] = c.settings.Limits.Start()
		c.dirty[b] = make([]updateFlags, len(c.solvers))
	}
	c.pool = NewColumnPool(0)
	c.stats = make(map[string]*SolverStats, len(c.solvers))
	for _, s := range c.solvers {
		c.stats[s.Name()] = &SolverStats{}
	}
	c.initialized = true

	c.logger.WithFields(logrus.Fields{
		"blocks":  n,
		"solvers": len(c.solvers),
	}).Info("pricing controller initialized")

	return nil
}

// ExitSolve releases the solver backends. The controller can be
// re-initialized afterwards.
func (c *Controller) ExitSolve() error {
	var firstErr error
	for _, s := range c.solvers {
		if err := s.ReleaseModels(); err != nil && firstErr == nil {
			firstErr = errors.Wrapf(err, "releasing models of solver %q", s.Name())
		}
		if err := s.Exit(); err != nil && firstErr == nil {
			firstErr = errors.Wrapf(err, "exiting solver %q", s.Name())
		}
	}
	c.initialized = false
	return firstErr
}

// Problem exposes the bookkeeping state of one block.
func (c *Controller) Problem(b int) *PricingProblem { return c.problems[b] }

// Stats returns a snapshot of the per-solver statistics.
func (c *Controller) Stats() map[string]SolverStats {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()

	out := make(map[string]SolverStats, len(c.stats))
	for name, s := range c.stats {
		out[name] = *s
	}
	return out
}

func (c *Controller) anyHeuristicSolver() bool {
	for _, s := range c.solvers {
		if s.HeuristicEnabled() {
			return true
		}
	}
	return false
}

func (c *Controller) anyExactSolver() bool {
	for _, s := range c.solvers {
		if s.ExactEnabled() {
			return true
		}
	}
	return false
}

// markDirty flags a change of subproblem b for every solver.
func (c *Controller) markDirty(b int, obj, bounds, cons bool) {
	for i := range c.dirty[b] {
		c.dirty[b][i].obj = c.dirty[b][i].obj || obj
		c.dirty[b][i].bounds = c.dirty[b][i].bounds || bounds
		c.dirty[b][i].cons = c.dirty[b][i].cons || cons
	}
}

// PerformPricing runs one pricing round: setup, scored dispatch over
// chunks, per-job escalation and result aggregation. Solver failures
// on individual subproblems are absorbed; only systemic failures
// (invalid input, uninitialized controller) return an error.
func (c *Controller) PerformPricing(ctx context.Context, in RoundInput) (*RoundResult, error) {
	if !c.initialized {
		return nil, errors.New("controller not initialized")
	}
	if err := c.decomp.validateRound(in); err != nil {
		return nil, errors.Wrap(err, "validating round input")
	}

	start := time.Now()
	var deadline time.Time
	if c.settings.RoundTimeout > 0 {
		deadline = start.Add(c.settings.RoundTimeout)
	}

	c.applyRoundChanges(in)

	useHeur := c.settings.HeurPricingEnabled &&
		in.Type == RedcostPricing &&
		c.anyHeuristicSolver() &&
		c.anyExactSolver() // escalation target must exist
	if c.settings.MaxHeurRoundsWithoutCols > 0 && c.heurRoundsNoCols >= c.settings.MaxHeurRoundsWithoutCols {
		useHeur = false
	}

	jobs, skipped := c.setupJobs(in, useHeur)

	maxCols := 0
	if c.settings.MaxColsRoundFactor > 0 {
		maxCols = int(math.Ceil(c.settings.MaxColsRoundFactor * float64(len(jobs))))
	}
	c.pool.SetQuota(maxCols)

	shouldStop := func() bool {
		if ctx.Err() != nil {
			return true
		}
		if maxCols > 0 && c.pool.Len() >= maxCols {
			return true
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			return true
		}
		return false
	}

	var stopped atomic.Bool
	chunkSize := c.settings.ChunkSize
	if chunkSize <= 0 {
		chunkSize = max(len(jobs), 1)
	}
	sem := semaphore.NewWeighted(int64(max(c.settings.MaxConcurrency, 1)))

	for lo := 0; lo < len(jobs) && !stopped.Load(); lo += chunkSize {
		chunk := jobs[lo:min(lo+chunkSize, len(jobs))]

		var g errgroup.Group
		for _, job := range chunk {
			// cooperative early stop: withhold new dispatches, let
			// in-flight jobs finish and be collected
			if shouldStop() {
				stopped.Store(true)
				break
			}
			if err := sem.Acquire(ctx, 1); err != nil {
				stopped.Store(true)
				break
			}
			job := job
			g.Go(func() error {
				defer sem.Release(1)
				c.runJob(ctx, job, in, shouldStop)
				return nil
			})
		}
		_ = g.Wait()
	}

	res := c.collectRound(in, jobs, skipped, stopped.Load(), start)

	if useHeur {
		if res.NCols == 0 {
			c.heurRoundsNoCols++
		} else {
			c.heurRoundsNoCols = 0
		}
	}

	poolStats := c.pool.Stats()
	delta := PoolStats{
		Accepted:   poolStats.Accepted - c.lastPoolStats.Accepted,
		Duplicates: poolStats.Duplicates - c.lastPoolStats.Duplicates,
		Dropped:    poolStats.Dropped - c.lastPoolStats.Dropped,
	}
	c.lastPoolStats = poolStats
	c.metrics.observeRound(in.Type, res.Duration, delta)

	c.logger.WithFields(logrus.Fields{
		"type":       in.Type.String(),
		"heuristic":  useHeur,
		"jobs":       len(jobs),
		"skipped":    skipped,
		"cols":       res.NCols,
		"determined": res.AllDetermined,
		"proof":      res.OptimalityProof,
		"aborted":    res.Aborted,
		"duration":   res.Duration,
	}).Info("pricing round finished")

	return res, nil
}

// applyRoundChanges folds the round input and freshly active branching
// constraints into the subproblems and marks the affected solvers
// dirty.
func (c *Controller) applyRoundChanges(in RoundInput) {
	for b, sp := range c.decomp.Subproblems {
		if !c.decomp.Relevant(b) {
			continue
		}
		p := c.problems[b]

		if c.branching != nil {
			active := c.branching.ActiveConstraints(b)
			for i := len(p.BranchingConstraints()); i < len(active); i++ {
				p.AddGenericBranchingData(active[i])
				sp.Extra = append(sp.Extra, active[i])
			}
		}
		if p.pendingBranchingCons() {
			c.markDirty(b, false, false, true)
		}

		if len(in.Objectives) > 0 && in.Objectives[b] != nil {
			copy(sp.Obj, in.Objectives[b])
			c.markDirty(b, true, false, false)
		}
		if len(in.BoundsChanged) > 0 && in.BoundsChanged[b] {
			c.markDirty(b, false, true, false)
		}
	}
}

// setupJobs resets the relevant problems, applies the skip policy and
// returns the score-sorted jobs plus the number of relevant problems
// skipped by policy.
func (c *Controller) setupJobs(in RoundInput, useHeur bool) ([]*PricingJob, int) {
	var jobs []*PricingJob
	skipped := 0

	for b := range c.decomp.Subproblems {
		if !c.decomp.Relevant(b) {
			continue
		}
		p := c.problems[b]

		// historically unproductive problems sit out heuristic rounds;
		// exact rounds always attempt everything, so proofs stay intact
		if useHeur && c.settings.SkipAfterRounds > 0 && p.NSolves() >= c.settings.SkipAfterRounds {
			k := min(c.settings.SkipAfterRounds, len(p.window))
			if p.NColsLastRounds(k) == 0 {
				skipped++
				continue
			}
		}

		p.Reset()
		job := NewPricingJob(p, c.solvers, 0)
		job.Setup(useHeur, c.score(ScoreInput{
			Probnr:          b,
			NColsLastRounds: p.NColsLastRounds(len(p.window)),
			ConvDual:        in.convDual(b),
			NPoints:         p.NPoints(),
			NRays:           p.NRays(),
			Heuristic:       useHeur,
		}))
		jobs = append(jobs, job)
	}

	sort.SliceStable(jobs, func(i, j int) bool {
		if jobs[i].Score() != jobs[j].Score() {
			return jobs[i].Score() > jobs[j].Score()
		}
		return jobs[i].Problem().Probnr() < jobs[j].Problem().Probnr()
	})

	chunkSize := c.settings.ChunkSize
	if chunkSize <= 0 {
		chunkSize = max(len(jobs), 1)
	}
	for i, job := range jobs {
		job.chunk = i / chunkSize
	}

	return jobs, skipped
}

// runJob drives one job through its attempt sequence: current solver,
// limit escalation on solver-limit outcomes, next solver on failure or
// inapplicability, and the heuristic→exact switch once the heuristic
// solvers are exhausted.
func (c *Controller) runJob(ctx context.Context, job *PricingJob, in RoundInput, shouldStop func() bool) {
	p := job.Problem()
	b := p.Probnr()
	sink := &countingSink{ctrl: c, problem: p}

	for {
		if shouldStop() {
			return
		}

		s := job.CurrentSolver()
		if s == nil {
			if job.Heuristic() && c.anyExactSolver() {
				job.SetExact()
				c.limits[b] = ExactLimits()
				continue
			}
			return
		}

		if fl := c.dirty[b][job.cursor]; fl.any() {
			if err := s.Update(b, fl.obj, fl.bounds, fl.cons); err != nil {
				c.logger.WithFields(logrus.Fields{
					"probnr": b,
					"solver": s.Name(),
				}).WithError(err).Warn("solver update failed")
				job.NextSolver()
				continue
			}
			c.dirty[b][job.cursor] = updateFlags{}
		}

		p.beginSolve()
		solveStart := time.Now()
		var res SolveResult
		var err error
		if job.Heuristic() {
			res, err = s.SolveHeuristic(ctx, b, in.convDual(b), c.limits[b], sink)
		} else {
			res, err = s.SolveExact(ctx, b, in.convDual(b), sink)
		}
		elapsed := time.Since(solveStart)
		p.endSolve()

		cols := sink.take()
		c.recordStats(s.Name(), in.Type, job.Heuristic(), elapsed, cols)
		c.metrics.observeSolve(s.Name(), in.Type, job.Heuristic(), res.Status, elapsed)

		if err != nil {
			// per-subproblem failures are absorbed; the problem is
			// naturally deprioritized through its yield window
			c.logger.WithFields(logrus.Fields{
				"probnr": b,
				"solver": s.Name(),
			}).WithError(err).Warn("pricing solver failed")
			p.Update(StatusUnknown, math.Inf(-1), cols)
			job.NextSolver()
			continue
		}

		p.Update(res.Status, res.LowerBound, cols)
		c.logger.WithFields(logrus.Fields{
			"probnr": b,
			"solver": s.Name(),
			"status": res.Status.String(),
			"cols":   cols,
		}).Debug("pricing job collected")

		switch res.Status {
		case StatusOptimal, StatusInfeasible, StatusUnbounded:
			return
		case StatusSolverLimit:
			if job.Heuristic() {
				c.settings.Limits.escalate(&c.limits[b], res)
				job.IncreaseNHeurIters()
				if c.settings.MaxHeurIters > 0 && job.NHeurIters() >= c.settings.MaxHeurIters {
					job.NextSolver()
				}
				continue
			}
			job.NextSolver()
		default:
			job.NextSolver()
		}
	}
}

func (c *Controller) recordStats(name string, t PricingType, heuristic bool, d time.Duration, cols int) {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	c.stats[name].record(t, heuristic, d, cols)
}

func (c *Controller) collectRound(in RoundInput, jobs []*PricingJob, skipped int, stopped bool, start time.Time) *RoundResult {
	allDet := skipped == 0
	allOptOrInfeas := skipped == 0
	lbValid := skipped == 0
	for _, job := range jobs {
		st := job.Problem().Status()
		if !st.Determined() {
			allDet = false
		}
		if st != StatusOptimal && st != StatusInfeasible {
			allOptOrInfeas = false
		}
		if !st.boundUsable() && st != StatusInfeasible {
			lbValid = false
		}
	}

	cols := c.pool.Flush()

	lbs := make([]float64, c.decomp.NBlocks())
	for b := range lbs {
		lbs[b] = c.problems[c.decomp.RepresentativeOf(b)].LowerBound()
	}

	return &RoundResult{
		Columns:          cols,
		NCols:            len(cols),
		AllDetermined:    allDet,
		OptimalityProof:  in.Type == RedcostPricing && allDet && allOptOrInfeas && len(cols) == 0,
		LowerBounds:      lbs,
		LowerBoundsValid: lbValid && len(jobs) > 0,
		Aborted:          stopped,
		Duration:         time.Since(start),
	}
}

// countingSink validates and forwards columns into the round pool and
// keeps per-attempt and per-problem statistics.
type countingSink struct {
	ctrl    *Controller
	problem *PricingProblem
	count   int
}

func (s *countingSink) AddColumn(col *Column) (bool, error) {
	sp := s.ctrl.decomp.Subproblems[col.Block]
	if err := col.Validate(sp); err != nil {
		s.ctrl.logger.WithFields(logrus.Fields{
			"probnr": col.Block,
		}).WithError(err).Warn("rejecting invalid column")
		return false, nil
	}

	ok, err := s.ctrl.pool.AddColumn(col)
	if err != nil {
		return false, err
	}
	if ok {
		s.count++
		s.problem.recordColumn(col.Ray)
	}
	return ok, nil
}

// take returns the number of columns accepted since the last call.
func (s *countingSink) take() int {
	n := s.count
	s.count = 0
	return n
}
