// ABOUTME: Compares candidate node types for a replica target
// ABOUTME: Plans each candidate concurrently and ranks them by hourly cost

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/markalston/pypiserver-capacity/backend/models"
	"golang.org/x/sync/errgroup"
)

// DefaultCompareConcurrency bounds concurrent candidate lookups
const DefaultCompareConcurrency = 4

// MaxCompareCandidates caps one comparison request
const MaxCompareCandidates = 32

// ErrInvalidCompareRequest is returned for requests that cannot be evaluated at all
var ErrInvalidCompareRequest = errors.New("invalid compare request")

// InstanceTypeLookup resolves instance type names
type InstanceTypeLookup interface {
	Lookup(ctx context.Context, name string) (models.InstanceType, error)
}

// Comparator evaluates several node types against the same overrides
type Comparator struct {
	lookup      InstanceTypeLookup
	planner     *Planner
	concurrency int
}

// NewComparator creates a comparator. concurrency <= 0 uses the default.
func NewComparator(lookup InstanceTypeLookup, planner *Planner, concurrency int) *Comparator {
	if concurrency <= 0 {
		concurrency = DefaultCompareConcurrency
	}
	return &Comparator{
		lookup:      lookup,
		planner:     planner,
		concurrency: concurrency,
	}
}

// Compare plans every candidate. A candidate that cannot be resolved or
// planned is reported with its error and ranked last; it never fails the batch.
func (c *Comparator) Compare(ctx context.Context, req models.CompareRequest) (models.CompareResult, error) {
	if len(req.Candidates) == 0 {
		return models.CompareResult{}, fmt.Errorf("%w: at least one candidate is required", ErrInvalidCompareRequest)
	}
	if len(req.Candidates) > MaxCompareCandidates {
		return models.CompareResult{}, fmt.Errorf("%w: at most %d candidates allowed", ErrInvalidCompareRequest, MaxCompareCandidates)
	}
	if req.TargetReplicas <= 0 || req.TargetReplicas > MaxSizingValue {
		return models.CompareResult{}, fmt.Errorf("%w: target_replicas must be between 1 and %d", ErrInvalidCompareRequest, MaxSizingValue)
	}

	candidates := dedupe(req.Candidates)
	results := make([]models.CandidateResult, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, name := range candidates {
		i, name := i, name
		g.Go(func() error {
			results[i] = c.evaluate(gctx, name, req)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return models.CompareResult{}, err
	}

	rankCandidates(results)

	out := models.CompareResult{
		TargetReplicas: req.TargetReplicas,
		Candidates:     results,
	}
	if len(results) > 0 && results[0].Error == "" {
		results[0].Recommended = true
		out.Recommended = results[0].InstanceType
	}

	slog.Info("Candidate comparison complete",
		"candidates", len(results),
		"target_replicas", req.TargetReplicas,
		"recommended", out.Recommended)
	return out, nil
}

func (c *Comparator) evaluate(ctx context.Context, name string, req models.CompareRequest) models.CandidateResult {
	result := models.CandidateResult{InstanceType: name}

	it, err := c.lookup.Lookup(ctx, name)
	if err != nil {
		result.Error = err.Error()
		result.ErrorKind = "lookup"
		if errors.Is(err, models.ErrUnknownInstanceType) {
			result.ErrorKind = "unknown_instance_type"
		}
		return result
	}
	result.Profile = &it

	sizing, err := c.planner.Plan(it.Profile(), req.Overrides, req.SubnetCount)
	if err != nil {
		result.Error = err.Error()
		if ce, ok := models.AsConfigError(err); ok {
			result.ErrorKind = string(ce.Kind)
		}
		return result
	}
	result.Sizing = &sizing

	nodes := max(sizing.NodeMin, ceilDiv(req.TargetReplicas, sizing.NodeTaskCapacity))
	result.NodesRequired = nodes
	result.TotalTasks = nodes * sizing.NodeTaskCapacity
	if sizing.NodeMax > 0 && nodes > sizing.NodeMax {
		result.Error = fmt.Sprintf("needs %d nodes, above node_max %d", nodes, sizing.NodeMax)
		result.ErrorKind = "node_max_exceeded"
		return result
	}

	if it.OnDemandPricePerHour > 0 {
		result.Priced = true
		result.HourlyCost = float64(nodes) * it.OnDemandPricePerHour
	}
	return result
}

// rankCandidates orders successes before failures, priced before unpriced,
// then by cost, node count, and name
func rankCandidates(results []models.CandidateResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if (a.Error == "") != (b.Error == "") {
			return a.Error == ""
		}
		if a.Priced != b.Priced {
			return a.Priced
		}
		if a.HourlyCost != b.HourlyCost {
			return a.HourlyCost < b.HourlyCost
		}
		if a.NodesRequired != b.NodesRequired {
			return a.NodesRequired < b.NodesRequired
		}
		return a.InstanceType < b.InstanceType
	})
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
