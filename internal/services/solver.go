package services

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"shipment-plan-service/internal/domain"
)

// flowTol absorbs simplex rounding: flows within this distance of zero
// are reported as exactly zero.
const flowTol = 1e-9

// simplexTol is the pivot tolerance handed to the simplex solver.
const simplexTol = 1e-7

// SolveTransportation minimizes total shipping cost over the
// transportation polytope:
//
//	min  Σ f[i][j] * cost[i][j]
//	s.t. Σ_j f[i][j] <= capacity[i]   (unused capacity is permitted)
//	     Σ_i f[i][j] >= demand[j]     (demand may be exceeded)
//	     f[i][j] >= 0
//
// Infeasibility is an expected outcome and is reported on the Solution,
// never as an error. Errors are reserved for malformed input.
func SolveTransportation(
	capacities map[string]float64,
	demands map[string]float64,
	matrix domain.CostMatrix,
) (*domain.Solution, error) {
	supplies, demandNodes, err := validateProblem(capacities, demands, matrix)
	if err != nil {
		return nil, err
	}

	var totalCapacity, totalDemand float64
	for _, c := range capacities {
		totalCapacity += c
	}
	for _, d := range demands {
		totalDemand += d
	}

	// No flow assignment can meet the demand; skip the simplex entirely.
	if totalCapacity < totalDemand {
		return infeasibleSolution(supplies, matrix), nil
	}

	nS, nD := len(supplies), len(demandNodes)
	nFlow := nS * nD

	// Standard-form LP: variables are [flows, capacity slacks, demand
	// surpluses], all nonnegative, with one equality per node:
	//   Σ_j f[i][j] + s[i] = capacity[i]
	//   Σ_i f[i][j] - t[j] = demand[j]
	nVar := nFlow + nS + nD
	c := make([]float64, nVar)
	a := mat.NewDense(nS+nD, nVar, nil)
	b := make([]float64, nS+nD)

	for i, sup := range supplies {
		for j, dem := range demandNodes {
			idx := i*nD + j
			c[idx] = matrix[domain.RouteKey{Supply: sup, Demand: dem}].Cost
			a.Set(i, idx, 1)
			a.Set(nS+j, idx, 1)
		}
		a.Set(i, nFlow+i, 1)
		b[i] = capacities[sup]
	}
	for j, dem := range demandNodes {
		a.Set(nS+j, nFlow+nS+j, -1)
		b[nS+j] = demands[dem]
	}

	_, sol, err := lp.Simplex(c, a, b, simplexTol, nil)
	if err != nil {
		if errors.Is(err, lp.ErrInfeasible) {
			return infeasibleSolution(supplies, matrix), nil
		}
		return nil, fmt.Errorf("solve transportation: simplex: %w", err)
	}

	flows := make(map[domain.RouteKey]float64, nFlow)
	var totalCost float64
	sent := make(map[string]float64, nS)

	for i, sup := range supplies {
		for j, dem := range demandNodes {
			f := sol[i*nD+j]
			if f < flowTol {
				f = 0
			}
			key := domain.RouteKey{Supply: sup, Demand: dem}
			flows[key] = f
			totalCost += f * matrix[key].Cost
			sent[sup] += f
		}
	}

	return &domain.Solution{
		Feasible:    true,
		TotalCost:   totalCost,
		Flows:       flows,
		Utilization: utilization(supplies, capacities, sent),
		Source:      matrix.Provenance(),
	}, nil
}

// validateProblem fails fast on malformed input: negative or non-finite
// constraints, or a cost matrix that does not cover the node sets.
func validateProblem(
	capacities map[string]float64,
	demands map[string]float64,
	matrix domain.CostMatrix,
) (supplies, demandNodes []string, err error) {
	if len(capacities) == 0 {
		return nil, nil, errors.New("solve transportation: at least one supply node is required")
	}
	if len(demands) == 0 {
		return nil, nil, errors.New("solve transportation: at least one demand node is required")
	}

	for node, c := range capacities {
		if c < 0 || math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, nil, fmt.Errorf("solve transportation: capacity of %q must be finite and nonnegative, got %v", node, c)
		}
		supplies = append(supplies, node)
	}
	for node, d := range demands {
		if d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
			return nil, nil, fmt.Errorf("solve transportation: demand of %q must be finite and nonnegative, got %v", node, d)
		}
		demandNodes = append(demandNodes, node)
	}
	sort.Strings(supplies)
	sort.Strings(demandNodes)

	for _, sup := range supplies {
		for _, dem := range demandNodes {
			key := domain.RouteKey{Supply: sup, Demand: dem}
			cell, ok := matrix[key]
			if !ok {
				return nil, nil, fmt.Errorf("solve transportation: cost matrix is missing route %s", key)
			}
			// Negative costs would make the demand-exceeding LP unbounded.
			if cell.Cost < 0 || math.IsNaN(cell.Cost) || math.IsInf(cell.Cost, 0) {
				return nil, nil, fmt.Errorf("solve transportation: cost for route %s must be finite and nonnegative, got %v", key, cell.Cost)
			}
		}
	}
	if len(matrix) != len(supplies)*len(demandNodes) {
		return nil, nil, fmt.Errorf("solve transportation: cost matrix has %d cells, constraints define %d routes",
			len(matrix), len(supplies)*len(demandNodes))
	}

	return supplies, demandNodes, nil
}

func infeasibleSolution(supplies []string, matrix domain.CostMatrix) *domain.Solution {
	util := make(map[string]float64, len(supplies))
	for _, sup := range supplies {
		util[sup] = 0
	}
	return &domain.Solution{
		Feasible:    false,
		Flows:       map[domain.RouteKey]float64{},
		Utilization: util,
		Source:      matrix.Provenance(),
	}
}

func utilization(supplies []string, capacities, sent map[string]float64) map[string]float64 {
	util := make(map[string]float64, len(supplies))
	for _, sup := range supplies {
		if capacities[sup] == 0 {
			util[sup] = 0
			continue
		}
		util[sup] = sent[sup] / capacities[sup]
	}
	return util
}
