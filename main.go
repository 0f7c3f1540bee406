package main

import (
	"fmt"
	"log"
	"time"

	"github.com/meenmo/bondamm/cfmm"
	"github.com/meenmo/bondamm/utils"
)

func main() {
	solver, err := cfmm.NewSolver(cfmm.DefaultConfig)
	if err != nil {
		log.Fatal(err)
	}

	settlement := time.Date(2025, 11, 21, 0, 0, 0, 0, time.UTC)
	maturity := settlement.AddDate(1, 0, 0)
	tau := utils.TimeToMaturity(settlement, maturity)

	pool := cfmm.Pool{X: 1000, Y: 1000}
	terms, err := solver.Derive(tau, pool.X, pool.Y)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("tau: %.6f  r*: %.6f  rtot: %.6f  price: %.6f\n", tau, terms.RStar, terms.RTot, terms.Price)

	corridor := cfmm.Corridor{PsiMin: 0.9, PsiMax: 1.1}
	rng, err := solver.TradableRange(pool, tau, corridor)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Tradable bond amount: [%.6f, %.6f]\n", rng.Min, rng.Max)

	for _, delta := range []float64{100, -100, 400, 2000} {
		out, err := solver.Swap(pool, cfmm.TradeRequest{Tau: tau, BondAmount: delta, Corridor: cfmm.Corridor{PsiMin: 0.1, PsiMax: 10}})
		if err != nil {
			log.Fatal(err)
		}
		if !out.OK() {
			fmt.Printf("delta %8.2f: %s\n", delta, out.Failure)
			continue
		}
		fmt.Printf("delta %8.2f: X %.6f  y %.6f  psi %.6f\n", delta, out.XNew, out.YNew, out.PsiNew)
	}

	dual := cfmm.DualPool{X: 1000, YPrin: 1000, YLiq: 50}
	out, err := solver.SwapDual(dual, cfmm.TradeRequest{Tau: tau, BondAmount: 40, Corridor: corridor})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Dual delta 40: %s  cash %.6f\n", out.Failure, out.CashAmount)
}
