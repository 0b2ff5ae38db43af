package game

import (
	"fmt"
	"testing"

	"github.com/pthm-cable/flock/config"
)

func benchmarkStrategy(b *testing.B, strategy string, n int) {
	cfg := testConfig(b, func(c *config.Config) {
		c.Agents.Count = n
		c.Agents.InitialSpeed = 0.5
		c.Strategy = strategy
	})
	sim := newTestSim(b, cfg, Options{})
	dt := cfg.Derived.DT32

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := sim.Step(dt); err != nil {
			b.Fatal(err)
		}
	}
	b.ReportMetric(float64(n)*float64(b.N)/b.Elapsed().Seconds(), "agents/s")
}

func BenchmarkStepNaive(b *testing.B) {
	for _, n := range []int{1000, 5000} {
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) { benchmarkStrategy(b, config.StrategyNaive, n) })
	}
}

func BenchmarkStepScattered(b *testing.B) {
	for _, n := range []int{5000, 50_000} {
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) { benchmarkStrategy(b, config.StrategyScattered, n) })
	}
}

func BenchmarkStepCoherent(b *testing.B) {
	for _, n := range []int{5000, 50_000} {
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) { benchmarkStrategy(b, config.StrategyCoherent, n) })
	}
}
