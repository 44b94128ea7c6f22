package main

import (
	"flag"
	"fmt"
	"log"

	"lithos/internal/sims/lithosphere"
)

// erosion-sweep runs headless simulations across a range of erosion periods
// and seeds and reports how the surface settles, for tuning the defaults.
func main() {
	width := flag.Int("w", 128, "world width")
	height := flag.Int("h", 128, "world height")
	ticks := flag.Int("ticks", 300, "ticks to simulate per run")
	seeds := flag.Int("seeds", 3, "seeds per erosion period")
	flag.Parse()

	periods := []int{0, 15, 30, 60, 120}

	fmt.Printf("%-8s %-6s %-12s %-12s %-10s\n", "period", "seed", "land", "mass", "meanSpeed")
	for _, period := range periods {
		for seed := int64(1); seed <= int64(*seeds); seed++ {
			cfg := lithosphere.DefaultConfig()
			cfg.Width = *width
			cfg.Height = *height
			cfg.Seed = seed
			cfg.Params.ErosionPeriod = period

			world := lithosphere.NewWithConfig(cfg)
			world.Reset(seed)
			for i := 0; i < *ticks; i++ {
				world.Step()
			}
			if err := world.Err(); err != nil {
				log.Printf("period %d seed %d: %v", period, seed, err)
				continue
			}

			mass := 0.0
			for _, p := range world.Plates() {
				mass += p.Mass()
			}
			_, speed := world.PlateStats()
			fmt.Printf("%-8d %-6d %-12.4f %-12.1f %-10.4f\n",
				period, seed, world.LandFraction(), mass, speed)
		}
	}
}
