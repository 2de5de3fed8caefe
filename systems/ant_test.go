package systems

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/ecotope/components"
)

func TestAnt_DeliversFoodAtNest(t *testing.T) {
	ctx, _ := newTestContext(t, 1)
	ant := spawn(ctx, components.SpeciesAnt, 12, 0, -1, 0)
	ant.Ant.Nest = r2.Vec{}
	ant.Ant.HasFood = true
	setAgents(ctx, ant)
	before := ant.Energy

	out := StepAgent(ant, ctx)

	if !out.Delivered {
		t.Fatal("expected delivery within arrival radius")
	}
	if ant.Ant.HasFood {
		t.Error("hasFood should be cleared on delivery")
	}
	if !ant.Ant.InsideNest || ant.Ant.RestTimer != ctx.Cfg.Ant.RestTicks {
		t.Errorf("ant should rest inside nest: inside=%v timer=%d", ant.Ant.InsideNest, ant.Ant.RestTimer)
	}
	if ant.Energy <= before {
		t.Errorf("energy %f should be credited above %f", ant.Energy, before)
	}
}

func TestAnt_RestsThenLeavesNest(t *testing.T) {
	ctx, _ := newTestContext(t, 2)
	nest := r2.Vec{X: 100, Y: 100}
	ant := NewAnt(ctx, nest, nest, DefaultGene(ctx.Species(components.SpeciesAnt)))
	ant.Ant.InsideNest = true
	ant.Ant.RestTimer = 2
	setAgents(ctx, ant)

	for i := 0; i < 2; i++ {
		StepAgent(ant, ctx)
		if !ant.Ant.InsideNest {
			t.Fatalf("left nest after %d ticks, rest timer not honored", i+1)
		}
		if ant.Pos != nest {
			t.Fatal("resting ant moved")
		}
	}

	StepAgent(ant, ctx)
	if ant.Ant.InsideNest {
		t.Fatal("ant should leave once rest timer expires")
	}
	if d := distance(ant.Pos, nest); math.Abs(d-ctx.Cfg.Ant.ExitRadius) > 1e-9 {
		t.Errorf("exit distance = %f, want %f", d, ctx.Cfg.Ant.ExitRadius)
	}
	out := r2.Sub(ant.Pos, nest)
	if r2.Dot(out, ant.Vel) <= 0 {
		t.Error("exit velocity should point outward")
	}
}

func TestAnt_FleesFromPredator(t *testing.T) {
	ctx, _ := newTestContext(t, 3)
	ant := spawn(ctx, components.SpeciesAnt, 0, 0, 1, 0)
	ant.Ant.Nest = r2.Vec{X: 500, Y: 500}
	anteater := spawn(ctx, components.SpeciesAnteater, 20, 0, 1, 0)
	setAgents(ctx, ant, anteater)

	StepAgent(ant, ctx)

	if ant.Ant.FleeTimer != ctx.Cfg.Ant.FleeTicks-1 {
		t.Errorf("flee timer = %d, want %d", ant.Ant.FleeTimer, ctx.Cfg.Ant.FleeTicks-1)
	}
	if ant.Pos.X >= 0 {
		t.Errorf("ant moved toward predator: x = %f", ant.Pos.X)
	}
}

func TestAnt_PicksUpFood(t *testing.T) {
	ctx, food := newTestContext(t, 4)
	ant := spawn(ctx, components.SpeciesAnt, 0, 0, 1, 0)
	ant.Ant.Nest = r2.Vec{X: 500, Y: 500}
	food.add(1, 0)
	setAgents(ctx, ant)

	out := StepAgent(ant, ctx)

	if !out.PickedUp || !ant.Ant.HasFood {
		t.Fatal("ant should pick up adjacent food")
	}
	if len(food.items) != 0 {
		t.Error("picked food should be removed from the world")
	}
	if ant.Vel.X >= 0 {
		t.Error("velocity should reverse after pickup")
	}
}

func TestAnt_DepositsOnlyWhileCarrying(t *testing.T) {
	tests := []struct {
		name    string
		hasFood bool
		x       float64
		want    bool
	}{
		{"carrying far from nest", true, 100, true},
		{"carrying near nest", true, 25, false},
		{"not carrying", false, 100, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := newTestContext(t, 5)
			ant := spawn(ctx, components.SpeciesAnt, tt.x, 0, -1, 0)
			ant.Ant.Nest = r2.Vec{}
			ant.Ant.HasFood = tt.hasFood
			setAgents(ctx, ant)

			StepAgent(ant, ctx)

			if got := ctx.Field.Len() > 0; got != tt.want {
				t.Errorf("deposited = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAnt_DepositsAreBuffered(t *testing.T) {
	ctx, _ := newTestContext(t, 6)
	ctx.Deposits = NewDepositBuffer(ctx.Field)
	ant := spawn(ctx, components.SpeciesAnt, 100, 0, -1, 0)
	ant.Ant.Nest = r2.Vec{}
	ant.Ant.HasFood = true
	setAgents(ctx, ant)

	StepAgent(ant, ctx)

	if ctx.Field.Len() != 0 || ctx.Deposits.Pending() != 1 {
		t.Fatalf("field=%d pending=%d, want 0 and 1", ctx.Field.Len(), ctx.Deposits.Pending())
	}
	ctx.Deposits.Flush()
	want := ctx.Cfg.Pheromone.Deposit * ctx.Cfg.Ant.DepositMultiplier
	if got := ctx.Field.Strength(ant.Pos.X, ant.Pos.Y); got != want {
		t.Errorf("strength = %f, want %f", got, want)
	}
}

func TestAnt_FollowsPheromoneAwayFromNest(t *testing.T) {
	ctx, _ := newTestContext(t, 7)
	ant := spawn(ctx, components.SpeciesAnt, 305, 305, 0, 1)
	ant.Ant.Nest = r2.Vec{}
	setAgents(ctx, ant)

	// A single strong cell to the east of the ant.
	ctx.Field.Deposit(325, 305, 100)

	StepAgent(ant, ctx)

	if ant.Vel.X <= 0 {
		t.Errorf("ant should turn toward the trail, vel = %v", ant.Vel)
	}
}

func TestAnt_SeparationSpreadsCrowd(t *testing.T) {
	ctx, _ := newTestContext(t, 8)
	nest := r2.Vec{X: 1000, Y: 1000}
	a := spawn(ctx, components.SpeciesAnt, 0, 0, 0, 1)
	b := spawn(ctx, components.SpeciesAnt, 3, 0, 0, 1)
	a.Ant.Nest, b.Ant.Nest = nest, nest
	setAgents(ctx, a, b)

	before := distance(a.Pos, b.Pos)
	StepAgent(a, ctx)
	StepAgent(b, ctx)

	if after := distance(a.Pos, b.Pos); after <= before {
		t.Errorf("crowded ants did not separate: %f -> %f", before, after)
	}
}

func TestAnt_IgnoresPheromoneNearNest(t *testing.T) {
	tests := []struct {
		name       string
		nest       r2.Vec
		wantFollow bool
	}{
		{"inside nest buffer", r2.Vec{X: 5, Y: 5}, false},
		{"beyond nest buffer", r2.Vec{X: 1000, Y: 1000}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := newTestContext(t, 9)
			ant := spawn(ctx, components.SpeciesAnt, 45, 5, 0, 1)
			ant.Ant.Nest = tt.nest
			setAgents(ctx, ant)

			// Strong cell two columns east of the ant.
			ctx.Field.Deposit(65, 5, 100)

			StepAgent(ant, ctx)

			// Wandering turns at most WanderTurn/2 away from straight +y.
			maxWander := math.Sin(ctx.Cfg.Ant.WanderTurn / 2)
			followed := ant.Vel.X > maxWander+1e-9
			if followed != tt.wantFollow {
				t.Errorf("followed trail = %v (vel %v), want %v", followed, ant.Vel, tt.wantFollow)
			}
		})
	}
}

func TestAnt_HungryAntReturnsHomeWithoutDelivery(t *testing.T) {
	ctx, _ := newTestContext(t, 10)
	ant := spawn(ctx, components.SpeciesAnt, 10, 0, -1, 0)
	ant.Ant.Nest = r2.Vec{}
	ant.Energy = ctx.lowEnergy() / 2
	setAgents(ctx, ant)
	before := ant.Energy

	out := StepAgent(ant, ctx)

	if out.Delivered {
		t.Error("empty-handed ant credited a delivery")
	}
	if !ant.Ant.InsideNest || ant.Ant.RestTimer != ctx.Cfg.Ant.RestTicks {
		t.Errorf("hungry ant should rest inside nest: inside=%v timer=%d", ant.Ant.InsideNest, ant.Ant.RestTimer)
	}
	if ant.Energy >= before {
		t.Errorf("energy %f credited without food (was %f)", ant.Energy, before)
	}
}

func TestAnt_HungryAntTurnsHome(t *testing.T) {
	ctx, _ := newTestContext(t, 11)
	ant := spawn(ctx, components.SpeciesAnt, 200, 0, 0, 1)
	ant.Ant.Nest = r2.Vec{}
	ant.Energy = ctx.lowEnergy() / 2
	setAgents(ctx, ant)

	StepAgent(ant, ctx)

	if ant.Vel.X >= 0 {
		t.Errorf("hungry ant should turn toward its nest, vel = %v", ant.Vel)
	}
	if ant.Ant.InsideNest {
		t.Error("ant entered a nest 200 units away")
	}
}
