package analytics

import (
	"combinepulse/pkg/contracts/domain"
)

type playerOpt func(*domain.PlayerRecord)

func withTest(test domain.Test, v float64) playerOpt {
	return func(r *domain.PlayerRecord) {
		val := domain.Float(v)
		switch test {
		case domain.TestForty:
			r.Forty = val
		case domain.TestShuttle:
			r.Shuttle = val
		case domain.TestCone:
			r.Cone = val
		case domain.TestVertical:
			r.Vertical = val
		case domain.TestBenchReps:
			r.BenchReps = val
		}
	}
}

func withoutPick() playerOpt {
	return func(r *domain.PlayerRecord) { r.Pick = nil }
}

func withoutWeight() playerOpt {
	return func(r *domain.PlayerRecord) { r.Weight = nil }
}

func player(name string, pos domain.Position, round, pick int, opts ...playerOpt) domain.PlayerRecord {
	r := domain.PlayerRecord{
		Name:     name,
		Position: string(pos),
		Height:   domain.Float(74),
		Weight:   domain.Float(215),
		Team:     "Team",
		Year:     2010,
		Round:    domain.Int(round),
		Pick:     domain.Int(pick),
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// completeWR returns a wide receiver with all three designated tests
func completeWR(name string, round, pick int, forty, shuttle, vertical float64) domain.PlayerRecord {
	return player(name, domain.PositionWR, round, pick,
		withTest(domain.TestForty, forty),
		withTest(domain.TestShuttle, shuttle),
		withTest(domain.TestVertical, vertical),
	)
}

func mustProject(records []domain.PlayerRecord, pos domain.Position) *Table {
	t, err := Project(records, pos)
	if err != nil {
		panic(err)
	}
	return t
}
