package metrics

import "testing"

func TestNewRegistersAllMetrics(t *testing.T) {
	r := New("satpg_test")

	r.DecisionsTotal.Inc()
	r.BacktracksTotal.Add(3)
	r.DetectedTotal.Inc()
	r.UntestableTotal.Inc()
	r.UndeterminedTotal.Inc()
	r.PatternsTotal.Inc()
	r.WSAGauge.Set(0.5)
	r.CoverageGauge.Set(0.9)

	families, err := r.Gatherer().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if len(families) != 8 {
		t.Fatalf("expected 8 registered metric families, got %d", len(families))
	}
}

func TestTwoRegistriesDoNotCollide(t *testing.T) {
	a := New("satpg_a")
	b := New("satpg_b")

	a.DecisionsTotal.Inc()
	b.DecisionsTotal.Inc()
	b.DecisionsTotal.Inc()

	famA, err := a.Gatherer().Gather()
	if err != nil {
		t.Fatalf("Gather a: %v", err)
	}
	famB, err := b.Gatherer().Gather()
	if err != nil {
		t.Fatalf("Gather b: %v", err)
	}
	if len(famA) != 8 || len(famB) != 8 {
		t.Fatalf("expected independent registries each with 8 families, got %d and %d", len(famA), len(famB))
	}
}
