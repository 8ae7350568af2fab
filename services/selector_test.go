package services

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/erabhijeetghosh28-lab/spinner-sub001/models"
)

func prizeSet(weights ...uint) []models.Prize {
	prizes := make([]models.Prize, len(weights))
	for i, w := range weights {
		prizes[i] = models.Prize{ID: uint(i + 1), Position: uint(i), Probability: w}
	}
	return prizes
}

func TestPickPrize_FullDistribution(t *testing.T) {
	// Weights summing to exactly 100: empirical shares must land within ±2%
	// and the try-again bucket must never be hit.
	prizes := prizeSet(50, 30, 20)
	const draws = 100000

	rng := rand.New(rand.NewSource(42))
	counts := make(map[uint]int)
	tryAgain := 0
	for i := 0; i < draws; i++ {
		p := PickPrize(prizes, rng.Float64())
		if p == nil {
			tryAgain++
			continue
		}
		counts[p.ID]++
	}

	if tryAgain != 0 {
		t.Fatalf("expected zero try-again outcomes, got %d", tryAgain)
	}
	for i, want := range []float64{50, 30, 20} {
		got := float64(counts[uint(i+1)]) / draws * 100
		if math.Abs(got-want) > 2 {
			t.Fatalf("prize %d: expected ~%.0f%%, got %.2f%%", i+1, want, got)
		}
	}
}

func TestPickPrize_RemainderIsTryAgain(t *testing.T) {
	// 30+30 = 60 of 100: ~40% of draws fall into the implicit bucket.
	prizes := prizeSet(30, 30)
	const draws = 100000

	rng := rand.New(rand.NewSource(7))
	tryAgain := 0
	for i := 0; i < draws; i++ {
		if PickPrize(prizes, rng.Float64()) == nil {
			tryAgain++
		}
	}

	got := float64(tryAgain) / draws * 100
	if math.Abs(got-40) > 2 {
		t.Fatalf("expected ~40%% try-again, got %.2f%%", got)
	}
}

func TestPickPrize_NormalizesAbove100(t *testing.T) {
	// 150+150 = 300: proportional shares, no try-again bucket.
	prizes := prizeSet(150, 150)
	const draws = 50000

	rng := rand.New(rand.NewSource(99))
	first := 0
	for i := 0; i < draws; i++ {
		p := PickPrize(prizes, rng.Float64())
		if p == nil {
			t.Fatal("no try-again bucket when weights sum above 100")
		}
		if p.ID == 1 {
			first++
		}
	}

	got := float64(first) / draws * 100
	if math.Abs(got-50) > 2 {
		t.Fatalf("expected ~50%% for first prize, got %.2f%%", got)
	}
}

func TestPickPrize_StableOrder(t *testing.T) {
	// Equal weights: the draw at the boundary goes to the lower position.
	prizes := prizeSet(50, 50)
	if p := PickPrize(prizes, 0.0); p == nil || p.ID != 1 {
		t.Fatalf("draw 0 should hit the first prize, got %+v", p)
	}
	if p := PickPrize(prizes, 0.499); p == nil || p.ID != 1 {
		t.Fatalf("draw below the boundary should hit the first prize, got %+v", p)
	}
	if p := PickPrize(prizes, 0.5); p == nil || p.ID != 2 {
		t.Fatalf("draw at the boundary should hit the second prize, got %+v", p)
	}
}

func TestPickPrize_EmptyPool(t *testing.T) {
	if p := PickPrize(nil, 0.3); p != nil {
		t.Fatalf("empty pool must resolve to try again, got %+v", p)
	}
	if p := PickPrize(prizeSet(0, 0), 0.3); p != nil {
		t.Fatalf("zero-weight pool must resolve to try again, got %+v", p)
	}
}

func TestDailyExhausted(t *testing.T) {
	today := dayOf(time.Now())
	yesterday := today.AddDate(0, 0, -1)

	unlimited := models.Prize{DailyLimit: 0, DailyAwarded: 999, DailyAwardedDate: &today}
	if dailyExhausted(unlimited, today) {
		t.Fatal("zero daily limit means unlimited")
	}

	spent := models.Prize{DailyLimit: 2, DailyAwarded: 2, DailyAwardedDate: &today}
	if !dailyExhausted(spent, today) {
		t.Fatal("limit reached today should be exhausted")
	}

	stale := models.Prize{DailyLimit: 2, DailyAwarded: 2, DailyAwardedDate: &yesterday}
	if dailyExhausted(stale, today) {
		t.Fatal("yesterday's counter must not block today")
	}

	fresh := models.Prize{DailyLimit: 2, DailyAwarded: 0}
	if dailyExhausted(fresh, today) {
		t.Fatal("untouched counter should not be exhausted")
	}
}
