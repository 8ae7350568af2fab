package services

import (
	"log"
	"math/rand"
	"time"

	"github.com/erabhijeetghosh28-lab/spinner-sub001/models"

	"gorm.io/gorm"
)

// SpinOutcome is the resolved result of one wheel draw. A nil Prize is the
// "try again" outcome, a valid terminal state rather than an error.
type SpinOutcome struct {
	Prize    *models.Prize
	WonPrize bool
	Message  string
}

const maxReservationRerolls = 3

// PickPrize walks the cumulative weights over prizes sorted by position and
// returns the prize whose range contains the draw, or nil for the implicit
// "try again" bucket. u must be uniform in [0,1).
//
// When the weights sum below 100 the remainder is the try-again bucket; at or
// above 100 the weights act as proportional shares and try-again disappears.
func PickPrize(prizes []models.Prize, u float64) *models.Prize {
	total := 0.0
	for _, p := range prizes {
		total += float64(p.Probability)
	}
	if total <= 0 {
		return nil
	}

	span := total
	if span < 100 {
		span = 100
	}

	draw := u * span
	acc := 0.0
	for i := range prizes {
		acc += float64(prizes[i].Probability)
		if draw < acc {
			return &prizes[i]
		}
	}
	return nil
}

// dayOf truncates to a calendar date for daily-limit bookkeeping.
func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// dailyExhausted reports whether the prize's daily limit is already spent today.
func dailyExhausted(p models.Prize, today time.Time) bool {
	if p.DailyLimit == 0 {
		return false
	}
	if p.DailyAwardedDate == nil || p.DailyAwardedDate.Before(today) {
		return false
	}
	return p.DailyAwarded >= p.DailyLimit
}

// reservePrize atomically claims one unit of the prize's daily limit and
// stock with a single conditional UPDATE; RowsAffected tells us whether we
// won the race. GORM writes map assignments in alphabetical column order, so
// daily_awarded is assigned before daily_awarded_date and its CASE still
// reads the pre-update date.
func reservePrize(db *gorm.DB, prizeID uint, today time.Time) (bool, error) {
	res := db.Model(&models.Prize{}).
		Where("id = ? AND is_active = ?", prizeID, true).
		Where("(current_stock IS NULL OR current_stock > 0)").
		Where("(daily_limit = 0 OR daily_awarded_date IS NULL OR daily_awarded_date < ? OR daily_awarded < daily_limit)", today).
		Updates(map[string]interface{}{
			"current_stock":      gorm.Expr("CASE WHEN current_stock IS NULL THEN NULL ELSE current_stock - 1 END"),
			"daily_awarded":      gorm.Expr("CASE WHEN daily_awarded_date IS NULL OR daily_awarded_date < ? THEN 1 ELSE daily_awarded + 1 END", today),
			"daily_awarded_date": today,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// SelectPrize draws a weighted-random outcome among the campaign's eligible
// prizes and reserves the winner's daily-limit/stock slot. A lost reservation
// race re-rolls among the remaining prizes, bounded, then falls back to
// "try again"; a race is never surfaced to the customer as an error.
func SelectPrize(db *gorm.DB, campaignID uint) (*SpinOutcome, error) {
	now := time.Now()
	today := dayOf(now)

	var prizes []models.Prize
	if err := db.Where("campaign_id = ? AND is_active = ?", campaignID, true).
		Order("position ASC, id ASC").
		Find(&prizes).Error; err != nil {
		return nil, err
	}

	// Drop prizes that cannot win anymore today.
	eligible := prizes[:0]
	for _, p := range prizes {
		if p.CurrentStock != nil && *p.CurrentStock <= 0 {
			continue
		}
		if dailyExhausted(p, today) {
			continue
		}
		eligible = append(eligible, p)
	}

	for attempt := 0; attempt < maxReservationRerolls && len(eligible) > 0; attempt++ {
		hit := PickPrize(eligible, rand.Float64())
		if hit == nil {
			return tryAgainOutcome(eligible), nil
		}
		prize := *hit // copy before the slice is rebuilt below

		ok, err := reservePrize(db, prize.ID, today)
		if err != nil {
			return nil, err
		}
		if ok {
			warnLowStock(prize)
			return &SpinOutcome{Prize: &prize, WonPrize: true}, nil
		}

		// Lost the race; retry without this prize.
		next := eligible[:0]
		for _, p := range eligible {
			if p.ID != prize.ID {
				next = append(next, p)
			}
		}
		eligible = next
	}

	return tryAgainOutcome(eligible), nil
}

func tryAgainOutcome(eligible []models.Prize) *SpinOutcome {
	out := &SpinOutcome{WonPrize: false, Message: "Belum beruntung, coba lagi ya!"}
	for _, p := range eligible {
		if p.ShowTryAgainMessage && p.TryAgainMessage != nil && *p.TryAgainMessage != "" {
			out.Message = *p.TryAgainMessage
			break
		}
	}
	return out
}

func warnLowStock(p models.Prize) {
	if p.CurrentStock == nil || p.LowStockAlert == nil {
		return
	}
	remaining := *p.CurrentStock - 1
	if remaining <= *p.LowStockAlert {
		log.Printf("[selector] low stock: prize_id=%d name=%q remaining=%d threshold=%d", p.ID, p.Name, remaining, *p.LowStockAlert)
	}
}
