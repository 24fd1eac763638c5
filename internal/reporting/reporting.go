// Package reporting computes the time-windowed aggregates behind the
// dashboard and reminder views. Every function is a pure read over the
// current data: nothing is cached, and an empty dataset yields zeros.
// Windows are anchored on the server's local calendar date.
package reporting

import (
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/tailorledger/internal/models"
)

// UrgentCap bounds the overdue list; rendering hundreds of overdue rows on
// a dashboard helps nobody.
const UrgentCap = 50

// UpcomingDisplay is how many upcoming deliveries the dashboard shows.
const UpcomingDisplay = 5

// TopCustomersLimit is the length of the ranked customer list.
const TopCustomersLimit = 5

// TrendMonths is how many calendar months the customer trend covers.
const TrendMonths = 6

type Engine struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Engine { return &Engine{db: db} }

// Stats is the dashboard counter block.
type Stats struct {
	TotalCustomers    int64   `json:"total_customers"`
	CustomersThisWeek int64   `json:"customers_this_week"`
	CustomersToday    int64   `json:"today_customers"`
	TodayVsYesterday  int64   `json:"today_vs_yesterday"`
	PendingBalance    float64 `json:"pending_balance"`
	BalanceAddedToday float64 `json:"balance_added"`
	TotalRevenue      float64 `json:"total_revenue"`
	MonthlyCustomers  int64   `json:"monthly_customers"`
	MonthlyPending    float64 `json:"monthly_pending"`
	MonthlyRevenue    float64 `json:"monthly_revenue"`
	YearlyCustomers   int64   `json:"yearly_customers"`
	YearlyRevenue     float64 `json:"yearly_revenue"`
	PendingDelivery   int64   `json:"pending_delivery"`
	DeliveryToday     int64   `json:"delivery_today"`
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func yearStart(t time.Time) time.Time {
	return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, t.Location())
}

// Stats computes the full counter block against now's calendar date.
func (e *Engine) Stats(now time.Time) (Stats, error) {
	var s Stats
	today := dayStart(now)
	tomorrow := today.AddDate(0, 0, 1)
	yesterday := today.AddDate(0, 0, -1)
	weekStart := today.AddDate(0, 0, -7)
	mStart := monthStart(now)
	yStart := yearStart(now)

	steps := []func() error{
		func() error {
			return e.db.Model(&models.Customer{}).Count(&s.TotalCustomers).Error
		},
		func() error {
			return e.db.Model(&models.Customer{}).Where("last_visit >= ?", weekStart).Count(&s.CustomersThisWeek).Error
		},
		func() error {
			return e.db.Model(&models.Customer{}).Where("last_visit >= ? AND last_visit < ?", today, tomorrow).Count(&s.CustomersToday).Error
		},
		func() error {
			var n int64
			if err := e.db.Model(&models.Customer{}).Where("last_visit >= ? AND last_visit < ?", yesterday, today).Count(&n).Error; err != nil {
				return err
			}
			s.TodayVsYesterday = s.CustomersToday - n
			return nil
		},
		func() error {
			return e.sumOrders(&s.PendingBalance, "balance", nil)
		},
		func() error {
			return e.sumOrders(&s.BalanceAddedToday, "total_amt", func(q *gorm.DB) *gorm.DB {
				return q.Where("created_at >= ? AND created_at < ?", today, tomorrow)
			})
		},
		func() error {
			return e.sumOrders(&s.TotalRevenue, "total_amt", nil)
		},
		func() error {
			return e.db.Model(&models.Customer{}).Where("created_date >= ?", mStart).Count(&s.MonthlyCustomers).Error
		},
		func() error {
			return e.sumOrders(&s.MonthlyPending, "balance", func(q *gorm.DB) *gorm.DB {
				return q.Where("created_at >= ?", mStart)
			})
		},
		func() error {
			return e.sumOrders(&s.MonthlyRevenue, "total_amt", func(q *gorm.DB) *gorm.DB {
				return q.Where("created_at >= ?", mStart)
			})
		},
		func() error {
			return e.db.Model(&models.Customer{}).Where("created_date >= ?", yStart).Count(&s.YearlyCustomers).Error
		},
		func() error {
			return e.sumOrders(&s.YearlyRevenue, "total_amt", func(q *gorm.DB) *gorm.DB {
				return q.Where("created_at >= ?", yStart)
			})
		},
		func() error {
			return e.db.Model(&models.Order{}).Where("work_status <> ?", models.WorkDelivered).Count(&s.PendingDelivery).Error
		},
		func() error {
			return e.db.Model(&models.Order{}).
				Where("delivery_date >= ? AND delivery_date < ?", today, tomorrow).
				Where("work_status <> ?", models.WorkDelivered).
				Count(&s.DeliveryToday).Error
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return Stats{}, err
		}
	}
	return s, nil
}

func (e *Engine) sumOrders(dst *float64, column string, scope func(*gorm.DB) *gorm.DB) error {
	var out struct{ Total *float64 }
	q := e.db.Model(&models.Order{}).Select("SUM(" + column + ") AS total")
	if scope != nil {
		q = scope(q)
	}
	if err := q.Scan(&out).Error; err != nil {
		return err
	}
	if out.Total != nil {
		*dst = *out.Total
	}
	return nil
}

// TopCustomer is one row of the ranked spend list.
type TopCustomer struct {
	CustomerID uint    `json:"customer_id"`
	Name       string  `json:"name"`
	TotalSpend float64 `json:"total_spend"`
}

// TopCustomers ranks customers by lifetime order value, descending, ties
// broken by customer id ascending. Customers without orders are absent.
func (e *Engine) TopCustomers(limit int) ([]TopCustomer, error) {
	if limit <= 0 {
		limit = TopCustomersLimit
	}
	rows := make([]TopCustomer, 0, limit)
	err := e.db.Model(&models.Order{}).
		Select("orders.customer_id AS customer_id, customers.name AS name, SUM(orders.total_amt) AS total_spend").
		Joins("JOIN customers ON customers.id = orders.customer_id").
		Group("orders.customer_id, customers.name").
		Order("total_spend DESC, customer_id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// StatusHistogram counts orders per normalized work status. Legacy labels
// fold into their canonical bucket; anything unrecognized lands in Other.
func (e *Engine) StatusHistogram() (map[string]int64, error) {
	var rows []struct {
		WorkStatus string
		N          int64
	}
	err := e.db.Model(&models.Order{}).
		Select("work_status, COUNT(id) AS n").
		Group("work_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	hist := map[string]int64{
		models.WorkWorking:   0,
		models.WorkReady:     0,
		models.WorkDelivered: 0,
	}
	for _, row := range rows {
		key := NormalizeWorkStatus(row.WorkStatus)
		hist[key] += row.N
	}
	return hist, nil
}

// NormalizeWorkStatus folds legacy work-status labels into the canonical
// set, with "Other" for anything unrecognized.
func NormalizeWorkStatus(status string) string {
	switch status {
	case models.WorkWorking, "Pending", "Processing":
		return models.WorkWorking
	case models.WorkReady, "Ready":
		return models.WorkReady
	case models.WorkDelivered:
		return models.WorkDelivered
	default:
		return "Other"
	}
}

// UrgentDeliveries lists undelivered orders due today or overdue, oldest
// deadline first, capped at UrgentCap, with opening-balance rows excluded.
func (e *Engine) UrgentDeliveries(now time.Time) ([]models.Order, error) {
	endOfToday := dayStart(now).AddDate(0, 0, 1)
	var due []models.Order
	err := e.db.Preload("Customer").
		Where("delivery_date < ?", endOfToday).
		Where("work_status <> ?", models.WorkDelivered).
		Order("delivery_date ASC").
		Limit(UrgentCap).
		Find(&due).Error
	if err != nil {
		return nil, err
	}
	return excludeOpeningBalances(due, 0), nil
}

// UpcomingDeliveries lists undelivered orders due within (today, today+7],
// soonest first, trimmed to the display count after the sentinel filter.
func (e *Engine) UpcomingDeliveries(now time.Time) ([]models.Order, error) {
	endOfToday := dayStart(now).AddDate(0, 0, 1)
	horizon := endOfToday.AddDate(0, 0, 7)
	var due []models.Order
	err := e.db.Preload("Customer").
		Where("delivery_date >= ? AND delivery_date < ?", endOfToday, horizon).
		Where("work_status <> ?", models.WorkDelivered).
		Order("delivery_date ASC").
		Limit(20).
		Find(&due).Error
	if err != nil {
		return nil, err
	}
	return excludeOpeningBalances(due, UpcomingDisplay), nil
}

// TodaysOrders lists orders created today, newest first, without the
// opening-balance rows.
func (e *Engine) TodaysOrders(now time.Time) ([]models.Order, error) {
	today := dayStart(now)
	var orders []models.Order
	err := e.db.Preload("Customer").
		Where("created_at >= ? AND created_at < ?", today, today.AddDate(0, 0, 1)).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return excludeOpeningBalances(orders, 0), nil
}

func excludeOpeningBalances(orders []models.Order, keep int) []models.Order {
	kept := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if o.IsOpeningBalance() {
			continue
		}
		kept = append(kept, o)
		if keep > 0 && len(kept) == keep {
			break
		}
	}
	return kept
}

// TrendPoint is one month of the customer-creation series.
type TrendPoint struct {
	Label string `json:"label"` // month abbreviation, e.g. "Jan"
	Count int64  `json:"count"`
}

// MonthlyTrend counts customer creations per calendar month for the most
// recent TrendMonths months, oldest first. Grouping happens in Go so the
// query stays portable across sqlite and postgres.
func (e *Engine) MonthlyTrend(now time.Time) ([]TrendPoint, error) {
	first := monthStart(now).AddDate(0, -(TrendMonths - 1), 0)
	var created []time.Time
	err := e.db.Model(&models.Customer{}).
		Where("created_date >= ?", first).
		Pluck("created_date", &created).Error
	if err != nil {
		return nil, err
	}
	counts := map[string]int64{}
	for _, t := range created {
		counts[t.Format("2006-01")] += 1
	}
	points := make([]TrendPoint, 0, TrendMonths)
	for i := 0; i < TrendMonths; i++ {
		m := first.AddDate(0, i, 0)
		points = append(points, TrendPoint{
			Label: m.Format("Jan"),
			Count: counts[m.Format("2006-01")],
		})
	}
	return points, nil
}

// PendingPayments lists the largest outstanding balances, capped.
func (e *Engine) PendingPayments(limit int) ([]models.Order, error) {
	if limit <= 0 {
		limit = 10
	}
	var orders []models.Order
	err := e.db.Preload("Customer").
		Where("balance > 0").
		Order("balance DESC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// TomorrowsDeliveries lists undelivered orders due tomorrow.
func (e *Engine) TomorrowsDeliveries(now time.Time) ([]models.Order, error) {
	tomorrow := dayStart(now).AddDate(0, 0, 1)
	var orders []models.Order
	err := e.db.Preload("Customer").
		Where("delivery_date >= ? AND delivery_date < ?", tomorrow, tomorrow.AddDate(0, 0, 1)).
		Where("work_status <> ?", models.WorkDelivered).
		Order("delivery_date ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return excludeOpeningBalances(orders, 0), nil
}
