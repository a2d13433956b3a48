package service

import (
	"context"
	"fmt"
	"time"

	"github.com/navafv/digital-thread-tailor-app/internal/apperr"
	"github.com/navafv/digital-thread-tailor-app/internal/model"
	"github.com/navafv/digital-thread-tailor-app/prometheus"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// DashboardOptions sets the reporting windows. Zero values use the defaults.
type DashboardOptions struct {
	HorizonDays int
	TrendMonths int
}

const (
	DefaultHorizonDays = 7
	DefaultTrendMonths = 6

	// Upper bounds on caller-supplied windows. The revenue series allocates
	// one point per month.
	MaxHorizonDays = 366
	MaxTrendMonths = 120
)

func (o DashboardOptions) withDefaults() DashboardOptions {
	if o.HorizonDays <= 0 {
		o.HorizonDays = DefaultHorizonDays
	}
	if o.TrendMonths <= 0 {
		o.TrendMonths = DefaultTrendMonths
	}
	return o
}

func (o DashboardOptions) validate() error {
	if o.HorizonDays > MaxHorizonDays {
		return apperr.Invalid("horizon_days", "must be at most %d", MaxHorizonDays)
	}
	if o.TrendMonths > MaxTrendMonths {
		return apperr.Invalid("months", "must be at most %d", MaxTrendMonths)
	}
	return nil
}

// RevenuePoint is one month of completed-order revenue
type RevenuePoint struct {
	Month   string          `json:"month"`
	Year    int             `json:"year"`
	Revenue decimal.Decimal `json:"revenue"`
}

// Dashboard is the tailor's overview, computed on demand
type Dashboard struct {
	TotalCustomers       int64                 `json:"total_customers"`
	ActiveOrderCount     int                   `json:"active_order_count"`
	PendingOrderCount    int                   `json:"pending_order_count"`
	CompletedThisMonth   int                   `json:"completed_this_month"`
	OutstandingRevenue   decimal.Decimal       `json:"outstanding_revenue"`
	UpcomingDeadlines    []model.Order         `json:"upcoming_deadlines"`
	LowStockItems        []model.InventoryItem `json:"low_stock_items"`
	MonthlyRevenueSeries []RevenuePoint        `json:"monthly_revenue_series"`
	PendingRequests      []model.Appointment   `json:"pending_requests"`
}

// CalendarEvent is one entry of the tailor's calendar feed
type CalendarEvent struct {
	Title           string     `json:"title"`
	Start           time.Time  `json:"start"`
	End             *time.Time `json:"end,omitempty"`
	AllDay          bool       `json:"allDay"`
	BackgroundColor string     `json:"backgroundColor"`
	BorderColor     string     `json:"borderColor"`
	Kind            string     `json:"kind"`
	RefID           uint       `json:"ref_id"`
	Notes           string     `json:"notes,omitempty"`
}

// Calendar colours
const (
	colorDeadline  = "#dc3545"
	colorConfirmed = "#0d6efd"
	colorRequested = "#ffc107"
	colorInactive  = "#6c757d"
)

// DashboardService computes read-side aggregates over a tenant's data
type DashboardService struct {
	base
}

// NewDashboardService creates a dashboard service backed by db
func NewDashboardService(db *gorm.DB, opts ...Option) *DashboardService {
	return &DashboardService{base: newBase(db, opts)}
}

// ComputeDashboard runs the independent dashboard queries concurrently and
// derives the counts and series from their results
func (s *DashboardService) ComputeDashboard(ctx context.Context, who model.Identity, opts DashboardOptions) (*Dashboard, error) {
	tenantID, err := tailorScope(who)
	if err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	defer prometheus.TrackDBOperation("dashboard")(time.Now())

	now := s.clock()
	var (
		totalCustomers int64
		active         []model.Order
		completed      []model.Order
		lowStock       []model.InventoryItem
		requests       []model.Appointment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.conn(gctx).Model(&model.Customer{}).Where("tailor_id = ?", tenantID).Count(&totalCustomers).Error; err != nil {
			return fmt.Errorf("count customers: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		active, err = activeOrders(s.conn(gctx), tenantID)
		return err
	})
	g.Go(func() error {
		var err error
		completed, err = completedOrders(s.conn(gctx), tenantID)
		return err
	})
	g.Go(func() error {
		var err error
		lowStock, err = lowStockItems(s.conn(gctx), tenantID)
		return err
	})
	g.Go(func() error {
		requests = []model.Appointment{}
		if err := s.conn(gctx).Preload("Customer").
			Where("tailor_id = ? AND status = ?", tenantID, string(model.AppointmentRequested)).
			Order("start_time ASC").
			Find(&requests).Error; err != nil {
			return fmt.Errorf("pending requests: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	d := &Dashboard{
		TotalCustomers:       totalCustomers,
		ActiveOrderCount:     len(active),
		OutstandingRevenue:   outstandingRevenue(active),
		UpcomingDeadlines:    upcomingDeadlines(active, now, opts.HorizonDays),
		LowStockItems:        lowStock,
		MonthlyRevenueSeries: revenueSeries(completed, now, opts.TrendMonths),
		PendingRequests:      requests,
	}
	for _, o := range active {
		if o.Status == model.OrderPending {
			d.PendingOrderCount++
		}
	}
	monthStart := firstOfMonth(now)
	for _, o := range completed {
		if !completionTime(o).Before(monthStart) {
			d.CompletedThisMonth++
		}
	}
	return d, nil
}

// MonthlyRevenue returns the trailing revenue series on its own, for charts
func (s *DashboardService) MonthlyRevenue(ctx context.Context, who model.Identity, months int) ([]RevenuePoint, error) {
	tenantID, err := tailorScope(who)
	if err != nil {
		return nil, err
	}
	if months <= 0 {
		months = DefaultTrendMonths
	}
	if months > MaxTrendMonths {
		return nil, apperr.Invalid("months", "must be at most %d", MaxTrendMonths)
	}
	completed, err := completedOrders(s.conn(ctx), tenantID)
	if err != nil {
		return nil, err
	}
	return revenueSeries(completed, s.clock(), months), nil
}

// CalendarEvents lists order due dates and appointments as calendar entries
func (s *DashboardService) CalendarEvents(ctx context.Context, who model.Identity) ([]CalendarEvent, error) {
	tenantID, err := tailorScope(who)
	if err != nil {
		return nil, err
	}
	defer prometheus.TrackDBOperation("calendar")(time.Now())

	var orders []model.Order
	if err := s.conn(ctx).Where("tailor_id = ?", tenantID).Order("due_date ASC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("calendar orders: %w", err)
	}
	var appointments []model.Appointment
	if err := s.conn(ctx).Where("tailor_id = ?", tenantID).Order("start_time ASC").Find(&appointments).Error; err != nil {
		return nil, fmt.Errorf("calendar appointments: %w", err)
	}

	events := make([]CalendarEvent, 0, len(orders)+len(appointments))
	for _, o := range orders {
		events = append(events, CalendarEvent{
			Title:           "Due: " + o.Item,
			Start:           o.DueDate,
			AllDay:          true,
			BackgroundColor: colorDeadline,
			BorderColor:     colorDeadline,
			Kind:            "order",
			RefID:           o.ID,
		})
	}
	for _, a := range appointments {
		end := a.EndTime
		color := appointmentColor(a.Status)
		events = append(events, CalendarEvent{
			Title:           a.Title,
			Start:           a.StartTime,
			End:             &end,
			BackgroundColor: color,
			BorderColor:     color,
			Kind:            "appointment",
			RefID:           a.ID,
			Notes:           a.Notes,
		})
	}
	return events, nil
}

func appointmentColor(status model.AppointmentStatus) string {
	switch status {
	case model.AppointmentConfirmed:
		return colorConfirmed
	case model.AppointmentRequested:
		return colorRequested
	case model.AppointmentCancelled, model.AppointmentCompleted:
		return colorInactive
	default:
		return colorInactive
	}
}

func activeOrders(db *gorm.DB, tenantID uint) ([]model.Order, error) {
	var orders []model.Order
	if err := db.Preload("Customer").
		Where("tailor_id = ? AND status NOT IN ?", tenantID, model.TerminalOrderStatuses()).
		Order("due_date ASC").
		Order("id ASC").
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("active orders: %w", err)
	}
	return orders, nil
}

func completedOrders(db *gorm.DB, tenantID uint) ([]model.Order, error) {
	var orders []model.Order
	if err := db.Where("tailor_id = ? AND status = ?", tenantID, string(model.OrderCompleted)).
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("completed orders: %w", err)
	}
	return orders, nil
}

func outstandingRevenue(active []model.Order) decimal.Decimal {
	total := decimal.Zero
	for _, o := range active {
		total = total.Add(o.BalanceDue())
	}
	return total
}

// upcomingDeadlines keeps orders due between today and today+horizonDays
// inclusive. active is already sorted by due date.
func upcomingDeadlines(active []model.Order, now time.Time, horizonDays int) []model.Order {
	today := dateOnly(now)
	limit := today.AddDate(0, 0, horizonDays)
	out := []model.Order{}
	for _, o := range active {
		due := dateOnly(o.DueDate)
		if due.Before(today) || due.After(limit) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// revenueSeries buckets completed orders by completion month over the
// trailing months (current month last). Empty months report zero.
func revenueSeries(completed []model.Order, now time.Time, months int) []RevenuePoint {
	start := firstOfMonth(now).AddDate(0, -(months - 1), 0)
	series := make([]RevenuePoint, months)
	for i := range series {
		m := start.AddDate(0, i, 0)
		series[i] = RevenuePoint{Month: m.Month().String(), Year: m.Year(), Revenue: decimal.Zero}
	}
	for _, o := range completed {
		at := completionTime(o).UTC()
		idx := (at.Year()-start.Year())*12 + int(at.Month()) - int(start.Month())
		if idx < 0 || idx >= months {
			continue
		}
		series[idx].Revenue = series[idx].Revenue.Add(o.Price)
	}
	return series
}

// completionTime falls back to the last update for orders completed
// before completed_at was tracked
func completionTime(o model.Order) time.Time {
	if o.CompletedAt != nil {
		return *o.CompletedAt
	}
	return o.UpdatedAt
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
