package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTP metrics
var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tailor_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tailor_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// StatusCategoryCounter counts responses by 2xx/4xx/5xx
	StatusCategoryCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tailor_http_status_category_total",
			Help: "Total number of responses by status category (2xx, 4xx, 5xx)",
		},
		[]string{"category", "method", "path"},
	)
)

// Auth metrics
var (
	LoginCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tailor_login_total",
			Help: "Total number of login attempts by outcome",
		},
		[]string{"outcome"},
	)

	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tailor_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"}, // missing_token, invalid_token, wrong_role, ...
	)
)

// Domain metrics
var (
	// OperationCounter counts tenant operations by resource and action
	OperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tailor_operations_total",
			Help: "Total number of tenant operations",
		},
		[]string{"resource", "operation"},
	)

	// TenantErrorCounter counts rejected operations by tenant and error kind
	TenantErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tailor_tenant_errors_total",
			Help: "Total number of rejected tenant operations",
		},
		[]string{"tenant_id", "error_type"},
	)

	TemplatesAppliedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tailor_templates_applied_total",
			Help: "Total number of workflow templates applied to orders",
		},
	)

	TasksCreatedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tailor_order_tasks_created_total",
			Help: "Total number of order tasks created from templates",
		},
	)

	TaskToggleCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tailor_task_toggles_total",
			Help: "Total number of task completion changes",
		},
		[]string{"completed"},
	)

	OrdersAutoCompletedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tailor_orders_auto_completed_total",
			Help: "Total number of orders marked Completed because all their tasks were done",
		},
	)

	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tailor_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

func init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(StatusCategoryCounter)

	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(AuthErrorCounter)

	prometheus.MustRegister(OperationCounter)
	prometheus.MustRegister(TenantErrorCounter)
	prometheus.MustRegister(TemplatesAppliedCounter)
	prometheus.MustRegister(TasksCreatedCounter)
	prometheus.MustRegister(TaskToggleCounter)
	prometheus.MustRegister(OrdersAutoCompletedCounter)
	prometheus.MustRegister(DBOperationDuration)
}

// GetPrometheusHandler returns an HTTP handler for exposing Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation returns a function that records the duration of a database operation.
// Use as: defer prometheus.TrackDBOperation("apply_template")(time.Now())
func TrackDBOperation(operation string) func(startTime time.Time) {
	return func(startTime time.Time) {
		DBOperationDuration.WithLabelValues(operation).Observe(time.Since(startTime).Seconds())
	}
}

// RecordOperation records a tenant operation on a resource
func RecordOperation(resource, operation string) {
	OperationCounter.WithLabelValues(resource, operation).Inc()
}

// RecordTenantError records a rejected tenant operation
func RecordTenantError(tenantID uint, errorType string) {
	TenantErrorCounter.WithLabelValues(strconv.FormatUint(uint64(tenantID), 10), errorType).Inc()
}

// RecordAuthError records an authentication error by type
func RecordAuthError(errorType string) {
	AuthErrorCounter.WithLabelValues(errorType).Inc()
}

// RecordTaskToggle records a task completion change
func RecordTaskToggle(completed bool) {
	TaskToggleCounter.WithLabelValues(strconv.FormatBool(completed)).Inc()
}

func statusCategory(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500 && status < 600:
		return "5xx"
	default:
		return ""
	}
}

// MetricsMiddleware records request count, duration and status category for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			status := c.Response().Status
			method := c.Request().Method
			path := c.Path()
			statusStr := strconv.Itoa(status)

			RequestCounter.WithLabelValues(method, path, statusStr).Inc()
			RequestDuration.WithLabelValues(method, path, statusStr).Observe(time.Since(start).Seconds())
			if category := statusCategory(status); category != "" {
				StatusCategoryCounter.WithLabelValues(category, method, path).Inc()
			}

			return err
		}
	}
}
