package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/navafv/digital-thread-tailor-app/internal/middleware"
	"github.com/navafv/digital-thread-tailor-app/internal/model"
)

// RegisterRoutes mounts the public auth routes, the tailor API under /api
// and the client portal under /api/portal
func RegisterRoutes(e *echo.Echo, h *Handler, tokens middleware.TokenValidator) {
	e.GET("/health", h.HealthCheck)

	auth := e.Group("/auth")
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)

	authenticated := middleware.AuthMiddleware(tokens)

	portal := e.Group("/api/portal", authenticated, middleware.RequireRole(model.RoleClient))
	portal.GET("/dashboard", h.PortalDashboard)
	portal.GET("/orders", h.PortalOrders)
	portal.GET("/orders/:id", h.PortalOrder)
	portal.GET("/profile", h.PortalProfile)
	portal.POST("/appointments", h.RequestAppointment)

	api := e.Group("/api", authenticated, middleware.RequireRole(model.RoleTailor))

	api.GET("/dashboard", h.Dashboard)
	api.GET("/dashboard/revenue", h.MonthlyRevenue)
	api.GET("/calendar/events", h.CalendarEvents)

	customers := api.Group("/customers")
	customers.POST("", h.CreateCustomer)
	customers.GET("", h.ListCustomers)
	customers.GET("/:id", h.GetCustomer)
	customers.PUT("/:id", h.UpdateCustomer)
	customers.POST("/:id/measurements", h.AddMeasurement)
	customers.POST("/:id/orders", h.CreateOrder)
	customers.POST("/:id/invite", h.InviteCustomer)

	api.PUT("/measurements/:id", h.UpdateMeasurement)
	api.DELETE("/measurements/:id", h.DeleteMeasurement)

	orders := api.Group("/orders")
	orders.GET("", h.ListOrders)
	orders.GET("/:id", h.GetOrder)
	orders.PUT("/:id", h.UpdateOrder)
	orders.POST("/:id/images", h.AttachImage)
	orders.POST("/:id/materials", h.AttachMaterial)
	orders.POST("/:id/apply-template", h.ApplyTemplate)
	orders.GET("/:id/tasks", h.ListTasks)

	api.DELETE("/images/:id", h.DetachImage)
	api.DELETE("/materials/:id", h.DetachMaterial)
	api.PUT("/tasks/:id", h.SetTaskCompletion)

	templates := api.Group("/templates")
	templates.POST("", h.CreateTemplate)
	templates.GET("", h.ListTemplates)
	templates.GET("/:id", h.GetTemplate)
	templates.DELETE("/:id", h.DeleteTemplate)

	suppliers := api.Group("/suppliers")
	suppliers.POST("", h.CreateSupplier)
	suppliers.GET("", h.ListSuppliers)
	suppliers.GET("/:id", h.GetSupplier)
	suppliers.PUT("/:id", h.UpdateSupplier)
	suppliers.DELETE("/:id", h.DeleteSupplier)

	inventory := api.Group("/inventory")
	inventory.POST("", h.CreateInventoryItem)
	inventory.GET("", h.ListInventory)
	inventory.GET("/low-stock", h.LowStock)
	inventory.GET("/:id", h.GetInventoryItem)
	inventory.PUT("/:id", h.UpdateInventoryItem)

	appointments := api.Group("/appointments")
	appointments.POST("", h.CreateAppointment)
	appointments.GET("", h.ListAppointments)
	appointments.PUT("/:id/status", h.UpdateAppointmentStatus)
}
