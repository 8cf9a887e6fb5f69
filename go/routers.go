package ordersserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
	// Protected routes require admin credentials.
	Protected bool
}

// ApiHandleFunctions bundles the handlers and the guard applied to protected routes.
type ApiHandleFunctions struct {
	OrderAPI OrderAPI
	// Auth guards protected routes. Nil leaves every route open.
	Auth gin.HandlerFunc
}

// NewRouter returns a new router with panic recovery installed.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), responder.Recovery(nil))
	return NewRouterWithGinEngine(router, handleFunctions)
}

// NewRouterWithGinEngine adds the order routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		handlers := []gin.HandlerFunc{route.HandlerFunc}
		if route.Protected && handleFunctions.Auth != nil {
			handlers = append([]gin.HandlerFunc{handleFunctions.Auth}, handlers...)
		}
		router.Handle(route.Method, route.Pattern, handlers...)
	}
	return router
}

// DefaultHandleFunc answers routes that have no handler yet.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	api := handleFunctions.OrderAPI
	return []Route{
		{Name: "Healthz", Method: http.MethodGet, Pattern: "/healthz", HandlerFunc: Healthz},
		{Name: "ListOrders", Method: http.MethodGet, Pattern: "/orders", HandlerFunc: api.ListOrders},
		{Name: "GetOrder", Method: http.MethodGet, Pattern: "/orders/:id", HandlerFunc: api.GetOrder},
		{Name: "CreateOrder", Method: http.MethodPost, Pattern: "/orders", HandlerFunc: api.CreateOrder, Protected: true},
		{Name: "PatchOrder", Method: http.MethodPatch, Pattern: "/orders/:id", HandlerFunc: api.PatchOrder, Protected: true},
		{Name: "ApproveOrder", Method: http.MethodPut, Pattern: "/orders/:id/approved", HandlerFunc: api.ApproveOrder, Protected: true},
		{Name: "DeliverOrder", Method: http.MethodPut, Pattern: "/orders/:id/delivered", HandlerFunc: api.DeliverOrder, Protected: true},
		{Name: "DeleteOrder", Method: http.MethodDelete, Pattern: "/orders/:id", HandlerFunc: api.DeleteOrder, Protected: true},
	}
}

// Get /healthz
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
