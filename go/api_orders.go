package ordersserver

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	orderhttpmapper "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/http/mapper"
	orderstypes "github.com/Apurer/go-gin-orders-api/internal/domains/orders/application/types"
	ordersdomain "github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	ordersports "github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
	apierrors "github.com/Apurer/go-gin-orders-api/internal/shared/errors"
)

const (
	contentTypeCSV = "text/csv"
	exportFilename = "orders.csv"
)

// OrderAPI wires HTTP transport with the orders service and the import orchestrator.
type OrderAPI struct {
	service   ordersports.Service
	workflows ordersports.ImportOrchestrator
}

// NewOrderAPI creates an OrderAPI. workflows may be nil, in which case imports commit inline.
func NewOrderAPI(service ordersports.Service, workflows ordersports.ImportOrchestrator) OrderAPI {
	return OrderAPI{service: service, workflows: workflows}
}

// Get /orders
// Lists orders as JSON, or as a CSV attachment when text/csv is requested
func (api *OrderAPI) ListOrders(c *gin.Context) {
	filter, fieldErrors := parseListFilter(c)
	if len(fieldErrors) > 0 {
		responder.ValidationFailed(c, fieldErrors)
		return
	}
	if wantsCSV(c) {
		api.exportOrders(c)
		return
	}
	orders, err := api.service.ListOrders(c.Request.Context(), filter)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrders(orders))
}

// Output is buffered so a failed export still yields a problem response instead of a truncated file.
func (api *OrderAPI) exportOrders(c *gin.Context) {
	var buf bytes.Buffer
	if err := api.service.ExportOrders(c.Request.Context(), &buf); err != nil {
		respondOrderError(c, err)
		return
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": exportFilename}))
	c.Data(http.StatusOK, contentTypeCSV+"; charset=utf-8", buf.Bytes())
}

// Get /orders/:id
func (api *OrderAPI) GetOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := api.service.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrder(order))
}

// Post /orders
// Creates one order from JSON, or imports a batch when the body is text/csv
func (api *OrderAPI) CreateOrder(c *gin.Context) {
	if c.ContentType() == contentTypeCSV {
		api.importOrders(c)
		return
	}
	var payload orderhttpmapper.NewOrder
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	order, err := api.service.CreateOrder(c.Request.Context(), orderhttpmapper.ToNewOrderInput(payload))
	if err != nil {
		respondOrderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, orderhttpmapper.FromDomainOrder(order))
}

func (api *OrderAPI) importOrders(c *gin.Context) {
	result, err := api.commitImport(c.Request.Context(), c.Request.Body)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (api *OrderAPI) commitImport(ctx context.Context, body io.Reader) (*orderstypes.ImportResult, error) {
	if api.workflows == nil {
		return api.service.ImportOrders(ctx, body)
	}
	orders, err := api.service.ParseImport(ctx, body)
	if err != nil {
		return nil, err
	}
	return api.workflows.CommitImport(ctx, orders)
}

// Patch /orders/:id
// Overwrites status, complete and quantity
func (api *OrderAPI) PatchOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var payload orderhttpmapper.EditedOrder
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	order, err := api.service.PatchOrder(c.Request.Context(), id, orderhttpmapper.ToEditOrderInput(payload))
	if err != nil {
		respondOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrder(order))
}

// Put /orders/:id/approved
func (api *OrderAPI) ApproveOrder(c *gin.Context) {
	api.changeStatus(c, api.service.ApproveOrder)
}

// Put /orders/:id/delivered
func (api *OrderAPI) DeliverOrder(c *gin.Context) {
	api.changeStatus(c, api.service.DeliverOrder)
}

func (api *OrderAPI) changeStatus(c *gin.Context, change func(context.Context, int64) (*ordersdomain.Order, error)) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := change(c.Request.Context(), id)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrder(order))
}

// Delete /orders/:id
// Deleting an absent order still succeeds
func (api *OrderAPI) DeleteOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := api.service.DeleteOrder(c.Request.Context(), id); err != nil {
		respondOrderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	value := c.Param(name)
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		responder.Respond(c, apierrors.ErrBadRequest.WithDetail(fmt.Sprintf("%s must be an integer, got %q", name, value)))
		return 0, false
	}
	return id, true
}

func parseListFilter(c *gin.Context) (orderstypes.ListFilter, map[string]string) {
	var filter orderstypes.ListFilter
	fieldErrors := map[string]string{}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := ordersdomain.Status(strings.ToLower(raw))
		if ordersdomain.IsValidStatus(status) {
			filter.Status = &status
		} else {
			fieldErrors["status"] = "must be one of placed, approved, delivered"
		}
	}
	for _, key := range []string{"from", "to"} {
		raw := strings.TrimSpace(c.Query(key))
		if raw == "" {
			continue
		}
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			fieldErrors[key] = "must be an RFC 3339 timestamp"
			continue
		}
		if key == "from" {
			filter.From = &ts
		} else {
			filter.To = &ts
		}
	}
	return filter, fieldErrors
}

func wantsCSV(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), contentTypeCSV) || c.ContentType() == contentTypeCSV
}
