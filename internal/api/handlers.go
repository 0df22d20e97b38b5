package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sumifun/order-intake-api/internal/models"
)

// apiResponse is the uniform envelope carried by every JSON response.
type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// orderListResponse carries the result of list and search operations. The
// orders array is always present, possibly empty, even on failure.
type orderListResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Orders  []*models.Order `json:"orders"`
}

type createOrderResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	OrderID string `json:"order_id,omitempty"`
}

type exportOrdersResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Filename string `json:"filename,omitempty"`
	Count    int    `json:"count"`
}

// createOrderHandler accepts the public order form. Only name and phone are
// required; quantity defaults to 1 when absent.
func (s *Server) createOrderHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondWithJSON(w, http.StatusOK, createOrderResponse{
			Success: false,
			Message: "Invalid form data",
		})
		return
	}

	name := r.FormValue("name")
	phone := r.FormValue("phone")

	if name == "" || phone == "" {
		s.respondWithJSON(w, http.StatusOK, createOrderResponse{
			Success: false,
			Message: "Please provide both name and phone",
		})
		return
	}

	quantity := 1

	if v := r.FormValue("quantity"); v != "" {
		q, err := strconv.Atoi(v)

		if err != nil {
			s.respondWithJSON(w, http.StatusOK, createOrderResponse{
				Success: false,
				Message: "Invalid quantity",
			})
			return
		}
		quantity = q
	}

	order, err := s.orderService.Create(r.Context(), name, phone, quantity)

	if err != nil {
		s.logger.Error("Failed to create order", "error", err)
		s.respondWithJSON(w, http.StatusOK, createOrderResponse{
			Success: false,
			Message: fmt.Sprintf("Server error: %v", err),
		})
		return
	}

	s.respondWithJSON(w, http.StatusOK, createOrderResponse{
		Success: true,
		OrderID: order.OrderID,
	})
}

// getOrdersHandler lists all orders. With admin=true it requires an admin
// session and returns unmasked rows; otherwise it requires the shared
// access key and masks every phone number.
func (s *Server) getOrdersHandler(w http.ResponseWriter, r *http.Request) {
	adminMode := r.URL.Query().Get("admin") == "true"

	if adminMode {
		if !s.isAdmin(r) {
			s.respondWithJSON(w, http.StatusOK, orderListResponse{
				Success: false,
				Message: "Authorization required",
				Orders:  []*models.Order{},
			})
			return
		}
	} else {
		if r.URL.Query().Get("key") != s.config.Auth.PublicAccessKey {
			s.respondWithJSON(w, http.StatusOK, orderListResponse{
				Success: false,
				Message: "Invalid access key",
				Orders:  []*models.Order{},
			})
			return
		}
	}

	orders, err := s.orderService.List(r.Context())

	if err != nil {
		s.logger.Error("Failed to list orders", "error", err)
		s.respondWithJSON(w, http.StatusOK, orderListResponse{
			Success: false,
			Message: fmt.Sprintf("Server error: %v", err),
			Orders:  []*models.Order{},
		})
		return
	}

	if !adminMode {
		maskPhones(orders)
	}

	s.respondWithJSON(w, http.StatusOK, orderListResponse{
		Success: true,
		Message: "Orders loaded successfully",
		Orders:  orders,
	})
}

// searchOrdersHandler performs a substring search across order_id, name and
// phone. Admin only; an empty query returns every order.
func (s *Server) searchOrdersHandler(w http.ResponseWriter, r *http.Request) {
	if !s.isAdmin(r) {
		s.respondWithJSON(w, http.StatusOK, orderListResponse{
			Success: false,
			Message: "Authorization required",
			Orders:  []*models.Order{},
		})
		return
	}

	query := r.URL.Query().Get("q")
	orders, err := s.orderService.Search(r.Context(), query)

	if err != nil {
		s.logger.Error("Failed to search orders", "error", err, "query", query)
		s.respondWithJSON(w, http.StatusOK, orderListResponse{
			Success: false,
			Message: fmt.Sprintf("Server error: %v", err),
			Orders:  []*models.Order{},
		})
		return
	}

	s.respondWithJSON(w, http.StatusOK, orderListResponse{
		Success: true,
		Message: fmt.Sprintf("Found %d orders", len(orders)),
		Orders:  orders,
	})
}

// updateOrderStatusHandler overwrites an order's status. The response
// reports success even when no order matched; see OrderService.UpdateStatus.
func (s *Server) updateOrderStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !s.isAdmin(r) {
		s.respondWithJSON(w, http.StatusOK, apiResponse{
			Success: false,
			Message: "Authorization required",
		})
		return
	}

	vars := mux.Vars(r)
	orderID := vars["order_id"]

	var body struct {
		Status string `json:"status"`
	}

	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondWithJSON(w, http.StatusOK, apiResponse{
			Success: false,
			Message: "Invalid request payload",
		})
		return
	}
	defer r.Body.Close()

	if err := s.orderService.UpdateStatus(r.Context(), orderID, body.Status); err != nil {
		s.logger.Error("Failed to update order status", "error", err, "orderID", orderID)
		s.respondWithJSON(w, http.StatusOK, apiResponse{
			Success: false,
			Message: fmt.Sprintf("Server error: %v", err),
		})
		return
	}

	s.respondWithJSON(w, http.StatusOK, apiResponse{
		Success: true,
		Message: fmt.Sprintf("Order %s status updated to %s", orderID, body.Status),
	})
}

// exportOrdersHandler writes a timestamped JSON export file and returns its
// name and the number of exported rows. Admin only.
func (s *Server) exportOrdersHandler(w http.ResponseWriter, r *http.Request) {
	if !s.isAdmin(r) {
		s.respondWithJSON(w, http.StatusOK, apiResponse{
			Success: false,
			Message: "Authorization required",
		})
		return
	}

	filename := fmt.Sprintf("orders_export_%s.json", models.GetCurrentTime().Format("20060102_150405"))
	path := filepath.Join(s.config.ExportDir, filename)

	count, err := s.orderService.ExportToFile(r.Context(), path)

	if err != nil {
		s.logger.Error("Failed to export orders", "error", err, "path", path)
		s.respondWithJSON(w, http.StatusOK, apiResponse{
			Success: false,
			Message: fmt.Sprintf("Server error: %v", err),
		})
		return
	}

	s.respondWithJSON(w, http.StatusOK, exportOrdersResponse{
		Success:  true,
		Message:  fmt.Sprintf("Exported %d orders to %s", count, filename),
		Filename: filename,
		Count:    count,
	})
}

// maskPhones redacts all but the last four characters of every phone
// number. Applied to public reads only, never in admin mode.
func maskPhones(orders []*models.Order) {
	for _, order := range orders {
		order.Phone = models.MaskPhone(order.Phone)
	}
}

// respondWithJSON sends a JSON response
func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)

	if err != nil {
		s.logger.Error("Failed to marshal response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
