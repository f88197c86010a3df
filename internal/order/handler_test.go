package order

import (
	"errors"
	"testing"
	"time"

	"ledger-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

func TestNewOrderNo(t *testing.T) {
	now := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)
	want := "ORD-2025-1741082400000"
	if got := newOrderNo(now); got != want {
		t.Errorf("newOrderNo = %q, want %q", got, want)
	}
}

func TestBuildOrder(t *testing.T) {
	now := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)
	valid := func() CreateOrderRequest {
		return CreateOrderRequest{
			Supervisor: " Kumar ",
			EmployeeID: "E-17",
			IssueDate:  "2025-03-04",
			Location:   "Unit 3",
			Materials:  []models.OrderMaterial{{Material: "Coupler", Quantity: 40, Provider: "Stores"}},
		}
	}

	req := valid()
	o, err := req.build(now)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if o.Supervisor != "Kumar" || o.OrderNo != newOrderNo(now) || len(o.Materials) != 1 {
		t.Errorf("unexpected order %+v", o)
	}
	if !o.IssueDate.Equal(time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("issue date = %v", o.IssueDate)
	}

	tests := []struct {
		name   string
		mutate func(r *CreateOrderRequest)
	}{
		{"no supervisor", func(r *CreateOrderRequest) { r.Supervisor = "" }},
		{"no materials", func(r *CreateOrderRequest) { r.Materials = nil }},
		{"bad date", func(r *CreateOrderRequest) { r.IssueDate = "04/03/2025" }},
		{"zero quantity", func(r *CreateOrderRequest) { r.Materials[0].Quantity = 0 }},
		{"no provider", func(r *CreateOrderRequest) { r.Materials[0].Provider = " " }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid()
			tt.mutate(&r)
			_, err := r.build(now)
			var fe *fiber.Error
			if !errors.As(err, &fe) || fe.Code != fiber.StatusBadRequest {
				t.Fatalf("want 400, got %v", err)
			}
		})
	}
}
