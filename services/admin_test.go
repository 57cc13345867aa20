package services

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func adminOrdersApp(svc *AdminService) *fiber.App {
	app := fiber.New()
	app.Patch("/admin/orders", svc.UpdateOrderStatus)
	return app
}

func patchOrder(t *testing.T, app *fiber.App, body string) int {
	t.Helper()
	req := httptest.NewRequest("PATCH", "/admin/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	return resp.StatusCode
}

func TestUpdateOrderStatusRejectsUnknownStatus(t *testing.T) {
	app := adminOrdersApp(&AdminService{})

	for _, status := range []string{"refunded", "COMPLETED", "done", "cancelled"} {
		got := patchOrder(t, app, `{"id":"ord_1","status":"`+status+`"}`)
		if got != fiber.StatusBadRequest {
			t.Errorf("status %q should be rejected with 400, got %d", status, got)
		}
	}
}

func TestUpdateOrderStatusRequiresIDAndStatus(t *testing.T) {
	app := adminOrdersApp(&AdminService{})

	if got := patchOrder(t, app, `{"status":"completed"}`); got != fiber.StatusBadRequest {
		t.Errorf("missing id should be rejected with 400, got %d", got)
	}
	if got := patchOrder(t, app, `{"id":"ord_1"}`); got != fiber.StatusBadRequest {
		t.Errorf("missing status should be rejected with 400, got %d", got)
	}
}
