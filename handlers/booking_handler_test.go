package handlers_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/brinebarrel/ramen_bookings/database"
	"github.com/brinebarrel/ramen_bookings/handlers"
	"github.com/brinebarrel/ramen_bookings/models"
	"github.com/brinebarrel/ramen_bookings/routes"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type recordingNotifier struct {
	calls [][]string
	fail  bool
}

func (r *recordingNotifier) Send(recipients []string, subject, textBody, htmlBody string) error {
	if r.fail {
		return errors.New("provider unavailable")
	}
	r.calls = append(r.calls, recipients)
	return nil
}

func setupApp(t *testing.T) (*fiber.App, *recordingNotifier) {
	t.Helper()

	os.Setenv("JWT_SECRET", "test-secret")

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "bookings.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Booking{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	database.DB = db

	notifier := &recordingNotifier{}
	handlers.InitBookingServices(db, notifier)

	app := fiber.New()
	routes.AuthRoutes(app)
	routes.BookingRoutes(app)
	return app, notifier
}

func adminToken(t *testing.T) string {
	t.Helper()

	claims := jwt.MapClaims{
		"user_id": "00000000-0000-0000-0000-000000000001",
		"role":    "admin",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func doJSON(t *testing.T, app *fiber.App, method, path, body, token string) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}

	raw, _ := io.ReadAll(resp.Body)
	payload := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			t.Fatalf("%s %s returned non-JSON body %q", method, path, raw)
		}
	}
	return resp, payload
}

func submitBooking(t *testing.T, app *fiber.App, email string) map[string]any {
	t.Helper()
	body := fmt.Sprintf(`{"customerName":"Guest","customerEmail":%q,"targetDate":"2026-09-04"}`, email)
	resp, payload := doJSON(t, app, "POST", "/api/v1/bookings", body, "")
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d: %v", resp.StatusCode, payload)
	}
	return payload
}

func TestCreateBookingReturnsSlotState(t *testing.T) {
	app, _ := setupApp(t)

	payload := submitBooking(t, app, "aiko@example.com")

	if payload["confirmationTriggered"] != false {
		t.Fatalf("single booking must not trigger confirmation: %v", payload)
	}
	if payload["occupancy"] != float64(1) {
		t.Fatalf("expected occupancy 1, got %v", payload["occupancy"])
	}
	if payload["slotStatus"] != "open" {
		t.Fatalf("expected open slot, got %v", payload["slotStatus"])
	}
	if payload["spotsRemaining"] != float64(11) {
		t.Fatalf("expected 11 spots remaining, got %v", payload["spotsRemaining"])
	}

	booking := payload["booking"].(map[string]any)
	if booking["status"] != "pending" {
		t.Fatalf("new booking must be pending, got %v", booking["status"])
	}
}

func TestCreateBookingValidation(t *testing.T) {
	app, _ := setupApp(t)

	resp, _ := doJSON(t, app, "POST", "/api/v1/bookings",
		`{"customerName":"Guest","customerEmail":"not-an-email","targetDate":"2026-09-04"}`, "")
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for invalid email, got %d", resp.StatusCode)
	}
}

func TestCreateBookingCapacityExceeded(t *testing.T) {
	app, _ := setupApp(t)

	body := `{"customerName":"Big Group","customerEmail":"big@example.com","targetDate":"2026-09-04","partySize":12}`
	resp, _ := doJSON(t, app, "POST", "/api/v1/bookings", body, "")
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201 for a full-cap booking, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, "POST", "/api/v1/bookings",
		`{"customerName":"Guest","customerEmail":"late@example.com","targetDate":"2026-09-04"}`, "")
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 when capacity is exceeded, got %d", resp.StatusCode)
	}
}

func TestSixthBookingTriggersConfirmation(t *testing.T) {
	app, notifier := setupApp(t)

	for i := 0; i < 5; i++ {
		payload := submitBooking(t, app, fmt.Sprintf("guest%d@example.com", i))
		if payload["confirmationTriggered"] != false {
			t.Fatalf("booking %d must not trigger confirmation yet", i)
		}
	}

	payload := submitBooking(t, app, "guest5@example.com")
	if payload["confirmationTriggered"] != true {
		t.Fatalf("sixth booking must trigger confirmation: %v", payload)
	}
	if payload["slotStatus"] != "confirmed" {
		t.Fatalf("expected confirmed slot, got %v", payload["slotStatus"])
	}
	if len(notifier.calls) != 1 || len(notifier.calls[0]) != 6 {
		t.Fatalf("expected one dispatch to 6 recipients, got %v", notifier.calls)
	}
}

func TestGetDateSlotAggregatesOnly(t *testing.T) {
	app, _ := setupApp(t)
	submitBooking(t, app, "aiko@example.com")

	resp, payload := doJSON(t, app, "GET", "/api/v1/slots/2026-09-04", "", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if payload["occupancy"] != float64(1) || payload["slotStatus"] != "open" {
		t.Fatalf("unexpected slot view: %v", payload)
	}
	if _, leaked := payload["bookings"]; leaked {
		t.Fatal("storefront slot view must not expose bookings")
	}
}

func TestAdminRoutesRequireToken(t *testing.T) {
	app, _ := setupApp(t)

	resp, _ := doJSON(t, app, "GET", "/api/v1/admin/bookings", "", "")
	if resp.StatusCode == fiber.StatusOK {
		t.Fatal("admin listing must not be reachable without a token")
	}
}

func TestAdminManualConfirm(t *testing.T) {
	app, notifier := setupApp(t)
	token := adminToken(t)

	submitBooking(t, app, "aiko@example.com")
	submitBooking(t, app, "ben@example.com")

	resp, payload := doJSON(t, app, "POST", "/api/v1/admin/bookings/confirm",
		`{"date":"2026-09-04"}`, token)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d: %v", resp.StatusCode, payload)
	}
	if payload["emailsSent"] != float64(2) {
		t.Fatalf("expected 2 emails sent, got %v", payload["emailsSent"])
	}
	confirmed := payload["confirmed"].([]any)
	if len(confirmed) != 2 {
		t.Fatalf("expected 2 confirmed bookings below threshold, got %d", len(confirmed))
	}
	if len(notifier.calls) != 1 {
		t.Fatalf("expected one dispatch, got %v", notifier.calls)
	}
}

func TestAdminStatusUpdateAndDelete(t *testing.T) {
	app, _ := setupApp(t)
	token := adminToken(t)

	payload := submitBooking(t, app, "aiko@example.com")
	bookingID := payload["booking"].(map[string]any)["id"].(string)

	resp, updated := doJSON(t, app, "PATCH", "/api/v1/admin/bookings/"+bookingID+"/status",
		`{"status":"cancelled"}`, token)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d: %v", resp.StatusCode, updated)
	}
	if updated["booking"].(map[string]any)["status"] != "cancelled" {
		t.Fatalf("expected cancelled, got %v", updated)
	}

	resp, _ = doJSON(t, app, "PATCH", "/api/v1/admin/bookings/"+bookingID+"/status",
		`{"status":"no-show"}`, token)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("arbitrary status must be rejected, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, "DELETE", "/api/v1/admin/bookings/"+bookingID, "", token)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 on delete, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, "DELETE", "/api/v1/admin/bookings/"+bookingID, "", token)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 deleting twice, got %d", resp.StatusCode)
	}
}

func TestAdminResendNotification(t *testing.T) {
	app, notifier := setupApp(t)
	token := adminToken(t)

	payload := submitBooking(t, app, "aiko@example.com")
	bookingID := payload["booking"].(map[string]any)["id"].(string)

	resp, result := doJSON(t, app, "POST", "/api/v1/admin/bookings/"+bookingID+"/notify", "", token)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d: %v", resp.StatusCode, result)
	}
	if result["sent"] != true {
		t.Fatalf("expected sent=true, got %v", result)
	}
	if len(notifier.calls) != 1 || notifier.calls[0][0] != "aiko@example.com" {
		t.Fatalf("unexpected dispatch: %v", notifier.calls)
	}

	resp, _ = doJSON(t, app, "POST", "/api/v1/admin/bookings/00000000-0000-0000-0000-00000000dead/notify", "", token)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for unknown booking, got %d", resp.StatusCode)
	}
}

func TestAdminLogin(t *testing.T) {
	app, _ := setupApp(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("ramen-secret"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	admin := models.User{FullName: "Shop Admin", Email: "admin@example.com", Password: string(hash), Role: "admin"}
	if err := database.DB.Create(&admin).Error; err != nil {
		t.Fatalf("failed to seed admin: %v", err)
	}

	resp, payload := doJSON(t, app, "POST", "/api/v1/auth/login",
		`{"email":"admin@example.com","password":"ramen-secret"}`, "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d: %v", resp.StatusCode, payload)
	}
	token, _ := payload["token"].(string)
	if token == "" {
		t.Fatal("expected a JWT in the login response")
	}

	resp, _ = doJSON(t, app, "GET", "/api/v1/admin/bookings", "", token)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("login token must open the admin surface, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, "POST", "/api/v1/auth/login",
		`{"email":"admin@example.com","password":"wrong"}`, "")
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", resp.StatusCode)
	}
}
