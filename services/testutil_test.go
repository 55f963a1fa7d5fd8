package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"vehicle-service-server/models"
)

// newTestDB opens an isolated in-memory database migrated with the full
// schema. The DSN is namespaced per test so parallel tests never share state.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.ServiceCategory{},
		&models.Service{},
		&models.TimeSlot{},
		&models.Area{},
		&models.Vehicle{},
		&models.MechanicProfile{},
		&models.Booking{},
		&models.BookedService{},
		&models.BookingRecommendation{},
		&models.BookingAssignment{},
		&models.BookingProgress{},
		&models.BookingAnalysis{},
		&models.Payment{},
		&models.Refund{},
		&models.PendingSelection{},
	))
	return db
}

// stubTax pins the GST rate so fee math in tests is exact.
type stubTax struct {
	rate float64
}

func (s stubTax) CurrentGSTPercent() float64 {
	return s.rate
}

const testGatewaySecret = "test-secret"

func testGateway() *HMACGateway {
	return NewHMACGatewayWithKeys("test-key", testGatewaySecret)
}

// signOrder produces the signature the HMAC gateway expects for a callback.
func signOrder(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(testGatewaySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// fixture bundles the rows most workflow tests need.
type fixture struct {
	category models.ServiceCategory
	svcOne   models.Service // difficulty 3
	svcTwo   models.Service // difficulty 4
	customer models.User
	vehicle  models.Vehicle
	slot     models.TimeSlot
}

func newFixture(t *testing.T, db *gorm.DB) *fixture {
	t.Helper()

	f := &fixture{}

	f.category = models.ServiceCategory{Name: "Engine", IsActive: true}
	require.NoError(t, db.Create(&f.category).Error)

	f.svcOne = models.Service{
		CategoryID: f.category.ID,
		Name:       "Engine tune-up",
		Price:      1000,
		Difficulty: 3,
		TimeHrs:    2,
		IsActive:   true,
	}
	require.NoError(t, db.Create(&f.svcOne).Error)

	f.svcTwo = models.Service{
		CategoryID: f.category.ID,
		Name:       "Timing belt replacement",
		Price:      2000,
		Difficulty: 4,
		TimeHrs:    3,
		IsActive:   true,
	}
	require.NoError(t, db.Create(&f.svcTwo).Error)

	f.customer = models.User{
		FullName:     "Test Customer",
		Email:        "customer@example.com",
		PasswordHash: "x",
		Role:         models.RoleCustomer,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&f.customer).Error)

	f.vehicle = models.Vehicle{
		CustomerID:     f.customer.ID,
		Model:          "Hatchback",
		RegistrationNo: "KA01AB1234",
	}
	require.NoError(t, db.Create(&f.vehicle).Error)

	f.slot = models.TimeSlot{StartTime: "09:00", EndTime: "11:00", IsActive: true}
	require.NoError(t, db.Create(&f.slot).Error)

	return f
}

// newMechanic creates a mechanic user and profile in one go.
func newMechanic(t *testing.T, db *gorm.DB, email string, opts func(*models.MechanicProfile)) *models.MechanicProfile {
	t.Helper()

	user := models.User{
		FullName:     "Mechanic " + email,
		Email:        email,
		PasswordHash: "x",
		Role:         models.RoleMechanic,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&user).Error)

	profile := models.MechanicProfile{
		UserID:        user.ID,
		CanPickupDrop: true,
		CanAnalyse:    true,
	}
	if opts != nil {
		opts(&profile)
	}
	require.NoError(t, db.Create(&profile).Error)
	return &profile
}

// newBooking creates a booking with both fixture services attached at the
// given status. Booked-service status and completion are left at defaults.
func (f *fixture) newBooking(t *testing.T, db *gorm.DB, status models.BookingStatus, method models.PaymentMethod) *models.Booking {
	t.Helper()

	booking := models.Booking{
		CustomerID:       f.customer.ID,
		VehicleID:        f.vehicle.ID,
		Status:           status,
		PickupAddress:    "12 Test Street",
		DropAddress:      "12 Test Street",
		PickupDate:       time.Now(),
		PickupTimeSlotID: f.slot.ID,
		PaymentMethod:    method,
	}
	require.NoError(t, db.Create(&booking).Error)

	for _, svc := range []models.Service{f.svcOne, f.svcTwo} {
		bs := models.BookedService{
			BookingID:      booking.ID,
			ServiceID:      svc.ID,
			Status:         models.BookedServiceStatusBooked,
			EstimatedPrice: svc.Price,
		}
		require.NoError(t, db.Create(&bs).Error)
	}
	return &booking
}

// confirmServices flips the booking's services to confirmed with a final
// price equal to the estimate.
func confirmServices(t *testing.T, db *gorm.DB, bookingID uint) {
	t.Helper()
	var booked []models.BookedService
	require.NoError(t, db.Where("booking_id = ?", bookingID).Find(&booked).Error)
	for _, bs := range booked {
		require.NoError(t, db.Model(&models.BookedService{}).
			Where("booking_id = ? AND service_id = ?", bookingID, bs.ServiceID).
			Updates(map[string]interface{}{
				"status":      models.BookedServiceStatusConfirmed,
				"final_price": bs.EstimatedPrice,
			}).Error)
	}
}

func mechanicScore(t *testing.T, db *gorm.DB, mechanicID uint) int {
	t.Helper()
	var profile models.MechanicProfile
	require.NoError(t, db.First(&profile, mechanicID).Error)
	return profile.Score
}

func reloadBooking(t *testing.T, db *gorm.DB, id uint) *models.Booking {
	t.Helper()
	var booking models.Booking
	require.NoError(t, db.First(&booking, id).Error)
	return &booking
}
