package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/innkeep/pms_backend/internal/apperrors"
	"github.com/innkeep/pms_backend/internal/core/domain"
	portssvc "github.com/innkeep/pms_backend/internal/core/ports/services"
	"github.com/innkeep/pms_backend/internal/dto"
	"github.com/innkeep/pms_backend/internal/handlers"
	"github.com/innkeep/pms_backend/internal/platform/config"
	"github.com/innkeep/pms_backend/internal/utils/calendar"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock BookingService ---
type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) GetBookingByID(ctx context.Context, bookingID string) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingService) CreateBooking(ctx context.Context, req dto.CreateBookingRequest) (*domain.Booking, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingService) ConfirmBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingService) CheckIn(ctx context.Context, bookingID string, currentDate time.Time) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID, currentDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingService) CheckOut(ctx context.Context, bookingID string) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingService) CancelBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingService) MarkNoShow(ctx context.Context, bookingID string, targetDate time.Time) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID, targetDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.BookingSvcFacade = (*MockBookingService)(nil)

// --- Mock InventoryService ---
type MockInventoryService struct {
	mock.Mock
}

func (m *MockInventoryService) CheckAvailability(ctx context.Context, roomTypeID string, stay calendar.StayRange) ([]domain.DateAvailability, error) {
	args := m.Called(ctx, roomTypeID, stay)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DateAvailability), args.Error(1)
}
func (m *MockInventoryService) Reserve(ctx context.Context, roomTypeID string, stay calendar.StayRange) error {
	args := m.Called(ctx, roomTypeID, stay)
	return args.Error(0)
}
func (m *MockInventoryService) Release(ctx context.Context, roomTypeID string, stay calendar.StayRange) error {
	args := m.Called(ctx, roomTypeID, stay)
	return args.Error(0)
}
func (m *MockInventoryService) Extend(ctx context.Context, roomTypeID string, date time.Time) error {
	args := m.Called(ctx, roomTypeID, date)
	return args.Error(0)
}
func (m *MockInventoryService) Shrink(ctx context.Context, roomTypeID string, date time.Time) error {
	args := m.Called(ctx, roomTypeID, date)
	return args.Error(0)
}
func (m *MockInventoryService) SetCapacity(ctx context.Context, roomTypeID string, date time.Time, totalCapacity, blockedCount int) error {
	args := m.Called(ctx, roomTypeID, date, totalCapacity, blockedCount)
	return args.Error(0)
}

// Ensure mock implements the interface
var _ portssvc.InventorySvcFacade = (*MockInventoryService)(nil)

// --- Mock AuditService ---
type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) RunAudit(ctx context.Context, targetDate time.Time) (*domain.AuditRun, error) {
	args := m.Called(ctx, targetDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuditRun), args.Error(1)
}
func (m *MockAuditService) GetAuditRun(ctx context.Context, targetDate time.Time) (*domain.AuditRun, error) {
	args := m.Called(ctx, targetDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuditRun), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.AuditSvcFacade = (*MockAuditService)(nil)

// --- Test Suite ---
type BookingHandlerTestSuite struct {
	suite.Suite
	router               *gin.Engine
	mockBookingService   *MockBookingService
	mockInventoryService *MockInventoryService
	mockAuditService     *MockAuditService
}

func (suite *BookingHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()

	suite.mockBookingService = new(MockBookingService)
	suite.mockInventoryService = new(MockInventoryService)
	suite.mockAuditService = new(MockAuditService)

	handlers.RegisterRoutes(suite.router, &config.Config{}, &portssvc.ServiceContainer{
		Inventory: suite.mockInventoryService,
		Booking:   suite.mockBookingService,
		Audit:     suite.mockAuditService,
	})
}

func TestBookingHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(BookingHandlerTestSuite))
}

func (suite *BookingHandlerTestSuite) performJSON(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func mustDate(s string) time.Time {
	t, err := calendar.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func sampleBooking(state domain.BookingState) *domain.Booking {
	return &domain.Booking{
		BookingID:  "booking-1",
		GuestRef:   "guest-42",
		RoomTypeID: "deluxe",
		Stay:       calendar.NewStayRange(mustDate("2024-06-10"), mustDate("2024-06-13")),
		State:      state,
		Rate: domain.RateSnapshot{
			Amount:       decimal.NewFromFloat(129.50),
			CurrencyCode: "EUR",
		},
		Version: 2,
	}
}

// --- Test Cases ---

func (suite *BookingHandlerTestSuite) TestCreateBooking_Success() {
	body := map[string]any{
		"guestRef":      "guest-42",
		"roomTypeID":    "deluxe",
		"arrivalDate":   "2024-06-10",
		"departureDate": "2024-06-13",
		"rateAmount":    129.50,
		"rateCurrency":  "EUR",
	}
	suite.mockBookingService.On("CreateBooking", mock.Anything, mock.MatchedBy(func(req dto.CreateBookingRequest) bool {
		return req.GuestRef == "guest-42" && req.RoomTypeID == "deluxe" && req.ArrivalDate == "2024-06-10"
	})).Return(sampleBooking(domain.StateDraft), nil).Once()

	w := suite.performJSON(http.MethodPost, "/api/v1/bookings/", body)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.BookingResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("booking-1", resp.BookingID)
	suite.Equal("DRAFT", resp.State)
	suite.Equal("2024-06-10", resp.ArrivalDate)
	suite.mockBookingService.AssertExpectations(suite.T())
}

func (suite *BookingHandlerTestSuite) TestCreateBooking_DepartureNotAfterArrival() {
	body := map[string]any{
		"guestRef":      "guest-42",
		"roomTypeID":    "deluxe",
		"arrivalDate":   "2024-06-13",
		"departureDate": "2024-06-10",
		"rateAmount":    129.50,
		"rateCurrency":  "EUR",
	}

	w := suite.performJSON(http.MethodPost, "/api/v1/bookings/", body)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockBookingService.AssertNotCalled(suite.T(), "CreateBooking")
}

func (suite *BookingHandlerTestSuite) TestCreateBooking_CapacityExceededMapsToConflict() {
	body := map[string]any{
		"guestRef":      "guest-42",
		"roomTypeID":    "deluxe",
		"arrivalDate":   "2024-06-10",
		"departureDate": "2024-06-13",
		"rateAmount":    129.50,
		"rateCurrency":  "EUR",
	}
	capErr := fmt.Errorf("%w: room type deluxe is full on 2024-06-11", apperrors.ErrCapacityExceeded)
	suite.mockBookingService.On("CreateBooking", mock.Anything, mock.AnythingOfType("dto.CreateBookingRequest")).
		Return(nil, capErr).Once()

	w := suite.performJSON(http.MethodPost, "/api/v1/bookings/", body)

	suite.Equal(http.StatusConflict, w.Code)
	suite.Contains(w.Body.String(), "2024-06-11")
}

func (suite *BookingHandlerTestSuite) TestGetBooking_NotFound() {
	suite.mockBookingService.On("GetBookingByID", mock.Anything, "missing").
		Return(nil, fmt.Errorf("%w: booking missing", apperrors.ErrNotFound)).Once()

	w := suite.performJSON(http.MethodGet, "/api/v1/bookings/missing", nil)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *BookingHandlerTestSuite) TestConfirmBooking_Success() {
	suite.mockBookingService.On("ConfirmBooking", mock.Anything, "booking-1").
		Return(sampleBooking(domain.StateConfirmed), nil).Once()

	w := suite.performJSON(http.MethodPost, "/api/v1/bookings/booking-1/confirm", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.BookingResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("CONFIRMED", resp.State)
}

func (suite *BookingHandlerTestSuite) TestConfirmBooking_InvalidTransitionMapsToConflict() {
	suite.mockBookingService.On("ConfirmBooking", mock.Anything, "booking-1").
		Return(nil, fmt.Errorf("%w: cannot apply CONFIRM", apperrors.ErrInvalidTransition)).Once()

	w := suite.performJSON(http.MethodPost, "/api/v1/bookings/booking-1/confirm", nil)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *BookingHandlerTestSuite) TestCheckIn_Success() {
	checkedIn := sampleBooking(domain.StateCheckedIn)
	checkedIn.FolioRef = "folio-9"
	suite.mockBookingService.On("CheckIn", mock.Anything, "booking-1", mustDate("2024-06-10")).
		Return(checkedIn, nil).Once()

	w := suite.performJSON(http.MethodPost, "/api/v1/bookings/booking-1/check-in",
		map[string]any{"currentDate": "2024-06-10"})

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.BookingResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("CHECKED_IN", resp.State)
	suite.Equal("folio-9", resp.FolioRef)
}

func (suite *BookingHandlerTestSuite) TestCheckIn_MalformedDateRejected() {
	w := suite.performJSON(http.MethodPost, "/api/v1/bookings/booking-1/check-in",
		map[string]any{"currentDate": "tomorrow"})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockBookingService.AssertNotCalled(suite.T(), "CheckIn")
}

func (suite *BookingHandlerTestSuite) TestCancelBooking_ConcurrentModificationMapsToConflict() {
	suite.mockBookingService.On("CancelBooking", mock.Anything, "booking-1").
		Return(nil, fmt.Errorf("%w: booking booking-1", apperrors.ErrConcurrentModification)).Once()

	w := suite.performJSON(http.MethodPost, "/api/v1/bookings/booking-1/cancel", nil)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *BookingHandlerTestSuite) TestCheckOut_Success() {
	suite.mockBookingService.On("CheckOut", mock.Anything, "booking-1").
		Return(sampleBooking(domain.StateCheckedOut), nil).Once()

	w := suite.performJSON(http.MethodPost, "/api/v1/bookings/booking-1/check-out", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.BookingResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("CHECKED_OUT", resp.State)
}

func (suite *BookingHandlerTestSuite) TestSearchAvailability_Success() {
	rng := calendar.NewStayRange(mustDate("2024-06-10"), mustDate("2024-06-12"))
	nights := []domain.DateAvailability{
		{Date: mustDate("2024-06-10"), Available: 3},
		{Date: mustDate("2024-06-11"), Available: 0},
	}
	suite.mockInventoryService.On("CheckAvailability", mock.Anything, "deluxe", rng).
		Return(nights, nil).Once()

	w := suite.performJSON(http.MethodGet, "/api/v1/room-types/deluxe/availability?from=2024-06-10&to=2024-06-12", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.AvailabilityResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("deluxe", resp.RoomTypeID)
	suite.Require().Len(resp.Nights, 2)
	suite.Equal(3, resp.Nights[0].Available)
	suite.Equal(0, resp.Nights[1].Available)
}

func (suite *BookingHandlerTestSuite) TestSearchAvailability_MissingDates() {
	w := suite.performJSON(http.MethodGet, "/api/v1/room-types/deluxe/availability", nil)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockInventoryService.AssertNotCalled(suite.T(), "CheckAvailability")
}

func (suite *BookingHandlerTestSuite) TestRunAudit_Success() {
	run := &domain.AuditRun{
		AuditRunID:     "run-1",
		TargetDate:     mustDate("2024-06-10"),
		Status:         domain.AuditCompleted,
		ProcessedCount: 1,
		Outcomes: []domain.AuditOutcome{
			{BookingID: "booking-1", Action: domain.ActionCheckOut},
		},
	}
	suite.mockAuditService.On("RunAudit", mock.Anything, mustDate("2024-06-10")).Return(run, nil).Once()

	w := suite.performJSON(http.MethodPost, "/api/v1/audit-runs/", map[string]any{"targetDate": "2024-06-10"})

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.AuditRunResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("COMPLETED", resp.Status)
	suite.Require().Len(resp.Outcomes, 1)
	suite.Equal("CHECK_OUT", resp.Outcomes[0].Action)
}

func (suite *BookingHandlerTestSuite) TestRunAudit_AlreadyRunningMapsToConflict() {
	suite.mockAuditService.On("RunAudit", mock.Anything, mustDate("2024-06-10")).
		Return(nil, fmt.Errorf("%w: target date 2024-06-10", apperrors.ErrAuditRunning)).Once()

	w := suite.performJSON(http.MethodPost, "/api/v1/audit-runs/", map[string]any{"targetDate": "2024-06-10"})

	suite.Equal(http.StatusConflict, w.Code)
}
