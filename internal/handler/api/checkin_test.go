//go:build unit

package api_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"cinema-booking/internal/domain/booking"
	"cinema-booking/internal/domain/user"
	"cinema-booking/internal/handler/api"
	reqdto "cinema-booking/internal/handler/dto/request"
	resdto "cinema-booking/internal/handler/dto/response"
	"cinema-booking/internal/usecase/commands"
	"cinema-booking/tests/common/builder"
	"cinema-booking/tests/common/httptest"
	commandsmock "cinema-booking/tests/mock/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type CheckInHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockCheckInCommands
	operator     user.Actor
}

func (s *CheckInHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockCheckInCommands(s.mockCtrl)
	handler := api.NewCheckInHandler(s.mockCommands)

	s.operator = builder.NewUserBuilder().AsOperator().BuildActor()
	s.router.POST("/check-ins", asActor(s.operator.ID, s.operator.Role), handler.Redeem)
	s.router.POST("/anonymous/check-ins", handler.Redeem)
}

func (s *CheckInHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestCheckInHandlerSuite(t *testing.T) {
	suite.Run(t, new(CheckInHandlerTestSuite))
}

func (s *CheckInHandlerTestSuite) TestRedeem() {
	url := "/check-ins"
	token := "tok_0123456789abcdef0123456789abcdef"
	reqBody := reqdto.CheckInRequest{Token: token}
	bookingID := uuid.New()
	admittedAt := time.Date(2026, 3, 17, 18, 45, 0, 0, time.UTC)

	s.Run("success: every outcome is a 200 with admitted flag", func() {
		testCases := []struct {
			name     string
			result   *commands.RedeemResult
			admitted bool
		}{
			{
				name:     "admitted",
				result:   &commands.RedeemResult{Outcome: booking.RedeemAdmitted, BookingID: &bookingID, Seats: 2, EventTitle: "Late Show", RedeemedAt: &admittedAt},
				admitted: true,
			},
			{
				name:   "already redeemed keeps the first admission time",
				result: &commands.RedeemResult{Outcome: booking.RedeemAlreadyRedeemed, BookingID: &bookingID, Seats: 2, EventTitle: "Late Show", RedeemedAt: &admittedAt},
			},
			{name: "invalid token", result: &commands.RedeemResult{Outcome: booking.RedeemInvalidToken}},
			{name: "not confirmed", result: &commands.RedeemResult{Outcome: booking.RedeemNotConfirmed, BookingID: &bookingID}},
			{name: "wrong day", result: &commands.RedeemResult{Outcome: booking.RedeemWrongDay, BookingID: &bookingID}},
		}
		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().Redeem(gomock.Any(), token, s.operator).Return(tc.result, nil).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")

				var response resdto.CheckInResponse
				httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
				s.Equal(tc.result.Outcome.String(), response.Outcome)
				s.Equal(tc.admitted, response.Admitted)
				if tc.result.RedeemedAt != nil {
					s.Require().NotNil(response.RedeemedAt)
					s.True(admittedAt.Equal(*response.RedeemedAt))
				}
			})
		}
	})

	s.Run("error: 400 on invalid body", func() {
		testCases := []struct {
			name string
			body any
		}{
			{name: "missing token", body: map[string]any{}},
			{name: "empty token", body: map[string]any{"token": ""}},
			{name: "oversized token", body: map[string]any{"token": strings.Repeat("a", 4097)}},
		}
		for _, tc := range testCases {
			s.Run(tc.name, func() {
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, tc.body, "")
				httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request format")
			})
		}
	})

	s.Run("error: 401 without identity", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/anonymous/check-ins", reqBody, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Unauthorized")
	})

	s.Run("error: maps usecase errors to proper statuses", func() {
		testCases := []struct {
			name           string
			commandsError  error
			expectedStatus int
			expectedMsg    string
		}{
			{name: "not an operator", commandsError: commands.ErrOperatorRequired, expectedStatus: http.StatusForbidden, expectedMsg: "Operator role required"},
			{name: "database error", commandsError: errors.New("database error"), expectedStatus: http.StatusInternalServerError, expectedMsg: "Internal server error"},
		}
		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().Redeem(gomock.Any(), token, s.operator).Return(nil, tc.commandsError).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")
				httptest.AssertErrorResponse(s.T(), rec, tc.expectedStatus, tc.expectedMsg)
			})
		}
	})
}
