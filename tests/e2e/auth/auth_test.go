//go:build e2e

package auth_test

import (
	"net/http"
	"testing"

	"cinema-booking/internal/domain/user"
	"cinema-booking/internal/handler/dto/request"
	resdto "cinema-booking/internal/handler/dto/response"
	"cinema-booking/internal/pkg/cookie"
	"cinema-booking/tests/common/authtest"
	"cinema-booking/tests/common/dbtest"
	"cinema-booking/tests/common/httptest"
	"cinema-booking/tests/e2e"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	loginURL   = "/api/auth/login"
	logoutURL  = "/api/auth/logout"
	refreshURL = "/api/auth/refresh"
	meURL      = "/api/auth/me"
)

type authSuite struct {
	e2e.SharedSuite
	jwtHelper *authtest.JWTHelper
}

func TestAuthSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(authSuite))
}

func (s *authSuite) SetupSuite() {
	s.SharedSuite.SetupSuite()
	s.jwtHelper = authtest.NewJWTHelper(s.Config.JWT)
}

func (s *authSuite) SetupSubTest() {
	s.SharedSuite.SetupSubTest()

	// テスト用ユーザーを作成
	dbtest.CreateTestUser(s.T(), s.DB, "customer@example.com", string(user.RoleCustomer))
	dbtest.CreateTestUser(s.T(), s.DB, "operator@example.com", string(user.RoleOperator))
	dbtest.CreateTestUser(s.T(), s.DB, "admin@example.com", string(user.RoleAdmin))

	// 非アクティブユーザーを作成
	inactiveID := dbtest.CreateTestUser(s.T(), s.DB, "inactive@example.com", string(user.RoleCustomer))
	dbtest.DeactivateUser(s.T(), s.DB, inactiveID)
}

func (s *authSuite) TestLogin() {
	tests := []struct {
		name           string
		email          string
		password       string
		expectedStatus int
		description    string
	}{
		{
			name:           "正常なログイン",
			email:          "customer@example.com",
			password:       "password123",
			expectedStatus: http.StatusOK,
			description:    "有効な認証情報でログインできること",
		},
		{
			name:           "オペレーターのログイン",
			email:          "operator@example.com",
			password:       "password123",
			expectedStatus: http.StatusOK,
			description:    "オペレーターもログインできること",
		},
		{
			name:           "存在しないユーザー",
			email:          "nonexistent@example.com",
			password:       "password123",
			expectedStatus: http.StatusUnauthorized,
			description:    "存在しないユーザーでログインできないこと",
		},
		{
			name:           "間違ったパスワード",
			email:          "customer@example.com",
			password:       "wrongpassword",
			expectedStatus: http.StatusUnauthorized,
			description:    "間違ったパスワードでログインできないこと",
		},
		{
			name:           "非アクティブユーザー",
			email:          "inactive@example.com",
			password:       "password123",
			expectedStatus: http.StatusUnauthorized,
			description:    "非アクティブユーザーはログインできないこと",
		},
		{
			name:           "空のメールアドレス",
			email:          "",
			password:       "password123",
			expectedStatus: http.StatusBadRequest,
			description:    "空のメールアドレスは拒否されること",
		},
		{
			name:           "空のパスワード",
			email:          "customer@example.com",
			password:       "",
			expectedStatus: http.StatusBadRequest,
			description:    "空のパスワードは拒否されること",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			t := s.T()

			reqBody := request.LoginRequest{
				Email:    tt.email,
				Password: tt.password,
			}

			w := httptest.PerformRequest(t, s.Router, http.MethodPost, loginURL, reqBody, "")
			require.Equal(t, tt.expectedStatus, w.Code, tt.description)

			if tt.expectedStatus == http.StatusOK {
				// 成功時のレスポンス形式チェック
				var loginRes resdto.LoginResponse
				httptest.AssertSuccessResponse(t, w, http.StatusOK, &loginRes)
				require.NotEmpty(t, loginRes.AccessToken, "アクセストークンが空")
				require.NotNil(t, loginRes.User)
				require.Equal(t, tt.email, loginRes.User.Email)

				// トークンはCookieでも返る
				require.NotNil(t, httptest.ExtractCookie(w, cookie.AccessTokenCookieName), "アクセストークンCookieがない")
				require.NotNil(t, httptest.ExtractCookie(w, cookie.RefreshTokenCookieName), "リフレッシュトークンCookieがない")

				// last_loginが更新されることを確認
				var lastLogin any
				err := s.DB.QueryRow(t.Context(), "SELECT last_login FROM users WHERE email = $1 AND is_active = true", tt.email).Scan(&lastLogin)
				require.NoError(t, err)
				require.NotNil(t, lastLogin, "last_loginが更新されていない")
			}
		})
	}
}

func (s *authSuite) TestRefresh() {
	loginRefreshCookie := func() *http.Cookie {
		w := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, loginURL,
			request.LoginRequest{Email: "customer@example.com", Password: "password123"}, "")
		require.Equal(s.T(), http.StatusOK, w.Code, w.Body.String())
		refresh := httptest.ExtractCookie(w, cookie.RefreshTokenCookieName)
		require.NotNil(s.T(), refresh, "リフレッシュトークンCookieがない")
		return refresh
	}

	s.Run("Cookieのリフレッシュトークンで更新", func() {
		t := s.T()
		refresh := loginRefreshCookie()

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, refreshURL, nil, "", httptest.WithCookies(refresh))

		var res resdto.RefreshResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &res)
		require.NotEmpty(t, res.AccessToken, "新しいアクセストークンが空")
		require.NotNil(t, httptest.ExtractCookie(w, cookie.AccessTokenCookieName))
	})

	s.Run("ボディのリフレッシュトークンで更新", func() {
		t := s.T()
		refresh := loginRefreshCookie()

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, refreshURL,
			request.RefreshRequest{RefreshToken: refresh.Value}, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	tests := []struct {
		name           string
		refreshToken   string
		expectedStatus int
		description    string
	}{
		{
			name:           "無効なリフレッシュトークン",
			refreshToken:   "invalid-refresh-token",
			expectedStatus: http.StatusUnauthorized,
			description:    "無効なリフレッシュトークンは拒否されること",
		},
		{
			name:           "空のリフレッシュトークン",
			refreshToken:   "",
			expectedStatus: http.StatusUnauthorized,
			description:    "空のリフレッシュトークンは拒否されること",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			t := s.T()

			w := httptest.PerformRequest(t, s.Router, http.MethodPost, refreshURL,
				request.RefreshRequest{RefreshToken: tt.refreshToken}, "")
			require.Equal(t, tt.expectedStatus, w.Code, tt.description)
		})
	}
}

func (s *authSuite) TestLogout() {
	tests := []struct {
		name           string
		setupToken     func() string
		expectedStatus int
		description    string
	}{
		{
			name: "正常なログアウト",
			setupToken: func() string {
				return authtest.LoginUser(s.T(), s.Router, "customer@example.com", "password123")
			},
			expectedStatus: http.StatusNoContent,
			description:    "有効なトークンでログアウトできること",
		},
		{
			name: "無効なトークン",
			setupToken: func() string {
				return "invalid-token"
			},
			expectedStatus: http.StatusUnauthorized,
			description:    "無効なトークンでログアウトできないこと",
		},
		{
			name: "トークンなし",
			setupToken: func() string {
				return ""
			},
			expectedStatus: http.StatusUnauthorized,
			description:    "トークンなしでログアウトできないこと",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			t := s.T()

			token := tt.setupToken()
			w := httptest.PerformRequest(t, s.Router, http.MethodPost, logoutURL, nil, token)
			require.Equal(t, tt.expectedStatus, w.Code, tt.description)
		})
	}
}

func (s *authSuite) TestMe() {
	tests := []struct {
		name           string
		setupUser      func() (string, string, string) // email, role, token
		expectedStatus int
		description    string
	}{
		{
			name: "管理者ユーザーの情報取得",
			setupUser: func() (string, string, string) {
				email := "admin2@example.com"
				role := string(user.RoleAdmin)
				_, token := authtest.CreateAndLogin(s.T(), s.DB, s.Router, email, role)
				return email, role, token
			},
			expectedStatus: http.StatusOK,
			description:    "管理者ユーザーの情報が取得できること",
		},
		{
			name: "顧客ユーザーの情報取得",
			setupUser: func() (string, string, string) {
				email := "customer2@example.com"
				role := string(user.RoleCustomer)
				_, token := authtest.CreateAndLogin(s.T(), s.DB, s.Router, email, role)
				return email, role, token
			},
			expectedStatus: http.StatusOK,
			description:    "顧客ユーザーの情報が取得できること",
		},
		{
			name: "無効なトークン",
			setupUser: func() (string, string, string) {
				return "", "", "invalid-token"
			},
			expectedStatus: http.StatusUnauthorized,
			description:    "無効なトークンでは情報取得できないこと",
		},
		{
			name: "トークンなし",
			setupUser: func() (string, string, string) {
				return "", "", ""
			},
			expectedStatus: http.StatusUnauthorized,
			description:    "トークンなしでは情報取得できないこと",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			t := s.T()

			email, role, token := tt.setupUser()
			w := httptest.PerformRequest(t, s.Router, http.MethodGet, meURL, nil, token)
			require.Equal(t, tt.expectedStatus, w.Code, tt.description)

			if tt.expectedStatus == http.StatusOK {
				// レスポンス内容をチェック
				responseBody := w.Body.String()
				require.Contains(t, responseBody, email, "レスポンスにメールアドレスが含まれていない")
				require.Contains(t, responseBody, role, "レスポンスにロールが含まれていない")
				require.NotContains(t, responseBody, "password", "レスポンスにパスワード情報が含まれている")
			}
		})
	}
}

func (s *authSuite) TestTokenExpiry() {
	s.Run("期限切れトークンの拒否", func() {
		t := s.T()

		userID := dbtest.CreateTestUser(t, s.DB, "expiry@example.com", string(user.RoleCustomer))
		expiredToken := s.jwtHelper.CreateExpiredToken(t, userID, user.RoleCustomer)

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, meURL, nil, expiredToken)
		require.Equal(t, http.StatusUnauthorized, w.Code, "期限切れトークンは拒否されるべき")
	})
}

func (s *authSuite) TestRoleGuards() {
	s.Run("ロールによるアクセス制御", func() {
		t := s.T()

		_, customerToken := authtest.CreateAndLogin(t, s.DB, s.Router, "guard-customer@example.com", string(user.RoleCustomer))
		_, operatorToken := authtest.CreateAndLogin(t, s.DB, s.Router, "guard-operator@example.com", string(user.RoleOperator))
		_, adminToken := authtest.CreateAndLogin(t, s.DB, s.Router, "guard-admin@example.com", string(user.RoleAdmin))

		checkIn := request.CheckInRequest{Token: "tok_unknown"}
		tests := []struct {
			name           string
			method         string
			path           string
			body           any
			token          string
			expectedStatus int
		}{
			{name: "顧客は入場処理できない", method: http.MethodPost, path: "/api/check-ins", body: checkIn, token: customerToken, expectedStatus: http.StatusForbidden},
			{name: "オペレーターは入場処理できる", method: http.MethodPost, path: "/api/check-ins", body: checkIn, token: operatorToken, expectedStatus: http.StatusOK},
			{name: "管理者は入場処理できる", method: http.MethodPost, path: "/api/check-ins", body: checkIn, token: adminToken, expectedStatus: http.StatusOK},
			{name: "オペレーターは審査一覧を見られない", method: http.MethodGet, path: "/api/admin/payments/review", token: operatorToken, expectedStatus: http.StatusForbidden},
			{name: "管理者は審査一覧を見られる", method: http.MethodGet, path: "/api/admin/payments/review", token: adminToken, expectedStatus: http.StatusOK},
		}

		for _, tc := range tests {
			w := httptest.PerformRequest(t, s.Router, tc.method, tc.path, tc.body, tc.token)
			require.Equal(t, tc.expectedStatus, w.Code, "%s: %s", tc.name, w.Body.String())
		}
	})
}

func (s *authSuite) TestAuthenticationRequired() {
	s.Run("認証が必要なエンドポイント", func() {
		t := s.T()

		endpoints := []struct {
			method string
			path   string
		}{
			{http.MethodPost, logoutURL},
			{http.MethodGet, meURL},
			{http.MethodPost, "/api/checkouts"},
			{http.MethodGet, "/api/bookings"},
			{http.MethodPost, "/api/check-ins"},
		}

		for _, endpoint := range endpoints {
			w := httptest.PerformRequest(t, s.Router, endpoint.method, endpoint.path, nil, "")
			require.Equal(t, http.StatusUnauthorized, w.Code, "認証なしでは拒否されるべき: %s", endpoint.path)
		}
	})
}

func (s *authSuite) TestConcurrentLogin() {
	s.Run("同時ログイン", func() {
		t := s.T()

		email := "concurrent@example.com"
		dbtest.CreateTestUser(t, s.DB, email, string(user.RoleCustomer))

		token1 := authtest.LoginUser(t, s.Router, email, "password123")
		token2 := authtest.LoginUser(t, s.Router, email, "password123")

		// 両方のトークンが有効であることを確認
		w1 := httptest.PerformRequest(t, s.Router, http.MethodGet, meURL, nil, token1)
		w2 := httptest.PerformRequest(t, s.Router, http.MethodGet, meURL, nil, token2)

		require.Equal(t, http.StatusOK, w1.Code, "最初のトークンが無効")
		require.Equal(t, http.StatusOK, w2.Code, "二番目のトークンが無効")
	})
}
