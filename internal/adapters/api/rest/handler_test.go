package rest_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prizmamta/metropole/internal/adapters/api/rest"
	"github.com/prizmamta/metropole/internal/adapters/gateway/mercadopago"
	"github.com/prizmamta/metropole/internal/adapters/store/errstore"
	"github.com/prizmamta/metropole/internal/adapters/store/model"
	"github.com/prizmamta/metropole/internal/core/metropole"
	mockgateway "github.com/prizmamta/metropole/internal/mocks/gateway"
	mockstore "github.com/prizmamta/metropole/internal/mocks/store"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

const testMTASecret = "shared-secret"

func newTestServer(t *testing.T, storeMock *mockstore.MockStore, gatewayMock *mockgateway.MockPaymentGateway) *rest.Server {
	t.Helper()

	service := metropole.New(&metropole.Config{
		AppURL:     "https://shop.example",
		CurrencyID: "BRL",
		SessionTTL: time.Hour,
	}, storeMock, gatewayMock)

	server, err := rest.New(service, rest.Configure(&rest.Config{
		Address:   ":8080",
		MTASecret: testMTASecret,
	}))
	assert.NoError(t, err)

	return server
}

// expectSession wires the store calls checkAuth makes for a valid cookie.
func expectSession(storeMock *mockstore.MockStore, token string, user model.User) {
	storeMock.EXPECT().GetSession(gomock.Any(), token).
		Return(model.Session{Token: token, UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour)}, nil)
	storeMock.EXPECT().GetUserByID(gomock.Any(), user.ID).
		Return(user, nil)
}

func sessionCookie(token string) *http.Cookie {
	return &http.Cookie{Name: "session_token", Value: token}
}

func TestServer_handlerRegister(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		status   int
	}{
		{
			name:     "correct",
			username: "player",
			password: "pass",
			status:   http.StatusOK,
		},
		{
			name:     "empty",
			username: "",
			password: "",
			status:   http.StatusBadRequest,
		},
		{
			name:     "not unique",
			username: "player",
			password: "pass",
			status:   http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			storeMock := mockstore.NewMockStore(ctrl)
			gatewayMock := mockgateway.NewMockPaymentGateway(ctrl)

			if tt.status == http.StatusConflict {
				storeMock.EXPECT().
					RegisterUser(gomock.Any(), tt.username, gomock.Any()).
					Return(model.User{}, errstore.ErrLoginNotUnique).
					Times(1)
			}
			if tt.status == http.StatusOK {
				storeMock.EXPECT().
					RegisterUser(gomock.Any(), tt.username, gomock.Any()).
					Return(model.User{ID: 1, Login: tt.username}, nil).
					Times(1)
				storeMock.EXPECT().
					DeleteUserSessions(gomock.Any(), uint(1)).
					Return(nil).
					Times(1)
				storeMock.EXPECT().
					CreateSession(gomock.Any(), uint(1), gomock.Any(), gomock.Any()).
					Return(nil).
					Times(1)
			}

			server := newTestServer(t, storeMock, gatewayMock)

			w := httptest.NewRecorder()
			body := strings.NewReader(fmt.Sprintf(`{"username":%q, "password":%q}`, tt.username, tt.password))
			r := httptest.NewRequest(http.MethodPost, "/api/user/register", body)

			server.Engine().ServeHTTP(w, r)

			result := w.Result()
			assert.Equal(t, tt.status, result.StatusCode)

			if tt.status == http.StatusOK {
				cookies := result.Cookies()
				assert.Len(t, cookies, 1)
				assert.Equal(t, "session_token", cookies[0].Name)
				assert.NotEmpty(t, cookies[0].Value)
				assert.True(t, cookies[0].HttpOnly)
			}

			assert.NoError(t, result.Body.Close())
		})
	}
}

func TestServer_handlerLogin(t *testing.T) {
	hashPass, err := metropole.HashPassword("pass")
	assert.NoError(t, err)

	tests := []struct {
		name     string
		username string
		password string
		status   int
		prepare  func(storeMock *mockstore.MockStore)
	}{
		{
			name:     "correct",
			username: "player",
			password: "pass",
			status:   http.StatusOK,
			prepare: func(storeMock *mockstore.MockStore) {
				storeMock.EXPECT().GetUserByLogin(gomock.Any(), "player").
					Return(model.User{ID: 1, Login: "player", PasswordHash: hashPass}, nil)
				storeMock.EXPECT().DeleteUserSessions(gomock.Any(), uint(1)).Return(nil)
				storeMock.EXPECT().CreateSession(gomock.Any(), uint(1), gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name:     "wrong password",
			username: "player",
			password: "other",
			status:   http.StatusUnauthorized,
			prepare: func(storeMock *mockstore.MockStore) {
				storeMock.EXPECT().GetUserByLogin(gomock.Any(), "player").
					Return(model.User{ID: 1, Login: "player", PasswordHash: hashPass}, nil)
			},
		},
		{
			name:     "unknown user",
			username: "ghost",
			password: "pass",
			status:   http.StatusUnauthorized,
			prepare: func(storeMock *mockstore.MockStore) {
				storeMock.EXPECT().GetUserByLogin(gomock.Any(), "ghost").
					Return(model.User{}, errstore.ErrNotFoundData)
			},
		},
		{
			name:     "empty",
			username: "",
			password: "",
			status:   http.StatusBadRequest,
			prepare:  func(storeMock *mockstore.MockStore) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			storeMock := mockstore.NewMockStore(ctrl)
			gatewayMock := mockgateway.NewMockPaymentGateway(ctrl)
			tt.prepare(storeMock)

			server := newTestServer(t, storeMock, gatewayMock)

			w := httptest.NewRecorder()
			body := strings.NewReader(fmt.Sprintf(`{"username":%q, "password":%q}`, tt.username, tt.password))
			r := httptest.NewRequest(http.MethodPost, "/api/user/login", body)

			server.Engine().ServeHTTP(w, r)

			result := w.Result()
			assert.Equal(t, tt.status, result.StatusCode)
			assert.NoError(t, result.Body.Close())
		})
	}
}

func TestServer_handlerBalance(t *testing.T) {
	t.Run("authenticated", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		storeMock := mockstore.NewMockStore(ctrl)
		gatewayMock := mockgateway.NewMockPaymentGateway(ctrl)
		expectSession(storeMock, "tok", model.User{ID: 1, Login: "player", Diamonds: 290})

		server := newTestServer(t, storeMock, gatewayMock)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/user/balance", nil)
		r.AddCookie(sessionCookie("tok"))

		server.Engine().ServeHTTP(w, r)

		result := w.Result()
		assert.Equal(t, http.StatusOK, result.StatusCode)
		assert.Equal(t, "no-store", result.Header.Get("Cache-Control"))
		assert.JSONEq(t, `{"diamonds":290}`, w.Body.String())
		assert.NoError(t, result.Body.Close())
	})

	t.Run("no cookie", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		storeMock := mockstore.NewMockStore(ctrl)
		gatewayMock := mockgateway.NewMockPaymentGateway(ctrl)

		server := newTestServer(t, storeMock, gatewayMock)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/user/balance", nil)

		server.Engine().ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Result().StatusCode)
	})
}

func TestServer_handlerPackages(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	storeMock := mockstore.NewMockStore(ctrl)
	gatewayMock := mockgateway.NewMockPaymentGateway(ctrl)
	storeMock.EXPECT().GetActivePackages(gomock.Any()).Return([]*model.DiamondPackage{
		{ID: 1, Name: "290 Diamantes", Diamonds: 290, PriceCents: 6900, Active: true},
		{ID: 2, Name: "575 Diamantes", Diamonds: 575, PriceCents: 12900, Active: true},
	}, nil)

	server := newTestServer(t, storeMock, gatewayMock)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/packages", nil)

	server.Engine().ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
	assert.JSONEq(t, `[
		{"id":1,"name":"290 Diamantes","diamonds":290,"price_cents":6900},
		{"id":2,"name":"575 Diamantes","diamonds":575,"price_cents":12900}
	]`, w.Body.String())
}

func TestServer_handlerCreateCheckout(t *testing.T) {
	user := model.User{ID: 1, Login: "player"}
	pkg := model.DiamondPackage{ID: 1, Name: "290 Diamantes", Diamonds: 290, PriceCents: 6900, Active: true}

	tests := []struct {
		name    string
		cookie  bool
		body    string
		status  int
		errCode string
		prepare func(storeMock *mockstore.MockStore, gatewayMock *mockgateway.MockPaymentGateway)
	}{
		{
			name:   "ok",
			cookie: true,
			body:   `{"packageId":1}`,
			status: http.StatusOK,
			prepare: func(storeMock *mockstore.MockStore, gatewayMock *mockgateway.MockPaymentGateway) {
				expectSession(storeMock, "tok", user)
				storeMock.EXPECT().GetPackage(gomock.Any(), uint(1)).Return(pkg, nil)
				storeMock.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).Return(nil)
				gatewayMock.EXPECT().CreatePreference(gomock.Any(), gomock.Any()).
					Return(mercadopago.Preference{ID: "pref-1", InitPoint: "https://mp.example/redirect"}, nil)
				storeMock.EXPECT().SetOrderPreference(gomock.Any(), gomock.Any(), "pref-1").Return(nil)
			},
		},
		{
			name:    "no session performs no gateway call and no insert",
			cookie:  false,
			body:    `{"packageId":1}`,
			status:  http.StatusUnauthorized,
			errCode: "unauthorized",
			prepare: func(storeMock *mockstore.MockStore, gatewayMock *mockgateway.MockPaymentGateway) {},
		},
		{
			name:    "unknown package creates no order",
			cookie:  true,
			body:    `{"packageId":99}`,
			status:  http.StatusBadRequest,
			errCode: "invalid_package",
			prepare: func(storeMock *mockstore.MockStore, gatewayMock *mockgateway.MockPaymentGateway) {
				expectSession(storeMock, "tok", user)
				storeMock.EXPECT().GetPackage(gomock.Any(), uint(99)).
					Return(model.DiamondPackage{}, errstore.ErrNotFoundData)
			},
		},
		{
			name:    "inactive package",
			cookie:  true,
			body:    `{"packageId":1}`,
			status:  http.StatusBadRequest,
			errCode: "invalid_package",
			prepare: func(storeMock *mockstore.MockStore, gatewayMock *mockgateway.MockPaymentGateway) {
				inactive := pkg
				inactive.Active = false
				expectSession(storeMock, "tok", user)
				storeMock.EXPECT().GetPackage(gomock.Any(), uint(1)).Return(inactive, nil)
			},
		},
		{
			name:    "missing package id",
			cookie:  true,
			body:    `{}`,
			status:  http.StatusBadRequest,
			errCode: "invalid_package",
			prepare: func(storeMock *mockstore.MockStore, gatewayMock *mockgateway.MockPaymentGateway) {
				expectSession(storeMock, "tok", user)
			},
		},
		{
			name:    "gateway rejects",
			cookie:  true,
			body:    `{"packageId":1}`,
			status:  http.StatusBadGateway,
			errCode: "gateway_error",
			prepare: func(storeMock *mockstore.MockStore, gatewayMock *mockgateway.MockPaymentGateway) {
				expectSession(storeMock, "tok", user)
				storeMock.EXPECT().GetPackage(gomock.Any(), uint(1)).Return(pkg, nil)
				storeMock.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).Return(nil)
				gatewayMock.EXPECT().CreatePreference(gomock.Any(), gomock.Any()).
					Return(mercadopago.Preference{}, fmt.Errorf("mp rejected"))
				storeMock.EXPECT().MarkOrderError(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			storeMock := mockstore.NewMockStore(ctrl)
			gatewayMock := mockgateway.NewMockPaymentGateway(ctrl)
			tt.prepare(storeMock, gatewayMock)

			server := newTestServer(t, storeMock, gatewayMock)

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/api/pix/create", strings.NewReader(tt.body))
			if tt.cookie {
				r.AddCookie(sessionCookie("tok"))
			}

			server.Engine().ServeHTTP(w, r)

			result := w.Result()
			assert.Equal(t, tt.status, result.StatusCode)

			if tt.status == http.StatusOK {
				assert.Contains(t, w.Body.String(), `"checkout_url":"https://mp.example/redirect"`)
				assert.Contains(t, w.Body.String(), `"order_id"`)
			}
			if tt.errCode != "" {
				assert.Contains(t, w.Body.String(), tt.errCode)
			}

			assert.NoError(t, result.Body.Close())
		})
	}
}

func TestServer_handlerMTASpend(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		body    string
		status  int
		errCode string
		prepare func(storeMock *mockstore.MockStore)
	}{
		{
			name:   "ok",
			secret: testMTASecret,
			body:   `{"account":"player","amount":50,"reason":"shop"}`,
			status: http.StatusOK,
			prepare: func(storeMock *mockstore.MockStore) {
				storeMock.EXPECT().SpendUserDiamonds(gomock.Any(), "player", int64(50)).
					Return(model.User{ID: 1, Login: "player", Diamonds: 240}, nil)
			},
		},
		{
			name:    "wrong secret",
			secret:  "nope",
			body:    `{"account":"player","amount":50}`,
			status:  http.StatusUnauthorized,
			errCode: "unauthorized",
			prepare: func(storeMock *mockstore.MockStore) {},
		},
		{
			name:    "insufficient funds",
			secret:  testMTASecret,
			body:    `{"account":"player","amount":5000}`,
			status:  http.StatusConflict,
			errCode: "insufficient_funds",
			prepare: func(storeMock *mockstore.MockStore) {
				storeMock.EXPECT().SpendUserDiamonds(gomock.Any(), "player", int64(5000)).
					Return(model.User{}, errstore.ErrBalanceNotEnough)
			},
		},
		{
			name:    "lost race asks for retry",
			secret:  testMTASecret,
			body:    `{"account":"player","amount":50}`,
			status:  http.StatusConflict,
			errCode: "concurrency_retry",
			prepare: func(storeMock *mockstore.MockStore) {
				storeMock.EXPECT().SpendUserDiamonds(gomock.Any(), "player", int64(50)).
					Return(model.User{}, errstore.ErrConcurrentUpdate)
			},
		},
		{
			name:    "unknown account",
			secret:  testMTASecret,
			body:    `{"account":"ghost","amount":50}`,
			status:  http.StatusNotFound,
			errCode: "user_not_found",
			prepare: func(storeMock *mockstore.MockStore) {
				storeMock.EXPECT().SpendUserDiamonds(gomock.Any(), "ghost", int64(50)).
					Return(model.User{}, errstore.ErrNotFoundData)
			},
		},
		{
			name:    "non-positive amount",
			secret:  testMTASecret,
			body:    `{"account":"player","amount":0}`,
			status:  http.StatusBadRequest,
			errCode: "invalid_amount",
			prepare: func(storeMock *mockstore.MockStore) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			storeMock := mockstore.NewMockStore(ctrl)
			gatewayMock := mockgateway.NewMockPaymentGateway(ctrl)
			tt.prepare(storeMock)

			server := newTestServer(t, storeMock, gatewayMock)

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/api/mta/diamonds/spend", strings.NewReader(tt.body))
			r.Header.Set("Content-Type", "application/json")
			r.Header.Set("X-Prizma-Secret", tt.secret)

			server.Engine().ServeHTTP(w, r)

			result := w.Result()
			assert.Equal(t, tt.status, result.StatusCode)

			if tt.status == http.StatusOK {
				assert.Contains(t, w.Body.String(), `"newBalance":240`)
				assert.Contains(t, w.Body.String(), `"spent":50`)
			}
			if tt.errCode != "" {
				assert.Contains(t, w.Body.String(), tt.errCode)
			}

			assert.NoError(t, result.Body.Close())
		})
	}
}

func TestServer_handlerMTABalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	storeMock := mockstore.NewMockStore(ctrl)
	gatewayMock := mockgateway.NewMockPaymentGateway(ctrl)
	storeMock.EXPECT().GetUserByLogin(gomock.Any(), "player").
		Return(model.User{ID: 1, Login: "player", Diamonds: 290}, nil)

	server := newTestServer(t, storeMock, gatewayMock)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/mta/diamonds/balance", strings.NewReader(`{"account":"player"}`))
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("X-Prizma-Secret", testMTASecret)

	server.Engine().ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
	assert.Contains(t, w.Body.String(), `"diamonds":290`)
}
