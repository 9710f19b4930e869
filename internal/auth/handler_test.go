package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/go-chi/chi"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/frahmantamala/smartsupply/internal/user"
)

type errorBody struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

var _ = ginkgo.Describe("Auth HTTP flow", func() {
	var (
		router   http.Handler
		mockRepo *mockDirectory
		metrics  *Metrics
		attached *user.User
	)

	do := func(method, path, token string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			gomega.Expect(json.NewEncoder(&buf).Encode(body)).To(gomega.Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	decodeError := func(rec *httptest.ResponseRecorder) errorBody {
		var body errorBody
		gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(gomega.Succeed())
		return body
	}

	login := func(email, password string) string {
		rec := do(http.MethodPost, "/auth/login", "", LoginDTO{Email: email, Password: password})
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		var resp LoginResponse
		gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(gomega.Succeed())
		return resp.AccessToken
	}

	register := func(email, role string) *user.User {
		dto := validRegistration()
		dto.Email = email
		dto.Role = role
		rec := do(http.MethodPost, "/auth/register", "", dto)
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusCreated))
		var created user.User
		gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &created)).To(gomega.Succeed())
		return &created
	}

	ginkgo.BeforeEach(func() {
		mockRepo = newMockDirectory()
		attached = nil
		metrics = NewMetrics(prometheus.NewRegistry())
		tokenGen := NewJWTTokenGenerator(testSecret, time.Hour, 0)
		service := NewService(mockRepo, NewArgon2Hasher(fastArgon2Params()), tokenGen, nil, metrics)
		handler := NewHandler(service)
		userHandler := user.NewHandler()
		rbac := NewRBACAuthorization(nil, metrics)

		r := chi.NewRouter()
		r.Post("/auth/register", handler.Register)
		r.Post("/auth/login", handler.Login)
		r.Group(func(r chi.Router) {
			r.Use(handler.AuthMiddleware)
			r.Get("/auth/profile", userHandler.GetCurrentUser)
			r.Get("/auth/permissions", handler.Permissions)
			r.Get("/inspect", func(w http.ResponseWriter, r *http.Request) {
				attached, _ = UserFromContext(r.Context())
				w.WriteHeader(http.StatusNoContent)
			})
			r.With(rbac.RequireManageWarehouses()).Post("/warehouses", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusCreated)
			})
		})
		// registered without AuthMiddleware on purpose
		r.With(rbac.RequireViewWarehouses()).Get("/unguarded", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		router = r
	})

	ginkgo.It("should register, log in and read the profile", func() {
		// Given
		rec := do(http.MethodPost, "/auth/register", "", validRegistration())
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusCreated))
		gomega.Expect(rec.Body.String()).ToNot(gomega.ContainSubstring("password"))
		gomega.Expect(rec.Body.String()).ToNot(gomega.ContainSubstring("argon2"))

		// When
		token := login("a@x.com", "longenough1")
		rec = do(http.MethodGet, "/auth/profile", token, nil)

		// Then
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		var profile map[string]interface{}
		gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &profile)).To(gomega.Succeed())
		gomega.Expect(profile).To(gomega.HaveKeyWithValue("role", "MANAGER"))
		gomega.Expect(profile).To(gomega.HaveKeyWithValue("email", "a@x.com"))
		gomega.Expect(profile).To(gomega.HaveKeyWithValue("first_name", "A"))
		gomega.Expect(profile).ToNot(gomega.HaveKey("password_hash"))
		gomega.Expect(profile).ToNot(gomega.HaveKey("PasswordHash"))

		// tampered signature
		rec = do(http.MethodGet, "/auth/profile", tamper(token), nil)
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
	})

	ginkgo.It("should attach the user to the request without its password hash", func() {
		// Given
		registered := register("a@x.com", "MANAGER")
		token := login("a@x.com", "longenough1")

		// When
		rec := do(http.MethodGet, "/inspect", token, nil)

		// Then
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNoContent))
		gomega.Expect(attached).ToNot(gomega.BeNil())
		gomega.Expect(attached.ID).To(gomega.Equal(registered.ID))
		gomega.Expect(attached.PasswordHash).To(gomega.BeEmpty())
		gomega.Expect(mockRepo.byID[registered.ID].PasswordHash).ToNot(gomega.BeEmpty())
	})

	ginkgo.It("should serve the profile from the request user", func() {
		// Given
		registered := register("a@x.com", "MANAGER")
		token := login("a@x.com", "longenough1")
		mockRepo.setRole(registered.ID, string(RoleWarehouseOp))

		// When
		rec := do(http.MethodGet, "/auth/profile", token, nil)

		// Then
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		var profile map[string]interface{}
		gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &profile)).To(gomega.Succeed())
		gomega.Expect(profile).To(gomega.HaveKeyWithValue("role", string(RoleWarehouseOp)))
		gomega.Expect(profile).To(gomega.HaveKeyWithValue("id", registered.ID.String()))
	})

	ginkgo.It("should return 409 for a duplicate registration", func() {
		register("a@x.com", "MANAGER")

		rec := do(http.MethodPost, "/auth/register", "", validRegistration())

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusConflict))
		gomega.Expect(decodeError(rec).Error.Message).To(gomega.Equal("User with this email already exists"))
		gomega.Expect(mockRepo.count()).To(gomega.Equal(1))
	})

	ginkgo.It("should return 400 for a malformed body", func() {
		req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString("{not json"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		gomega.Expect(decodeError(rec).Error.Code).To(gomega.Equal("INVALID_REQUEST_BODY"))
	})

	ginkgo.It("should answer identically for an unknown email and a wrong password", func() {
		register("a@x.com", "MANAGER")

		unknown := do(http.MethodPost, "/auth/login", "", LoginDTO{Email: "b@x.com", Password: "longenough1"})
		wrong := do(http.MethodPost, "/auth/login", "", LoginDTO{Email: "a@x.com", Password: "wrongpassword"})

		gomega.Expect(unknown.Code).To(gomega.Equal(http.StatusUnauthorized))
		gomega.Expect(wrong.Code).To(gomega.Equal(http.StatusUnauthorized))
		gomega.Expect(unknown.Body.String()).To(gomega.Equal(wrong.Body.String()))
		gomega.Expect(decodeError(unknown).Error.Message).To(gomega.Equal("Invalid email or password"))
		gomega.Expect(testutil.ToFloat64(metrics.LoginAttemptsTotal.WithLabelValues(outcomeInvalidCredential))).To(gomega.Equal(2.0))
	})

	ginkgo.It("should return 401 without a token", func() {
		rec := do(http.MethodGet, "/auth/profile", "", nil)

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		gomega.Expect(decodeError(rec).Error.Code).To(gomega.Equal("MISSING_TOKEN"))
	})

	ginkgo.It("should accept a lower-case bearer scheme", func() {
		register("a@x.com", "MANAGER")
		token := login("a@x.com", "longenough1")

		req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
		req.Header.Set("Authorization", "  bearer "+token+" ")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
	})

	ginkgo.It("should return 401 once the user has been deleted", func() {
		created := register("a@x.com", "MANAGER")
		token := login("a@x.com", "longenough1")
		mockRepo.delete(created.ID)

		rec := do(http.MethodGet, "/auth/profile", token, nil)

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		gomega.Expect(decodeError(rec).Error.Message).To(gomega.Equal("User no longer exists"))
	})

	ginkgo.It("should return the permission set of the current role", func() {
		register("p@x.com", "PROCUREMENT")
		token := login("p@x.com", "longenough1")

		rec := do(http.MethodGet, "/auth/permissions", token, nil)

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		var perms map[string]bool
		gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &perms)).To(gomega.Succeed())
		gomega.Expect(perms).To(gomega.HaveLen(12))
		gomega.Expect(perms).To(gomega.HaveKeyWithValue("canManageSuppliers", true))
		gomega.Expect(perms).To(gomega.HaveKeyWithValue("canAdjustStock", false))
	})

	ginkgo.Describe("permission gate", func() {
		ginkgo.It("should return 403 when the role lacks the capability", func() {
			register("op@x.com", "WAREHOUSE_OP")
			token := login("op@x.com", "longenough1")

			rec := do(http.MethodPost, "/warehouses", token, nil)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
			body := decodeError(rec)
			gomega.Expect(body.Error.Type).To(gomega.Equal("FORBIDDEN"))
			gomega.Expect(body.Error.Code).To(gomega.Equal("INSUFFICIENT_PERMISSIONS"))
			gomega.Expect(testutil.ToFloat64(metrics.AuthorizationDenials.WithLabelValues(string(CanManageWarehouses)))).To(gomega.Equal(1.0))
		})

		ginkgo.It("should pass when the role has the capability", func() {
			register("m@x.com", "MANAGER")
			token := login("m@x.com", "longenough1")

			rec := do(http.MethodPost, "/warehouses", token, nil)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusCreated))
		})

		ginkgo.It("should use the current role rather than the one in the token", func() {
			created := register("m@x.com", "MANAGER")
			token := login("m@x.com", "longenough1")
			mockRepo.setRole(created.ID, "WAREHOUSE_OP")

			rec := do(http.MethodPost, "/warehouses", token, nil)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
		})

		ginkgo.It("should return 401 rather than 403 when no user is attached", func() {
			rec := do(http.MethodGet, "/unguarded", "", nil)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		})
	})
})
