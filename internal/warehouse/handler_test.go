package warehouse_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/smartsupply/internal/transport"
	"github.com/frahmantamala/smartsupply/internal/warehouse"
)

var _ = Describe("Warehouse Handler", func() {
	var (
		router  http.Handler
		service *warehouse.Service
	)

	BeforeEach(func() {
		service = warehouse.NewService(NewMockRepository(), testLogger())
		handler := warehouse.NewHandler(transport.NewBaseHandler(testLogger()), service)

		r := chi.NewRouter()
		r.Get("/warehouses", handler.ListWarehouses)
		r.Post("/warehouses", handler.CreateWarehouse)
		r.Get("/warehouses/{id}", handler.GetWarehouse)
		router = r
	})

	It("should create and fetch a warehouse", func() {
		body, _ := json.Marshal(map[string]interface{}{"name": "Main DC", "location": "Berlin", "type": "PHYSICAL", "capacity": 500})
		req := httptest.NewRequest(http.MethodPost, "/warehouses", bytes.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusCreated))
		var created warehouse.Warehouse
		Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())
		Expect(created.Capacity).To(Equal(500))

		req = httptest.NewRequest(http.MethodGet, "/warehouses/"+created.ID.String(), nil)
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		var fetched warehouse.Warehouse
		Expect(json.NewDecoder(w.Body).Decode(&fetched)).To(Succeed())
		Expect(fetched.ID).To(Equal(created.ID))
		Expect(fetched.Location).To(Equal("Berlin"))
	})

	It("should list warehouses with the total in a header", func() {
		_, err := service.Create(context.Background(), warehouse.CreateWarehouseDTO{Name: "Alpha"})
		Expect(err).NotTo(HaveOccurred())

		req := httptest.NewRequest(http.MethodGet, "/warehouses?page=1&limit=10", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("X-Total-Count")).To(Equal("1"))
		var list []warehouse.Warehouse
		Expect(json.NewDecoder(w.Body).Decode(&list)).To(Succeed())
		Expect(list).To(HaveLen(1))
	})

	It("should return an empty array rather than null", func() {
		req := httptest.NewRequest(http.MethodGet, "/warehouses", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(HavePrefix("[]"))
	})

	It("should answer an out-of-range page with an empty array", func() {
		req := httptest.NewRequest(http.MethodGet, "/warehouses?page=9223372036854775807&limit=100", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(HavePrefix("[]"))
	})

	It("should return 400 for a malformed id and 404 for an unknown one", func() {
		req := httptest.NewRequest(http.MethodGet, "/warehouses/not-a-uuid", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		Expect(w.Code).To(Equal(http.StatusBadRequest))

		req = httptest.NewRequest(http.MethodGet, "/warehouses/6f1c1b8e-8d1e-4b7a-9d55-3f1f0a0c9e42", nil)
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("should return 409 for a duplicate name", func() {
		_, err := service.Create(context.Background(), warehouse.CreateWarehouseDTO{Name: "Alpha"})
		Expect(err).NotTo(HaveOccurred())

		req := httptest.NewRequest(http.MethodPost, "/warehouses", bytes.NewBufferString(`{"name":"Alpha"}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusConflict))
	})
})
