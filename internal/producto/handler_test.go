package producto

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) List(ctx context.Context, page, limit int) (ListResult, error) {
	args := m.Called(ctx, page, limit)
	return args.Get(0).(ListResult), args.Error(1)
}

func (m *MockService) Get(ctx context.Context, id int) (Producto, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Producto), args.Error(1)
}

func (m *MockService) Create(ctx context.Context, p *Producto) (Producto, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(Producto), args.Error(1)
}

func (m *MockService) Update(ctx context.Context, p *Producto) (Producto, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(Producto), args.Error(1)
}

func (m *MockService) Delete(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func newTestMux(h *Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/productos", h.List)
	mux.HandleFunc("GET /api/productos/{id}", h.Get)
	mux.HandleFunc("POST /api/productos", h.Create)
	mux.HandleFunc("PUT /api/productos/{id}", h.Update)
	mux.HandleFunc("DELETE /api/productos/{id}", h.Delete)
	return mux
}

func TestHandlerList_Envelope(t *testing.T) {
	svc := new(MockService)
	svc.On("List", mock.Anything, 2, 10).Return(ListResult{
		Productos:  []Producto{{ID: 11, Nombre: "Camiseta", PrecioVenta: decimal.NewFromInt(45000), StockActual: 3}},
		Pagination: Pagination{Page: 2, Limit: 10, Total: 11, Pages: 2},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/productos?page=2&limit=10", nil)
	rec := httptest.NewRecorder()
	newTestMux(NewHandler(svc)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Productos []struct {
			PrecioVenta string `json:"precioVenta"`
			StockActual int    `json:"stockActual"`
		} `json:"productos"`
		Pagination Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Productos, 1)
	assert.Equal(t, "45000", body.Productos[0].PrecioVenta)
	assert.Equal(t, 2, body.Pagination.Pages)
	svc.AssertExpectations(t)
}

func TestHandlerGet_NotFound(t *testing.T) {
	svc := new(MockService)
	svc.On("Get", mock.Anything, 99).Return(Producto{}, ErrNoEncontrado)

	req := httptest.NewRequest(http.MethodGet, "/api/productos/99", nil)
	rec := httptest.NewRecorder()
	newTestMux(NewHandler(svc)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerGet_BadID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/productos/abc", nil)
	rec := httptest.NewRecorder()
	newTestMux(NewHandler(new(MockService))).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerCreate_Created(t *testing.T) {
	svc := new(MockService)
	svc.On("Create", mock.Anything, mock.AnythingOfType("*producto.Producto")).
		Return(Producto{ID: 1, Nombre: "Camiseta", PrecioVenta: decimal.NewFromInt(45000)}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/productos",
		strings.NewReader(`{"nombre":"Camiseta","precioVenta":45000,"stockActual":10}`))
	rec := httptest.NewRecorder()
	newTestMux(NewHandler(svc)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestHandlerCreate_ValidationError(t *testing.T) {
	svc := new(MockService)
	svc.On("Create", mock.Anything, mock.Anything).
		Return(Producto{}, ValidationError("el nombre es requerido"))

	req := httptest.NewRequest(http.MethodPost, "/api/productos",
		strings.NewReader(`{"precioVenta":45000}`))
	rec := httptest.NewRecorder()
	newTestMux(NewHandler(svc)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerUpdate_PathIDWins(t *testing.T) {
	svc := new(MockService)
	svc.On("Update", mock.Anything, mock.MatchedBy(func(p *Producto) bool {
		return p.ID == 7
	})).Return(Producto{ID: 7}, nil)

	req := httptest.NewRequest(http.MethodPut, "/api/productos/7",
		strings.NewReader(`{"id":99,"nombre":"Camiseta","precioVenta":45000}`))
	rec := httptest.NewRecorder()
	newTestMux(NewHandler(svc)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestHandlerDelete_OK(t *testing.T) {
	svc := new(MockService)
	svc.On("Delete", mock.Anything, 7).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/productos/7", nil)
	rec := httptest.NewRecorder()
	newTestMux(NewHandler(svc)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
