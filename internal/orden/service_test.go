package orden

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetByReferencia(ctx context.Context, ref string) (*Orden, error) {
	args := m.Called(ctx, ref)
	if o := args.Get(0); o != nil {
		return o.(*Orden), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) UpdateEstadoPagoByReferencia(ctx context.Context, ref string, estado EstadoPago) error {
	args := m.Called(ctx, ref, estado)
	return args.Error(0)
}

func TestService_MarkAsPaid(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByReferencia", mock.Anything, "ORD-1").
			Return(&Orden{ID: 1, ReferenciaPago: "ORD-1", EstadoPago: PagoPendiente}, nil)
		repo.On("UpdateEstadoPagoByReferencia", mock.Anything, "ORD-1", PagoAprobado).Return(nil)

		err := NewService(repo).MarkAsPaid(ctx, "ORD-1")
		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("AlreadyPaid_NoUpdate", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByReferencia", mock.Anything, "ORD-1").
			Return(&Orden{ID: 1, ReferenciaPago: "ORD-1", EstadoPago: PagoAprobado}, nil)

		err := NewService(repo).MarkAsPaid(ctx, "ORD-1")
		assert.NoError(t, err)
		repo.AssertNotCalled(t, "UpdateEstadoPagoByReferencia")
	})

	t.Run("OrderNotFound", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByReferencia", mock.Anything, "ORD-404").Return(nil, ErrNoEncontrada)

		err := NewService(repo).MarkAsPaid(ctx, "ORD-404")
		assert.ErrorIs(t, err, ErrNoEncontrada)
	})
}

func TestService_MarkAsFailed(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByReferencia", mock.Anything, "ORD-2").
			Return(&Orden{ID: 2, ReferenciaPago: "ORD-2", EstadoPago: PagoPendiente}, nil)
		repo.On("UpdateEstadoPagoByReferencia", mock.Anything, "ORD-2", PagoFallido).Return(nil)

		err := NewService(repo).MarkAsFailed(ctx, "ORD-2")
		assert.NoError(t, err)
	})

	t.Run("UpdateFails", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByReferencia", mock.Anything, "ORD-2").
			Return(&Orden{ID: 2, EstadoPago: PagoPendiente}, nil)
		repo.On("UpdateEstadoPagoByReferencia", mock.Anything, "ORD-2", PagoFallido).
			Return(errors.New("db error"))

		err := NewService(repo).MarkAsFailed(ctx, "ORD-2")
		assert.Error(t, err)
	})
}
