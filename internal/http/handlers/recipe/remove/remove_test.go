package remove

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/foodgram/internal/http/middlewarectx"
	"github.com/magabrotheeeer/foodgram/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Remove(ctx context.Context, ident models.Identity, id int64) error {
	return m.Called(ctx, ident, id).Error(0)
}

func TestRemoveHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	alice := models.Identity{UserID: 1, Username: "alice"}

	tests := []struct {
		name           string
		id             string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешное удаление",
			id:   "3",
			setupMock: func(m *MockService) {
				m.On("Remove", mock.Anything, alice, int64(3)).Return(nil)
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name: "чужой рецепт",
			id:   "3",
			setupMock: func(m *MockService) {
				m.On("Remove", mock.Anything, alice, int64(3)).Return(models.Forbiddenf("only the author can delete this recipe"))
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `{"status":"Error","error":"only the author can delete this recipe"}`,
		},
		{
			name: "рецепта нет",
			id:   "8",
			setupMock: func(m *MockService) {
				m.On("Remove", mock.Anything, alice, int64(8)).Return(models.NotFoundf("recipe 8 not found"))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"recipe 8 not found"}`,
		},
		{
			name: "ошибка сервиса",
			id:   "3",
			setupMock: func(m *MockService) {
				m.On("Remove", mock.Anything, alice, int64(3)).Return(errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"could not delete recipe"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodDelete, "/api/recipes/"+tt.id, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			req = req.WithContext(middlewarectx.WithIdentity(ctx, alice))
			w := httptest.NewRecorder()

			New(logger, svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody == "" {
				assert.Empty(t, w.Body.String())
			} else {
				assert.JSONEq(t, tt.expectedBody, w.Body.String())
			}
			svc.AssertExpectations(t)
		})
	}
}
