package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/contentslots/internal/adapters/http/dto"
	"github.com/jsamuelsen/contentslots/internal/app"
	"github.com/jsamuelsen/contentslots/internal/domain"
	"github.com/jsamuelsen/contentslots/internal/mocks"
)

const bannerJSON = `{"viewId":1,"componentType":"Banner","columnStart":1,"columnEnd":3,"rowStart":1,"rowEnd":2,"options":{"color":"red"}}`

// setupContentSlotRouter wires the handler over a real service and a mock repository.
func setupContentSlotRouter(t *testing.T, setupMock func(*mocks.MockContentSlotRepository)) *gin.Engine {
	t.Helper()

	repo := mocks.NewMockContentSlotRepository(t)
	if setupMock != nil {
		setupMock(repo)
	}

	service := app.NewContentSlotService(app.ContentSlotServiceConfig{
		Repository: repo,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	engine := gin.New()
	NewContentSlotHandler(service).RegisterContentSlotRoutes(engine.Group("/api/v1"))

	return engine
}

func bannerSlot(id int64) domain.ContentSlot {
	return domain.ContentSlot{
		ID:            id,
		ViewID:        1,
		ComponentType: "Banner",
		ColumnStart:   1,
		ColumnEnd:     3,
		RowStart:      1,
		RowEnd:        2,
		Options:       domain.Options{"color": "red"},
	}
}

func serve(engine *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	return resp
}

func TestContentSlotHandler_Create(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(*mocks.MockContentSlotRepository)
		expectedStatus int
		expectedCode   string
		expectedID     int64
	}{
		{
			name: "created",
			body: bannerJSON,
			setupMock: func(m *mocks.MockContentSlotRepository) {
				m.EXPECT().Create(mock.Anything, bannerSlot(0)).Return(int64(11), nil)
			},
			expectedStatus: http.StatusCreated,
			expectedID:     11,
		},
		{
			name: "occupied cell",
			body: bannerJSON,
			setupMock: func(m *mocks.MockContentSlotRepository) {
				m.EXPECT().Create(mock.Anything, mock.Anything).
					Return(int64(0), domain.NewDuplicateEntryError("contentslot", "1062", assert.AnError))
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   dto.ErrorCodeDuplicateEntry,
		},
		{
			name: "storage failure",
			body: bannerJSON,
			setupMock: func(m *mocks.MockContentSlotRepository) {
				m.EXPECT().Create(mock.Anything, mock.Anything).
					Return(int64(0), domain.NewStorageError("create", "1213", assert.AnError))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   dto.ErrorCodeStorage,
		},
		{
			name: "pool exhausted",
			body: bannerJSON,
			setupMock: func(m *mocks.MockContentSlotRepository) {
				m.EXPECT().Create(mock.Anything, mock.Anything).
					Return(int64(0), domain.NewStorageError("create", domain.StorageCodePoolTimeout, assert.AnError))
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedCode:   dto.ErrorCodeUnavailable,
		},
		{
			name:           "malformed json",
			body:           `{"viewId":`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   dto.ErrorCodeBadRequest,
		},
		{
			name:           "column start below grid",
			body:           `{"viewId":1,"componentType":"Banner","columnStart":0,"columnEnd":3,"rowStart":1,"rowEnd":2}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   dto.ErrorCodeValidation,
		},
		{
			name:           "blank component type",
			body:           `{"viewId":1,"componentType":"  ","columnStart":1,"columnEnd":3,"rowStart":1,"rowEnd":2}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   dto.ErrorCodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := setupContentSlotRouter(t, tt.setupMock)

			w := serve(engine, http.MethodPost, "/api/v1/contentslots", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeError(t, w).Error.Code)
				return
			}

			var resp dto.IDResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.expectedID, resp.ID)
		})
	}
}

func TestContentSlotHandler_CreateValidationDetails(t *testing.T) {
	engine := setupContentSlotRouter(t, nil)

	w := serve(engine, http.MethodPost, "/api/v1/contentslots",
		`{"viewId":1,"componentType":"Banner","columnStart":1,"columnEnd":1,"rowStart":1,"rowEnd":2}`)

	require.Equal(t, http.StatusBadRequest, w.Code)

	resp := decodeError(t, w)
	assert.Contains(t, resp.Error.Details, "columnEnd")
}

func TestContentSlotHandler_Get(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		engine := setupContentSlotRouter(t, func(m *mocks.MockContentSlotRepository) {
			m.EXPECT().GetByID(mock.Anything, int64(5)).Return(bannerSlot(5), true, nil)
		})

		w := serve(engine, http.MethodGet, "/api/v1/contentslots/5", "")

		require.Equal(t, http.StatusOK, w.Code)

		var resp dto.ContentSlotResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, int64(5), resp.ID)
		assert.Equal(t, map[string]string{"color": "red"}, resp.Options)
	})

	t.Run("absent", func(t *testing.T) {
		engine := setupContentSlotRouter(t, func(m *mocks.MockContentSlotRepository) {
			m.EXPECT().GetByID(mock.Anything, int64(5)).Return(domain.ContentSlot{}, false, nil)
		})

		w := serve(engine, http.MethodGet, "/api/v1/contentslots/5", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, dto.ErrorCodeNotFound, decodeError(t, w).Error.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		engine := setupContentSlotRouter(t, nil)

		w := serve(engine, http.MethodGet, "/api/v1/contentslots/abc", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeError(t, w).Error.Details, "id")
	})
}

func TestContentSlotHandler_Update(t *testing.T) {
	tests := []struct {
		name           string
		target         string
		setupMock      func(*mocks.MockContentSlotRepository)
		expectedStatus int
	}{
		{
			name:   "updated",
			target: "/api/v1/contentslots/9",
			setupMock: func(m *mocks.MockContentSlotRepository) {
				m.EXPECT().Update(mock.Anything, bannerSlot(9)).Return(int64(9), true, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "nothing changed",
			target: "/api/v1/contentslots/9",
			setupMock: func(m *mocks.MockContentSlotRepository) {
				m.EXPECT().Update(mock.Anything, bannerSlot(9)).Return(int64(0), false, nil)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:   "moved onto occupied cell",
			target: "/api/v1/contentslots/9",
			setupMock: func(m *mocks.MockContentSlotRepository) {
				m.EXPECT().Update(mock.Anything, mock.Anything).
					Return(int64(0), false, domain.NewDuplicateEntryError("contentslot", "23505", assert.AnError))
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "negative id",
			target:         "/api/v1/contentslots/-3",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := setupContentSlotRouter(t, tt.setupMock)

			w := serve(engine, http.MethodPut, tt.target, bannerJSON)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus == http.StatusOK {
				var resp dto.IDResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, int64(9), resp.ID)
			}
		})
	}
}

func TestContentSlotHandler_Delete(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		engine := setupContentSlotRouter(t, func(m *mocks.MockContentSlotRepository) {
			m.EXPECT().DeleteOne(mock.Anything, int64(4)).Return(int64(1), true, nil)
		})

		w := serve(engine, http.MethodDelete, "/api/v1/contentslots/4", "")

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("absent", func(t *testing.T) {
		engine := setupContentSlotRouter(t, func(m *mocks.MockContentSlotRepository) {
			m.EXPECT().DeleteOne(mock.Anything, int64(4)).Return(int64(0), false, nil)
		})

		w := serve(engine, http.MethodDelete, "/api/v1/contentslots/4", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestContentSlotHandler_ListByView(t *testing.T) {
	t.Run("slots with options", func(t *testing.T) {
		engine := setupContentSlotRouter(t, func(m *mocks.MockContentSlotRepository) {
			m.EXPECT().GetByViewID(mock.Anything, int64(1)).
				Return([]domain.ContentSlot{bannerSlot(1), bannerSlot(2)}, nil)
		})

		w := serve(engine, http.MethodGet, "/api/v1/views/1/contentslots", "")

		require.Equal(t, http.StatusOK, w.Code)

		var resp dto.ContentSlotListResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Items, 2)
	})

	t.Run("empty view serializes an empty array", func(t *testing.T) {
		engine := setupContentSlotRouter(t, func(m *mocks.MockContentSlotRepository) {
			m.EXPECT().GetByViewID(mock.Anything, int64(3)).Return([]domain.ContentSlot{}, nil)
		})

		w := serve(engine, http.MethodGet, "/api/v1/views/3/contentslots", "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"items":[]}`, w.Body.String())
	})
}

func TestContentSlotHandler_ListByViews(t *testing.T) {
	t.Run("several views", func(t *testing.T) {
		engine := setupContentSlotRouter(t, func(m *mocks.MockContentSlotRepository) {
			m.EXPECT().GetByViewID(mock.Anything, int64(1)).Return([]domain.ContentSlot{bannerSlot(1)}, nil)
			m.EXPECT().GetByViewID(mock.Anything, int64(2)).Return([]domain.ContentSlot{}, nil)
		})

		w := serve(engine, http.MethodGet, "/api/v1/views?ids=1,2,1", "")

		require.Equal(t, http.StatusOK, w.Code)

		var resp dto.ViewsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Views["1"], 1)
		assert.Empty(t, resp.Views["2"])
	})

	for _, target := range []string{"/api/v1/views", "/api/v1/views?ids=1,x", "/api/v1/views?ids=0"} {
		t.Run("rejects "+target, func(t *testing.T) {
			engine := setupContentSlotRouter(t, nil)

			w := serve(engine, http.MethodGet, target, "")

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, dto.ErrorCodeValidation, decodeError(t, w).Error.Code)
		})
	}
}

func TestContentSlotHandler_ListByComponentType(t *testing.T) {
	slots := []domain.ContentSlot{
		{ID: 3, ViewID: 1, ComponentType: "Banner", Options: domain.Options{}},
		{ID: 1, ViewID: 1, ComponentType: "Banner", Options: domain.Options{}},
		{ID: 2, ViewID: 2, ComponentType: "Banner", Options: domain.Options{}},
	}

	t.Run("pages in id order", func(t *testing.T) {
		engine := setupContentSlotRouter(t, func(m *mocks.MockContentSlotRepository) {
			m.EXPECT().GetByComponentType(mock.Anything, "Banner").Return(slots, nil).Twice()
		})

		w := serve(engine, http.MethodGet, "/api/v1/contentslots?componentType=Banner&limit=2", "")
		require.Equal(t, http.StatusOK, w.Code)

		var first dto.PaginatedResponse[dto.ContentSlotResponse]
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
		require.Len(t, first.Items, 2)
		assert.Equal(t, int64(1), first.Items[0].ID)
		assert.Equal(t, int64(2), first.Items[1].ID)
		assert.True(t, first.HasMore)
		require.NotEmpty(t, first.NextCursor)

		w = serve(engine, http.MethodGet, "/api/v1/contentslots?componentType=Banner&limit=2&cursor="+first.NextCursor, "")
		require.Equal(t, http.StatusOK, w.Code)

		var second dto.PaginatedResponse[dto.ContentSlotResponse]
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
		require.Len(t, second.Items, 1)
		assert.Equal(t, int64(3), second.Items[0].ID)
		assert.False(t, second.HasMore)
		assert.Empty(t, second.NextCursor)
	})

	t.Run("missing component type", func(t *testing.T) {
		engine := setupContentSlotRouter(t, nil)

		w := serve(engine, http.MethodGet, "/api/v1/contentslots", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeError(t, w).Error.Details, "componentType")
	})

	t.Run("bad cursor", func(t *testing.T) {
		engine := setupContentSlotRouter(t, func(m *mocks.MockContentSlotRepository) {
			m.EXPECT().GetByComponentType(mock.Anything, "Banner").Return(slots, nil)
		})

		w := serve(engine, http.MethodGet, "/api/v1/contentslots?componentType=Banner&cursor=not-base64!", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrorCodeBadRequest, decodeError(t, w).Error.Code)
	})
}

func TestContentSlotHandler_WriteGuards(t *testing.T) {
	repo := mocks.NewMockContentSlotRepository(t)
	repo.EXPECT().GetByID(mock.Anything, int64(1)).Return(bannerSlot(1), true, nil)

	service := app.NewContentSlotService(app.ContentSlotServiceConfig{
		Repository: repo,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	deny := func(c *gin.Context) {
		c.AbortWithStatus(http.StatusUnauthorized)
	}

	engine := gin.New()
	NewContentSlotHandler(service).RegisterContentSlotRoutes(engine.Group("/api/v1"), deny)

	assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodPost, "/api/v1/contentslots", bannerJSON).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodPut, "/api/v1/contentslots/1", bannerJSON).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodDelete, "/api/v1/contentslots/1", "").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v1/contentslots/1", "").Code)
}

func TestParseIDList(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []int64
		wantErr bool
	}{
		{name: "single", raw: "4", want: []int64{4}},
		{name: "spaces", raw: " 1 , 2 ", want: []int64{1, 2}},
		{name: "empty", raw: "", wantErr: true},
		{name: "trailing comma", raw: "1,", wantErr: true},
		{name: "zero", raw: "0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseIDList(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
