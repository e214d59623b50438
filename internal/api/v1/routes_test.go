package v1

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/asset-librarian/internal/library"
	"github.com/stacklok/asset-librarian/internal/service"
	"github.com/stacklok/asset-librarian/internal/service/mocks"
)

func testList() *service.LibraryList {
	return &service.LibraryList{
		RunID:       "run-1",
		RunAt:       time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
		CatalogHash: "abc123",
		Libraries: []service.LibrarySummary{
			{Name: "Weapons", AssetCount: 2, BinaryFile: "Weapons.bin"},
			{Name: "Rest", AssetCount: 3, BinaryFile: "Rest.bin"},
		},
		RemainingCount: 3,
	}
}

func TestListLibraries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		query          string
		setupMock      func(*mocks.MockLibraryService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "no options",
			setupMock: func(m *mocks.MockLibraryService) {
				m.EXPECT().ListLibraries(gomock.Any()).Return(testList(), nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"Weapons"`,
		},
		{
			name:  "name, cursor and limit become options",
			query: "?name=W*&cursor=TXVzaWM%3D&limit=1",
			setupMock: func(m *mocks.MockLibraryService) {
				m.EXPECT().ListLibraries(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, opts ...service.Option[service.ListLibrariesOptions]) (*service.LibraryList, error) {
						var o service.ListLibrariesOptions
						for _, opt := range opts {
							require.NoError(t, opt(&o))
						}
						assert.True(t, o.Name.Match("Weapons"))
						assert.False(t, o.Name.Match("Rest"))
						assert.Equal(t, "TXVzaWM=", o.Cursor)
						assert.Equal(t, 1, o.Limit)
						return testList(), nil
					})
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"runId":"run-1"`,
		},
		{
			name:           "invalid limit",
			query:          "?limit=abc",
			setupMock:      func(*mocks.MockLibraryService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Invalid limit parameter",
		},
		{
			name:           "negative limit",
			query:          "?limit=-1",
			setupMock:      func(*mocks.MockLibraryService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Invalid limit parameter",
		},
		{
			name:  "invalid argument",
			query: "?cursor=bad",
			setupMock: func(m *mocks.MockLibraryService) {
				m.EXPECT().ListLibraries(gomock.Any(), gomock.Any()).
					Return(nil, fmt.Errorf("%w: failed to decode cursor", service.ErrInvalidArgument))
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "failed to decode cursor",
		},
		{
			name: "not ready",
			setupMock: func(m *mocks.MockLibraryService) {
				m.EXPECT().ListLibraries(gomock.Any()).Return(nil, service.ErrNotReady)
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   "no partition output available",
		},
		{
			name: "internal error is not leaked",
			setupMock: func(m *mocks.MockLibraryService) {
				m.EXPECT().ListLibraries(gomock.Any()).Return(nil, fmt.Errorf("open /data/windows: permission denied"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)

			mockSvc := mocks.NewMockLibraryService(ctrl)
			tt.setupMock(mockSvc)

			rr := httptest.NewRecorder()
			Router(mockSvc).ServeHTTP(rr, httptest.NewRequest("GET", "/libraries"+tt.query, nil))

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.Contains(t, rr.Body.String(), tt.expectedBody)
		})
	}
}

func TestGetLibrary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		path           string
		setupMock      func(*mocks.MockLibraryService)
		expectedStatus int
	}{
		{
			name: "found",
			path: "/libraries/Weapons",
			setupMock: func(m *mocks.MockLibraryService) {
				m.EXPECT().GetLibrary(gomock.Any(), "Weapons").Return(&service.LibraryDetail{
					Name:   "Weapons",
					RunID:  "run-1",
					Assets: []library.Ref{{Type: library.RefTypeSoundBank, ID: 2, Name: "Weapons"}},
				}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "escaped name",
			path: "/libraries/SFX%20Weapons",
			setupMock: func(m *mocks.MockLibraryService) {
				m.EXPECT().GetLibrary(gomock.Any(), "SFX Weapons").Return(&service.LibraryDetail{Name: "SFX Weapons"}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "not found",
			path: "/libraries/Ambience",
			setupMock: func(m *mocks.MockLibraryService) {
				m.EXPECT().GetLibrary(gomock.Any(), "Ambience").
					Return(nil, fmt.Errorf("%w: Ambience", service.ErrLibraryNotFound))
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "not ready",
			path: "/libraries/Weapons",
			setupMock: func(m *mocks.MockLibraryService) {
				m.EXPECT().GetLibrary(gomock.Any(), "Weapons").Return(nil, service.ErrNotReady)
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name:           "blank name",
			path:           "/libraries/%20",
			setupMock:      func(*mocks.MockLibraryService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)

			mockSvc := mocks.NewMockLibraryService(ctrl)
			tt.setupMock(mockSvc)

			rr := httptest.NewRecorder()
			Router(mockSvc).ServeHTTP(rr, httptest.NewRequest("GET", tt.path, nil))

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedStatus == http.StatusOK {
				var detail service.LibraryDetail
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &detail))
				assert.NotEmpty(t, detail.Name)
			}
		})
	}
}

func TestPreviewLibrary(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	mockSvc := mocks.NewMockLibraryService(ctrl)
	mockSvc.EXPECT().PreviewLibrary(gomock.Any(), "Rest").Return(&service.LibraryPreview{
		Name:        "Rest",
		CatalogHash: "abc123",
		Assets: []library.Ref{
			{Type: library.RefTypeInitBank, ID: 1, Name: "Init"},
			{Type: library.RefTypeMedia, ID: 11, Name: "Click.wav", SoundBankID: 3},
		},
	}, nil)
	mockSvc.EXPECT().PreviewLibrary(gomock.Any(), "Broken").Return(nil, fmt.Errorf("failed to fetch catalog: timeout"))

	router := Router(mockSvc)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/libraries/Rest/preview", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var preview service.LibraryPreview
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &preview))
	assert.Equal(t, "Rest", preview.Name)
	require.Len(t, preview.Assets, 2)
	assert.Equal(t, library.RefTypeInitBank, preview.Assets[0].Type)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/libraries/Broken/preview", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
