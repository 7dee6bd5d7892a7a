package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/vadimbarashkov/shortly/internal/entity"
	"github.com/vadimbarashkov/shortly/internal/shortcode"
)

type MockURLStore struct {
	mock.Mock
}

func (m *MockURLStore) Save(ctx context.Context, shortCode, originalURL string) (*entity.URL, error) {
	args := m.Called(ctx, shortCode, originalURL)
	url, _ := args.Get(0).(*entity.URL)
	return url, args.Error(1)
}

func (m *MockURLStore) Get(ctx context.Context, shortCode string) (string, bool) {
	args := m.Called(ctx, shortCode)
	return args.String(0), args.Bool(1)
}

func (m *MockURLStore) GetWithDetails(ctx context.Context, shortCode string) (*entity.URL, bool) {
	args := m.Called(ctx, shortCode)
	url, _ := args.Get(0).(*entity.URL)
	return url, args.Bool(1)
}

func (m *MockURLStore) IncrementAccess(ctx context.Context, shortCode string) {
	m.Called(ctx, shortCode)
}

func (m *MockURLStore) Update(ctx context.Context, shortCode, newURL string) bool {
	args := m.Called(ctx, shortCode, newURL)
	return args.Bool(0)
}

func (m *MockURLStore) Exists(ctx context.Context, shortCode string) bool {
	args := m.Called(ctx, shortCode)
	return args.Bool(0)
}

func (m *MockURLStore) Delete(ctx context.Context, shortCode string) bool {
	args := m.Called(ctx, shortCode)
	return args.Bool(0)
}

func (m *MockURLStore) BulkDelete(ctx context.Context, shortCodes []string) (int, []string) {
	args := m.Called(ctx, shortCodes)
	failed, _ := args.Get(1).([]string)
	return args.Int(0), failed
}

func (m *MockURLStore) Count(ctx context.Context) int {
	args := m.Called(ctx)
	return args.Int(0)
}

func (m *MockURLStore) ListAllWithStats(ctx context.Context) []*entity.URL {
	args := m.Called(ctx)
	urls, _ := args.Get(0).([]*entity.URL)
	return urls
}

func (m *MockURLStore) Search(ctx context.Context, query string) []*entity.URL {
	args := m.Called(ctx, query)
	urls, _ := args.Get(0).([]*entity.URL)
	return urls
}

func (m *MockURLStore) Stats(ctx context.Context) *entity.URLStats {
	args := m.Called(ctx)
	stats, _ := args.Get(0).(*entity.URLStats)
	return stats
}

type URLUseCaseTestSuite struct {
	suite.Suite
	errUnknown error
	storeMock  *MockURLStore
	uc         *URLUseCase
}

func (suite *URLUseCaseTestSuite) SetupSuite() {
	suite.errUnknown = errors.New("unknown error")
}

func (suite *URLUseCaseTestSuite) SetupSubTest() {
	suite.storeMock = new(MockURLStore)
	suite.uc = New(shortcode.DefaultLength, suite.storeMock)
}

func (suite *URLUseCaseTestSuite) TearDownSubTest() {
	suite.storeMock.AssertExpectations(suite.T())
}

func (suite *URLUseCaseTestSuite) TestShortenURL() {
	const originalURL = "https://example.com"

	suite.Run("first candidate is free", func() {
		code := shortcode.Generate(originalURL, 0, shortcode.DefaultLength)

		suite.storeMock.
			On("Save", context.Background(), code, originalURL).
			Once().
			Return(&entity.URL{
				ShortCode:   code,
				OriginalURL: originalURL,
			}, nil)

		url, err := suite.uc.ShortenURL(context.Background(), originalURL, "")

		suite.NoError(err)
		suite.NotNil(url)
		suite.Equal(code, url.ShortCode)
		suite.Equal(originalURL, url.OriginalURL)
	})

	suite.Run("collision advances the attempt counter", func() {
		first := shortcode.Generate(originalURL, 0, shortcode.DefaultLength)
		second := shortcode.Generate(originalURL, 1, shortcode.DefaultLength)

		suite.storeMock.
			On("Save", context.Background(), first, originalURL).
			Once().
			Return(nil, entity.ErrShortCodeExists)
		suite.storeMock.
			On("Save", context.Background(), second, originalURL).
			Once().
			Return(&entity.URL{
				ShortCode:   second,
				OriginalURL: originalURL,
			}, nil)

		url, err := suite.uc.ShortenURL(context.Background(), originalURL, "")

		suite.NoError(err)
		suite.NotNil(url)
		suite.Equal(second, url.ShortCode)
	})

	suite.Run("attempt budget exhausted", func() {
		suite.storeMock.
			On("Save", context.Background(), mock.Anything, originalURL).
			Times(maxAttempts).
			Return(nil, entity.ErrShortCodeExists)

		url, err := suite.uc.ShortenURL(context.Background(), originalURL, "")

		suite.Error(err)
		suite.ErrorIs(err, entity.ErrMaxAttemptsExceeded)
		suite.Nil(url)
	})

	suite.Run("unknown error", func() {
		suite.storeMock.
			On("Save", context.Background(), mock.Anything, originalURL).
			Once().
			Return(nil, suite.errUnknown)

		url, err := suite.uc.ShortenURL(context.Background(), originalURL, "")

		suite.Error(err)
		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(url)
	})

	suite.Run("custom code", func() {
		suite.storeMock.
			On("Save", context.Background(), "promo", originalURL).
			Once().
			Return(&entity.URL{
				ShortCode:   "promo",
				OriginalURL: originalURL,
			}, nil)

		url, err := suite.uc.ShortenURL(context.Background(), originalURL, "promo")

		suite.NoError(err)
		suite.NotNil(url)
		suite.Equal("promo", url.ShortCode)
	})

	suite.Run("custom code conflict has no retry loop", func() {
		suite.storeMock.
			On("Save", context.Background(), "promo", originalURL).
			Once().
			Return(nil, entity.ErrShortCodeExists)

		url, err := suite.uc.ShortenURL(context.Background(), originalURL, "promo")

		suite.Error(err)
		suite.ErrorIs(err, entity.ErrShortCodeExists)
		suite.Nil(url)
	})
}

func (suite *URLUseCaseTestSuite) TestResolveShortCode() {
	suite.Run("url not found", func() {
		suite.storeMock.
			On("GetWithDetails", context.Background(), "abc123").
			Once().
			Return(nil, false)

		url, err := suite.uc.ResolveShortCode(context.Background(), "abc123")

		suite.Error(err)
		suite.ErrorIs(err, entity.ErrURLNotFound)
		suite.Nil(url)
	})

	suite.Run("success increments the access count", func() {
		suite.storeMock.
			On("GetWithDetails", context.Background(), "abc123").
			Once().
			Return(&entity.URL{
				ShortCode:   "abc123",
				OriginalURL: "https://example.com",
				AccessCount: 2,
			}, true)
		suite.storeMock.
			On("IncrementAccess", context.Background(), "abc123").
			Once()

		url, err := suite.uc.ResolveShortCode(context.Background(), "abc123")

		suite.NoError(err)
		suite.NotNil(url)
		suite.Equal("https://example.com", url.OriginalURL)
		suite.Equal(int64(3), url.AccessCount)
	})
}

func (suite *URLUseCaseTestSuite) TestGetURLDetails() {
	suite.Run("url not found", func() {
		suite.storeMock.
			On("GetWithDetails", context.Background(), "abc123").
			Once().
			Return(nil, false)

		url, err := suite.uc.GetURLDetails(context.Background(), "abc123")

		suite.Error(err)
		suite.ErrorIs(err, entity.ErrURLNotFound)
		suite.Nil(url)
	})

	suite.Run("success leaves the access count alone", func() {
		suite.storeMock.
			On("GetWithDetails", context.Background(), "abc123").
			Once().
			Return(&entity.URL{
				ShortCode:   "abc123",
				OriginalURL: "https://example.com",
				AccessCount: 7,
			}, true)

		url, err := suite.uc.GetURLDetails(context.Background(), "abc123")

		suite.NoError(err)
		suite.NotNil(url)
		suite.Equal(int64(7), url.AccessCount)
		suite.storeMock.AssertNotCalled(suite.T(), "IncrementAccess", mock.Anything, mock.Anything)
	})
}

func (suite *URLUseCaseTestSuite) TestModifyURL() {
	suite.Run("url not found", func() {
		suite.storeMock.
			On("Update", context.Background(), "abc123", "https://new-example.com").
			Once().
			Return(false)

		url, err := suite.uc.ModifyURL(context.Background(), "abc123", "https://new-example.com")

		suite.Error(err)
		suite.ErrorIs(err, entity.ErrURLNotFound)
		suite.Nil(url)
	})

	suite.Run("success", func() {
		createdAt := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

		suite.storeMock.
			On("Update", context.Background(), "abc123", "https://new-example.com").
			Once().
			Return(true)
		suite.storeMock.
			On("GetWithDetails", context.Background(), "abc123").
			Once().
			Return(&entity.URL{
				ShortCode:   "abc123",
				OriginalURL: "https://new-example.com",
				AccessCount: 4,
				CreatedAt:   createdAt,
			}, true)

		url, err := suite.uc.ModifyURL(context.Background(), "abc123", "https://new-example.com")

		suite.NoError(err)
		suite.NotNil(url)
		suite.Equal("https://new-example.com", url.OriginalURL)
		suite.Equal(int64(4), url.AccessCount)
		suite.Equal(createdAt, url.CreatedAt)
	})
}

func (suite *URLUseCaseTestSuite) TestDeactivateURL() {
	suite.Run("url not found", func() {
		suite.storeMock.
			On("Delete", context.Background(), "abc123").
			Once().
			Return(false)

		err := suite.uc.DeactivateURL(context.Background(), "abc123")

		suite.Error(err)
		suite.ErrorIs(err, entity.ErrURLNotFound)
	})

	suite.Run("success", func() {
		suite.storeMock.
			On("Delete", context.Background(), "abc123").
			Once().
			Return(true)

		err := suite.uc.DeactivateURL(context.Background(), "abc123")

		suite.NoError(err)
	})
}

func (suite *URLUseCaseTestSuite) TestBulkDeactivate() {
	suite.Run("partial success is not an error", func() {
		input := []string{"aaa111", "bbb222", "nope"}

		suite.storeMock.
			On("BulkDelete", context.Background(), input).
			Once().
			Return(2, []string{"nope"})

		result, err := suite.uc.BulkDeactivate(context.Background(), input)

		suite.NoError(err)
		suite.NotNil(result)
		suite.Equal(2, result.DeletedCount)
		suite.Equal([]string{"nope"}, result.FailedCodes)
	})
}

func (suite *URLUseCaseTestSuite) TestListURLs() {
	suite.Run("success", func() {
		suite.storeMock.
			On("ListAllWithStats", context.Background()).
			Once().
			Return([]*entity.URL{
				{ShortCode: "aaa111", OriginalURL: "https://example.com/a"},
				{ShortCode: "bbb222", OriginalURL: "https://example.com/b"},
			})

		urls, err := suite.uc.ListURLs(context.Background())

		suite.NoError(err)
		suite.Len(urls, 2)
	})
}

func (suite *URLUseCaseTestSuite) TestSearchURLs() {
	suite.Run("success", func() {
		suite.storeMock.
			On("Search", context.Background(), "example").
			Once().
			Return([]*entity.URL{
				{ShortCode: "aaa111", OriginalURL: "https://example.com/a"},
			})

		urls, err := suite.uc.SearchURLs(context.Background(), "example")

		suite.NoError(err)
		suite.Len(urls, 1)
	})
}

func (suite *URLUseCaseTestSuite) TestGetStats() {
	suite.Run("success", func() {
		suite.storeMock.
			On("Stats", context.Background()).
			Once().
			Return(&entity.URLStats{
				TotalURLs:     2,
				TotalAccesses: 4,
			})

		stats, err := suite.uc.GetStats(context.Background())

		suite.NoError(err)
		suite.NotNil(stats)
		suite.Equal(2, stats.TotalURLs)
		suite.Equal(int64(4), stats.TotalAccesses)
	})
}

func TestURLUseCase(t *testing.T) {
	suite.Run(t, new(URLUseCaseTestSuite))
}
