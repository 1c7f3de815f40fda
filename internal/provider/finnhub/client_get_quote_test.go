package finnhub_test

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	finnhub "stockdashboard/internal/provider/finnhub"
)

const mockQuoteBody = `{"c":150.25,"d":2.2,"dp":1.4859,"h":151,"l":147.5,"o":148,"pc":148.05,"t":1700000000}`

func TestGetQuote(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock HTTP client
	httpClient := NewMockHTTPClient(ctrl)

	// Assert: stub the Do method
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, http.MethodGet, req.Method)
			require.Equal(t, "test-token", req.URL.Query().Get("token"))
			require.Equal(t, "AAPL", req.URL.Query().Get("symbol"))
			require.True(t, strings.HasSuffix(req.URL.Path, "/quote"))

			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(bytes.NewBufferString(mockQuoteBody)),
			}, nil
		}).
		Times(1)

	// Arrange: setup a new Finnhub API client
	client, err := finnhub.NewFinnhubAPIClient("test-token", finnhub.WithHTTPClient(httpClient))
	require.NoError(t, err)

	// Act: call GetQuote
	quote, err := client.GetQuote(t.Context(), "AAPL")
	require.NoError(t, err)
	require.NotNil(t, quote)

	// Assert: fields should be unmarshalled from the mock response
	require.NotNil(t, quote.Current)
	require.InEpsilon(t, 150.25, *quote.Current, 0.0001)
	require.InEpsilon(t, 2.2, *quote.Change, 0.0001)
	require.InEpsilon(t, 1.4859, *quote.PercentChange, 0.0001)
	require.InEpsilon(t, 148.05, *quote.PreviousClose, 0.0001)
	require.Equal(t, int64(1700000000), *quote.Timestamp)
}

func TestGetQuote_NullFields(t *testing.T) {
	t.Parallel()

	// Arrange: Finnhub answers unknown symbols with zeros and nulls
	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(&http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewBufferString(`{"c":0,"d":null,"dp":null,"h":0,"l":0,"o":0,"pc":0,"t":0}`)),
		}, nil).
		Times(1)

	client, err := finnhub.NewFinnhubAPIClient("test-token", finnhub.WithHTTPClient(httpClient))
	require.NoError(t, err)

	// Act
	quote, err := client.GetQuote(t.Context(), "NOPE")

	// Assert: change fields stay nil
	require.NoError(t, err)
	require.NotNil(t, quote.Current)
	require.Zero(t, *quote.Current)
	require.Nil(t, quote.Change)
	require.Nil(t, quote.PercentChange)
}

func TestGetQuote_ErrCreatingRequest(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock HTTP client that must not be called
	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		Times(0)

	client, err := finnhub.NewFinnhubAPIClient("", finnhub.WithHTTPClient(httpClient))
	require.NoError(t, err)

	// Act: call GetQuote with an invalid base URL
	quote, err := client.GetQuote(t.Context(), "AAPL", finnhub.WithBaseURL(string([]rune{0x7f})))
	require.Error(t, err)
	require.Nil(t, quote)
}

func TestGetQuote_ErrPerformingRequest(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock HTTP client that fails
	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			return nil, fmt.Errorf("connection refused")
		}).
		Times(1)

	client, err := finnhub.NewFinnhubAPIClient("", finnhub.WithHTTPClient(httpClient))
	require.NoError(t, err)

	// Act
	quote, err := client.GetQuote(t.Context(), "AAPL")
	require.Error(t, err)
	require.Nil(t, quote)
	require.Contains(t, err.Error(), "performing request")
}

func TestGetQuote_ErrStatusCodes(t *testing.T) {
	t.Parallel()

	for _, code := range []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests, http.StatusInternalServerError} {
		t.Run(http.StatusText(code), func(t *testing.T) {
			t.Parallel()

			// Arrange: create a mock HTTP client answering with the status
			ctrl := gomock.NewController(t)
			httpClient := NewMockHTTPClient(ctrl)
			httpClient.EXPECT().
				Do(gomock.Any()).
				Return(&http.Response{
					StatusCode: code,
					Body:       io.NopCloser(bytes.NewBufferString("nope")),
				}, nil).
				Times(1)

			client, err := finnhub.NewFinnhubAPIClient("test-token", finnhub.WithHTTPClient(httpClient))
			require.NoError(t, err)

			// Act
			quote, err := client.GetQuote(t.Context(), "AAPL")

			// Assert: a StatusError carrying the code
			require.Nil(t, quote)
			var statusErr *finnhub.StatusError
			require.True(t, errors.As(err, &statusErr))
			require.Equal(t, code, statusErr.StatusCode)
		})
	}
}

func TestGetQuote_ErrDecoding(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock HTTP client answering with garbage
	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(&http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewBufferString("<html>")),
		}, nil).
		Times(1)

	client, err := finnhub.NewFinnhubAPIClient("test-token", finnhub.WithHTTPClient(httpClient))
	require.NoError(t, err)

	// Act
	quote, err := client.GetQuote(t.Context(), "AAPL")

	// Assert
	require.Nil(t, quote)
	require.ErrorContains(t, err, "decoding quote response")
}
