package translate_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/relabel/pkg/translate"
)

const (
	testAppID  = "2015063000000001"
	testSecret = "12345678"
)

func TestSignMatchesPublishedExample(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "f89f9594663708c1605f3d736d01d2d4",
		translate.Sign(testAppID, "apple", "1435660288", testSecret))
}

func newClient(t *testing.T, handler http.HandlerFunc) *translate.BaiduClient {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := translate.NewBaiduClient(translate.BaiduConfig{
		Endpoint:   srv.URL + "/api/trans/vip/translate",
		AppID:      testAppID,
		Secret:     testSecret,
		HTTPClient: srv.Client(),
	})
	require.NoError(t, err)

	return client
}

func TestBaiduTranslateSuccess(t *testing.T) {
	t.Parallel()

	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/trans/vip/translate", r.URL.Path)

		query := r.URL.Query()
		assert.Equal(t, "锁定", query.Get("q"))
		assert.Equal(t, "zh", query.Get("from"))
		assert.Equal(t, "en", query.Get("to"))
		assert.Equal(t, testAppID, query.Get("appid"))
		assert.Equal(t, translate.Sign(testAppID, "锁定", query.Get("salt"), testSecret), query.Get("sign"))

		fmt.Fprint(w, `{"from":"zh","to":"en","trans_result":[{"src":"锁定","dst":"Lock"},{"src":"锁定","dst":"Locked"}]}`)
	})

	out, err := client.Translate(context.Background(), "锁定")
	require.NoError(t, err)
	assert.Equal(t, "Lock", out)
}

func TestBaiduSaltsAreDistinct(t *testing.T) {
	t.Parallel()

	var (
		mu    sync.Mutex
		salts []int64
		signs = map[string]bool{}
	)

	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		salt, err := strconv.ParseInt(r.URL.Query().Get("salt"), 10, 64)
		assert.NoError(t, err)

		mu.Lock()
		salts = append(salts, salt)
		signs[r.URL.Query().Get("sign")] = true
		mu.Unlock()

		fmt.Fprint(w, `{"trans_result":[{"src":"a","dst":"b"}]}`)
	})

	for range 5 {
		_, err := client.Translate(context.Background(), "same text")
		require.NoError(t, err)
	}

	mu.Lock()
	defer mu.Unlock()

	require.Len(t, salts, 5)

	for idx := 1; idx < len(salts); idx++ {
		assert.Greater(t, salts[idx], salts[idx-1])
	}

	assert.Len(t, signs, 5)
}

func TestBaiduTranslateFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"api error string code", http.StatusOK, `{"error_code":"54001","error_msg":"Invalid Sign"}`, translate.ErrAPI},
		{"api error numeric code", http.StatusOK, `{"error_code":54003,"error_msg":"Access Limit"}`, translate.ErrAPI},
		{"empty result", http.StatusOK, `{"trans_result":[]}`, translate.ErrNoResult},
		{"missing dst", http.StatusOK, `{"trans_result":[{"src":"a"}]}`, translate.ErrBadResponse},
		{"unexpected shape", http.StatusOK, `{"hello":"world"}`, translate.ErrBadResponse},
		{"not json", http.StatusOK, `<html>`, translate.ErrBadResponse},
		{"http error", http.StatusBadGateway, `upstream down`, translate.ErrTransport},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			client := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				fmt.Fprint(w, tc.body)
			})

			out, err := client.Translate(context.Background(), "锁定")
			require.ErrorIs(t, err, tc.want)
			assert.Empty(t, out)
		})
	}
}

func TestBaiduSuccessCodeIsNotAnError(t *testing.T) {
	t.Parallel()

	client := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"error_code":"52000","trans_result":[{"src":"a","dst":"ok"}]}`)
	})

	out, err := client.Translate(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}

func TestNewBaiduClientRequiresCredentials(t *testing.T) {
	t.Parallel()

	_, err := translate.NewBaiduClient(translate.BaiduConfig{AppID: testAppID})
	require.ErrorIs(t, err, translate.ErrMissingCredentials)

	_, err = translate.NewBaiduClient(translate.BaiduConfig{Secret: testSecret})
	require.ErrorIs(t, err, translate.ErrMissingCredentials)
}

func TestNewBaiduClientValidatesProxy(t *testing.T) {
	t.Parallel()

	for _, proxy := range []string{"://bad", "proxy.local:8080", "http://"} {
		_, err := translate.NewBaiduClient(translate.BaiduConfig{AppID: testAppID, Secret: testSecret, Proxy: proxy})
		require.ErrorIs(t, err, translate.ErrInvalidProxy, proxy)
	}

	client, err := translate.NewBaiduClient(translate.BaiduConfig{
		AppID: testAppID, Secret: testSecret, Proxy: "http://127.0.0.1:3128",
	})
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestBaiduTransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client, err := translate.NewBaiduClient(translate.BaiduConfig{
		Endpoint: url, AppID: testAppID, Secret: testSecret,
	})
	require.NoError(t, err)

	_, err = client.Translate(context.Background(), "a")
	require.ErrorIs(t, err, translate.ErrTransport)
}
