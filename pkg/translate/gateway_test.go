package translate_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/relabel/pkg/translate"
)

func TestGatewayReturnsTranslation(t *testing.T) {
	t.Parallel()

	gw := translate.NewGateway(translate.Static{"锁定": "Lock"}, translate.GatewayConfig{Delay: -1})

	out, err := gw.Translate(context.Background(), "锁定")
	require.NoError(t, err)
	assert.Equal(t, "Lock", out)
}

func TestGatewayFallsBackToSourceText(t *testing.T) {
	t.Parallel()

	failing := translate.Func(func(context.Context, string) (string, error) {
		return "", errors.New("network down")
	})

	gw := translate.NewGateway(failing, translate.GatewayConfig{Delay: -1})

	out, err := gw.Translate(context.Background(), "解锁")
	require.Error(t, err)
	assert.Equal(t, "解锁", out)

	out, err = gw.Translate(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, "missing", out)
}

func TestGatewayObserve(t *testing.T) {
	t.Parallel()

	var (
		mu       sync.Mutex
		statuses []string
	)

	gw := translate.NewGateway(translate.Static{"a": "A"}, translate.GatewayConfig{
		Delay: -1,
		Observe: func(status string, _ time.Duration) {
			mu.Lock()
			defer mu.Unlock()

			statuses = append(statuses, status)
		},
	})

	_, _ = gw.Translate(context.Background(), "a")
	_, _ = gw.Translate(context.Background(), "b")

	<-gw.Idle()

	mu.Lock()
	defer mu.Unlock()

	assert.Equal(t, []string{translate.StatusOK, translate.StatusFallback}, statuses)
	assert.Zero(t, gw.Pending())
}

func TestGatewayDuplicateTextsAreNotDeduplicated(t *testing.T) {
	t.Parallel()

	var (
		mu    sync.Mutex
		calls int
	)

	counting := translate.Func(func(_ context.Context, text string) (string, error) {
		mu.Lock()
		defer mu.Unlock()

		calls++

		return text + "!", nil
	})

	gw := translate.NewGateway(counting, translate.GatewayConfig{Delay: -1})

	var wg sync.WaitGroup

	for range 3 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			out, err := gw.Translate(context.Background(), "same")
			assert.NoError(t, err)
			assert.Equal(t, "same!", out)
		}()
	}

	wg.Wait()

	mu.Lock()
	defer mu.Unlock()

	assert.Equal(t, 3, calls)
}
