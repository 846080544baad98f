package service_test

import (
	"testing"
	"time"

	"downwatch/internal/model"
	"downwatch/internal/service"
	"downwatch/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const windowMillis = int64(24 * 3600 * 1000)

func seedReports(t *testing.T, n int) {
	t.Helper()
	now := time.Now().UnixMilli()
	for i := 0; i < n; i++ {
		require.NoError(t, model.CreateReport("10.0.0.1", now-int64(i)))
	}
}

func TestResolveAutoBelowThreshold(t *testing.T) {
	testutil.SetupDB(t)
	service.GetStatusService().Configure(windowMillis, 30)

	seedReports(t, 29)
	result, err := service.GetStatusService().Resolve()
	require.NoError(t, err)

	assert.Equal(t, service.StatusPhraseUp, result.Status)
	assert.Equal(t, 29, result.Count)
	assert.Len(t, result.Reports, 29)
	assert.False(t, result.Forced)
}

func TestResolveAutoAtThreshold(t *testing.T) {
	testutil.SetupDB(t)
	service.GetStatusService().Configure(windowMillis, 30)

	// 阈值是包含边界: 正好30条即判定疑似故障
	seedReports(t, 30)
	result, err := service.GetStatusService().Resolve()
	require.NoError(t, err)

	assert.Equal(t, service.StatusPhraseProbablyDown, result.Status)
	assert.Equal(t, 30, result.Count)
	assert.False(t, result.Forced)
}

func TestResolveForcedUpIgnoresLedger(t *testing.T) {
	testutil.SetupDB(t)
	service.GetStatusService().Configure(windowMillis, 30)

	seedReports(t, 100)
	require.NoError(t, model.SetSettingValue(model.SettingKeyForceStatus, model.ForceStatusUp))

	result, err := service.GetStatusService().Resolve()
	require.NoError(t, err)

	// 强制模式完全跳过窗口查询
	assert.Equal(t, service.StatusPhraseUp, result.Status)
	assert.Equal(t, 0, result.Count)
	assert.Empty(t, result.Reports)
	assert.True(t, result.Forced)
}

func TestResolveForcedDown(t *testing.T) {
	testutil.SetupDB(t)
	service.GetStatusService().Configure(windowMillis, 30)

	require.NoError(t, model.SetSettingValue(model.SettingKeyForceStatus, model.ForceStatusDown))

	result, err := service.GetStatusService().Resolve()
	require.NoError(t, err)

	assert.Equal(t, service.StatusPhraseDown, result.Status)
	assert.Equal(t, 0, result.Count)
	assert.True(t, result.Forced)
}

func TestResolveExcludesReportsOutsideWindow(t *testing.T) {
	testutil.SetupDB(t)
	service.GetStatusService().Configure(windowMillis, 30)

	now := time.Now().UnixMilli()
	for i := 0; i < 50; i++ {
		require.NoError(t, model.CreateReport("10.0.0.1", now-windowMillis-int64(i)-1))
	}

	result, err := service.GetStatusService().Resolve()
	require.NoError(t, err)

	assert.Equal(t, service.StatusPhraseUp, result.Status)
	assert.Equal(t, 0, result.Count)
}
