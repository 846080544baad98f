package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"downwatch/internal/model"
	"downwatch/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const windowMillis = int64(24 * 3600 * 1000)

func TestReportOncePerWindow(t *testing.T) {
	r, _ := testutil.NewTestServer(t)

	w := testutil.DoJSON(r, http.MethodPost, "/report", "1.2.3.4", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)

	// 窗口内重复上报被拒绝
	w = testutil.DoJSON(r, http.MethodPost, "/report", "1.2.3.4", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "You can only report once every 24 hours.")

	// 其他地址不受影响
	w = testutil.DoJSON(r, http.MethodPost, "/report", "5.6.7.8", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReportAllowedAfterWindowExpires(t *testing.T) {
	r, _ := testutil.NewTestServer(t)

	// 直接写入一条刚好滑出窗口的旧上报
	old := time.Now().UnixMilli() - windowMillis - 1
	require.NoError(t, model.CreateReport("1.2.3.4", old))

	w := testutil.DoJSON(r, http.MethodPost, "/report", "1.2.3.4", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReportRejectedJustInsideWindow(t *testing.T) {
	r, _ := testutil.NewTestServer(t)

	recent := time.Now().UnixMilli() - windowMillis + 60_000
	require.NoError(t, model.CreateReport("1.2.3.4", recent))

	w := testutil.DoJSON(r, http.MethodPost, "/report", "1.2.3.4", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// 拒绝时不产生新记录
	var count int64
	model.GetDB().Model(&model.Report{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

type statusResponse struct {
	Status  string         `json:"status"`
	Count   int            `json:"count"`
	Reports []model.Report `json:"reports"`
	Forced  bool           `json:"forced"`
}

func TestStatusAuto(t *testing.T) {
	r, _ := testutil.NewTestServer(t)

	now := time.Now().UnixMilli()
	for i := 0; i < 29; i++ {
		require.NoError(t, model.CreateReport("10.0.0.1", now-int64(i)))
	}

	w := testutil.DoJSON(r, http.MethodGet, "/status", "1.2.3.4", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp statusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "up", resp.Status)
	assert.Equal(t, 29, resp.Count)
	assert.Len(t, resp.Reports, 29)
	assert.False(t, resp.Forced)

	// 第30条达到阈值
	require.NoError(t, model.CreateReport("10.0.0.2", now))
	w = testutil.DoJSON(r, http.MethodGet, "/status", "1.2.3.4", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "probably down", resp.Status)
	assert.Equal(t, 30, resp.Count)
}

func TestStatusForcedUpIgnoresReports(t *testing.T) {
	r, _ := testutil.NewTestServer(t)

	now := time.Now().UnixMilli()
	for i := 0; i < 1000; i++ {
		require.NoError(t, model.CreateReport("10.0.0.1", now-int64(i)))
	}
	require.NoError(t, model.SetSettingValue(model.SettingKeyForceStatus, model.ForceStatusUp))

	w := testutil.DoJSON(r, http.MethodGet, "/status", "1.2.3.4", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp statusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "up", resp.Status)
	assert.Equal(t, 0, resp.Count)
	assert.Empty(t, resp.Reports)
	assert.True(t, resp.Forced)
}
