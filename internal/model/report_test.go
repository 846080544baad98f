package model_test

import (
	"testing"
	"time"

	"downwatch/internal/model"
	"downwatch/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const windowMillis = int64(24 * 3600 * 1000)

func TestCreateAndQueryReports(t *testing.T) {
	testutil.SetupDB(t)

	now := time.Now().UnixMilli()
	require.NoError(t, model.CreateReport("1.2.3.4", now))
	require.NoError(t, model.CreateReport("5.6.7.8", now-1000))

	reports, err := model.GetRecentReports(now - windowMillis)
	require.NoError(t, err)
	assert.Len(t, reports, 2)

	count, err := model.CountRecentReports(now - windowMillis)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestHasRecentReportWindowBoundary(t *testing.T) {
	testutil.SetupDB(t)

	now := time.Now().UnixMilli()
	since := now - windowMillis

	// 正好在窗口边界上的记录 (timestamp == since) 不算窗口内
	require.NoError(t, model.CreateReport("1.2.3.4", since))
	has, err := model.HasRecentReport("1.2.3.4", since)
	require.NoError(t, err)
	assert.False(t, has)

	// 边界之后一毫秒算窗口内
	require.NoError(t, model.CreateReport("9.9.9.9", since+1))
	has, err = model.HasRecentReport("9.9.9.9", since)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestHasRecentReportPerAddress(t *testing.T) {
	testutil.SetupDB(t)

	now := time.Now().UnixMilli()
	require.NoError(t, model.CreateReport("1.2.3.4", now))

	has, err := model.HasRecentReport("5.6.7.8", now-windowMillis)
	require.NoError(t, err)
	assert.False(t, has, "another address must not be affected")
}

func TestOldReportsExcludedButKept(t *testing.T) {
	testutil.SetupDB(t)

	now := time.Now().UnixMilli()
	require.NoError(t, model.CreateReport("1.2.3.4", now-windowMillis-5000))
	require.NoError(t, model.CreateReport("1.2.3.4", now))

	// 窗口查询只看到新记录
	reports, err := model.GetRecentReports(now - windowMillis)
	require.NoError(t, err)
	assert.Len(t, reports, 1)

	// 旧记录并没有被删除
	var total int64
	require.NoError(t, model.GetDB().Model(&model.Report{}).Count(&total).Error)
	assert.Equal(t, int64(2), total)
}
