package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallTool(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/tools/query_electricity_prices", r.URL.Path)

		var args map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&args))
		assert.Equal(t, "深圳", args["region_name"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"tool": "query_electricity_prices",
			"text": "未找到符合条件的电价数据",
		})
	}))
	defer srv.Close()

	c := New(srv.URL+"/", 5*time.Second)
	text, err := c.CallTool(context.Background(), "query_electricity_prices", map[string]any{"region_name": "深圳"})
	require.NoError(t, err)
	assert.Equal(t, "未找到符合条件的电价数据", text)
}

func TestCallToolNilArgs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var args map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&args))
		assert.Empty(t, args)
		_, _ = w.Write([]byte(`{"tool":"list_available_regions","text":"ok"}`))
	}))
	defer srv.Close()

	text, err := New(srv.URL, 5*time.Second).CallTool(context.Background(), "list_available_regions", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
}

func TestCallToolServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := New(srv.URL, 5*time.Second).CallTool(context.Background(), "list_available_regions", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestCallToolUnreachable(t *testing.T) {
	_, err := New("http://127.0.0.1:1", time.Second).CallTool(context.Background(), "list_available_regions", nil)
	require.Error(t, err)
}
