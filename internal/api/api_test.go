package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"electricity-price/internal/mcp"
	"electricity-price/internal/models"
	"electricity-price/internal/normalize"
	"electricity-price/internal/query"
	"electricity-price/internal/tools"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type memoryStore struct {
	rows  []models.ElectricityPrice
	calls int
}

func (m *memoryStore) Fetch(_ context.Context, preds query.PredicateSet) ([]models.ElectricityPrice, error) {
	m.calls++
	region, _ := preds.Get(query.FieldRegion)
	var out []models.ElectricityPrice
	for _, r := range m.rows {
		if region == "" || r.RegionName == region {
			out = append(out, r)
		}
	}
	return out, nil
}

func newRouter(t *testing.T, st tools.Fetcher, limiter *rate.Limiter) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	table, err := normalize.DefaultAliasTable()
	require.NoError(t, err)
	svc := tools.NewService(table, st, nil)
	rpc := mcp.NewServer(svc, nil, "electricity_price_mcp_server", "test")

	r := gin.New()
	SetupRoutes(r.Group("/api/v1"), svc, rpc, zap.NewNop(), limiter)
	return r
}

func sampleStore() *memoryStore {
	normal := decimal.RequireFromString("0.6543")
	return &memoryStore{rows: []models.ElectricityPrice{
		{RegionName: "深圳市", PriceDate: "2024年12月", ElectricityType1Desc: "大工业用电", VoltageLevelDesc: "1-10千伏", NormalPrice: &normal},
	}}
}

func decodeTool(t *testing.T, w *httptest.ResponseRecorder) ToolResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code)
	var resp ToolResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCallTool(t *testing.T) {
	r := newRouter(t, sampleStore(), nil)

	body := `{"region_name":"深圳","price_date":"2024年12月"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tools/query_electricity_prices", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	resp := decodeTool(t, w)
	assert.Equal(t, tools.ToolQueryPrices, resp.Tool)
	assert.Contains(t, resp.Text, "0.6543")
	assert.False(t, resp.IsError)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestCallToolHintAndUnknown(t *testing.T) {
	st := sampleStore()
	r := newRouter(t, st, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/tools/query_electricity_prices", nil))
	assert.Equal(t, query.HintNoFilter, decodeTool(t, w).Text)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/tools/launch_rockets", strings.NewReader(`{}`)))
	assert.Equal(t, "未知的工具: launch_rockets", decodeTool(t, w).Text)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/tools/query_electricity_prices", strings.NewReader(`[1,2]`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, 0, st.calls)
}

func TestQueryPricesPlainText(t *testing.T) {
	r := newRouter(t, sampleStore(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/prices?region_name=%E6%B7%B1%E5%9C%B3", nil)
	req.Header.Set("Accept", "text/plain")
	req.Header.Set(requestIDHeader, "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "查询结果：共 1 条"))
	assert.Equal(t, "req-42", w.Header().Get(requestIDHeader))
}

func TestListToolsAndRegions(t *testing.T) {
	r := newRouter(t, sampleStore(), nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/tools", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Tools []tools.Definition `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list.Tools, 2)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/regions", nil))
	assert.Contains(t, decodeTool(t, w).Text, "深圳市")
}

func TestRateLimit(t *testing.T) {
	r := newRouter(t, sampleStore(), rate.NewLimiter(rate.Limit(0.001), 1))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/regions", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/regions", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestWebsocketJSONRPC(t *testing.T) {
	srv := httptest.NewServer(newRouter(t, sampleStore(), nil))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"query_electricity_prices","arguments":{"region_name":"鹏城","price_date":"2024/12"}}}`)))

	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var resp struct {
		ID     int `json:"id"`
		Result struct {
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
			IsError bool `json:"isError"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(msg, &resp))
	assert.Equal(t, 1, resp.ID)
	require.Len(t, resp.Result.Content, 1)
	assert.Contains(t, resp.Result.Content[0].Text, "深圳市")
	assert.False(t, resp.Result.IsError)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
}
