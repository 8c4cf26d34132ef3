package services

import (
	"sort"
	"strings"
	"sync"
	"time"

	logx "monopod-agents/pkg/logger"

	"github.com/gin-gonic/gin"
)

// DefaultMonitoringCapacity 保持するリクエストログの最大件数
const DefaultMonitoringCapacity = 10000

// requestIDHeader RequestIDミドルウェアがレスポンスに付与するヘッダー
const requestIDHeader = "X-Request-Id"

// LogEntry は単一のリクエストログを表します。
type LogEntry struct {
	Timestamp    time.Time     `json:"timestamp"`
	RequestID    string        `json:"requestId"`
	Path         string        `json:"path"`
	Method       string        `json:"method"`
	StatusCode   int           `json:"statusCode"`
	ResponseTime time.Duration `json:"responseTime"`
}

// MonitoringService はエージェントへのリクエストを記録し、ダッシュボード用に集計します。
// ログは固定長のリングバッファに保持され、古いものから上書きされます。
type MonitoringService struct {
	mu    sync.RWMutex
	logs  []LogEntry
	next  int
	full  bool
	now   func() time.Time
	loc   *time.Location
	skips []string
}

// NewMonitoringService は新しいMonitoringServiceを生成します。capacityが0以下ならDefaultMonitoringCapacityです。
func NewMonitoringService(capacity int) *MonitoringService {
	if capacity <= 0 {
		capacity = DefaultMonitoringCapacity
	}
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		loc = time.UTC
	}
	return &MonitoringService{
		logs:  make([]LogEntry, capacity),
		now:   time.Now,
		loc:   loc,
		skips: []string{"/monitoring", "/health"},
	}
}

// LogRequest はリクエストを記録します。
func (s *MonitoringService) LogRequest(entry LogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs[s.next] = entry
	s.next = (s.next + 1) % len(s.logs)
	if s.next == 0 {
		s.full = true
	}
}

// Entries は記録済みのログを古い順に返します。
func (s *MonitoringService) Entries() []LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

func (s *MonitoringService) snapshot() []LogEntry {
	if !s.full {
		out := make([]LogEntry, s.next)
		copy(out, s.logs[:s.next])
		return out
	}
	out := make([]LogEntry, 0, len(s.logs))
	out = append(out, s.logs[s.next:]...)
	return append(out, s.logs[:s.next]...)
}

// LoggingMiddleware はリクエスト情報を記録してzerologに出力するGinミドルウェアです。
func (s *MonitoringService) LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := s.now()

		c.Next()

		path := c.Request.URL.Path
		entry := LogEntry{
			Timestamp:    start,
			RequestID:    c.Writer.Header().Get(requestIDHeader),
			Path:         path,
			Method:       c.Request.Method,
			StatusCode:   c.Writer.Status(),
			ResponseTime: s.now().Sub(start),
		}

		logx.Info().
			Str("request_id", entry.RequestID).
			Str("method", entry.Method).
			Str("path", path).
			Int("status", entry.StatusCode).
			Dur("latency", entry.ResponseTime).
			Msg("request handled")

		for _, prefix := range s.skips {
			if strings.HasPrefix(path, prefix) {
				return
			}
		}
		s.LogRequest(entry)
	}
}

// TimeBucket 1時間ごとのリクエスト数
type TimeBucket struct {
	Time     string `json:"time"`
	Requests int    `json:"requests"`
}

// StatusCount ステータスコード区分ごとの件数
type StatusCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// EndpointLatency エンドポイントごとの平均応答時間（ミリ秒）
type EndpointLatency struct {
	Endpoint     string `json:"endpoint"`
	ResponseTime int64  `json:"responseTime"`
}

// DashboardData はダッシュボードに表示するための集計済みデータです。
type DashboardData struct {
	RequestsOverTime []TimeBucket      `json:"requestsOverTime"`
	Endpoints        map[string]int    `json:"endpoints"`
	StatusCodes      []StatusCount     `json:"statusCodes"`
	AvgResponseTimes []EndpointLatency `json:"avgResponseTimes"`
	RecentErrors     []LogEntry        `json:"recentErrors"`
}

const (
	status2xx = "2xx Success"
	status4xx = "4xx Client Error"
	status5xx = "5xx Server Error"
)

// GetDashboardData は指定された期間のログを集計してダッシュボード用データを返します。
func (s *MonitoringService) GetDashboardData(periodHours int) DashboardData {
	if periodHours < 1 {
		periodHours = 1
	}

	s.mu.RLock()
	logs := s.snapshot()
	s.mu.RUnlock()

	now := s.now().In(s.loc)
	since := now.Add(-time.Duration(periodHours) * time.Hour)

	filtered := make([]LogEntry, 0, len(logs))
	for _, entry := range logs {
		if entry.Timestamp.After(since) {
			filtered = append(filtered, entry)
		}
	}

	// 過去から現在の順に1時間ごとのバケットを用意
	buckets := make([]TimeBucket, periodHours)
	index := make(map[int64]int, periodHours)
	for i := 0; i < periodHours; i++ {
		t := now.Add(-time.Duration(periodHours-1-i) * time.Hour).Truncate(time.Hour)
		buckets[i] = TimeBucket{Time: t.Format("15:00")}
		index[t.Unix()] = i
	}

	endpoints := make(map[string]int)
	statusCounts := map[string]int{status2xx: 0, status4xx: 0, status5xx: 0}
	latencySum := make(map[string]time.Duration)

	for _, entry := range filtered {
		if i, ok := index[entry.Timestamp.In(s.loc).Truncate(time.Hour).Unix()]; ok {
			buckets[i].Requests++
		}
		endpoints[entry.Path]++
		latencySum[entry.Path] += entry.ResponseTime

		switch {
		case entry.StatusCode >= 500:
			statusCounts[status5xx]++
		case entry.StatusCode >= 400:
			statusCounts[status4xx]++
		case entry.StatusCode >= 200 && entry.StatusCode < 300:
			statusCounts[status2xx]++
		}
	}

	statusCodes := []StatusCount{
		{Name: status2xx, Value: statusCounts[status2xx]},
		{Name: status4xx, Value: statusCounts[status4xx]},
		{Name: status5xx, Value: statusCounts[status5xx]},
	}

	avgResponseTimes := make([]EndpointLatency, 0, len(latencySum))
	for path, total := range latencySum {
		avgResponseTimes = append(avgResponseTimes, EndpointLatency{
			Endpoint:     path,
			ResponseTime: total.Milliseconds() / int64(endpoints[path]),
		})
	}
	sort.Slice(avgResponseTimes, func(i, j int) bool {
		return avgResponseTimes[i].Endpoint < avgResponseTimes[j].Endpoint
	})

	// 新しい順に最大10件
	recentErrors := make([]LogEntry, 0)
	for i := len(filtered) - 1; i >= 0 && len(recentErrors) < 10; i-- {
		if filtered[i].StatusCode >= 500 {
			recentErrors = append(recentErrors, filtered[i])
		}
	}

	return DashboardData{
		RequestsOverTime: buckets,
		Endpoints:        endpoints,
		StatusCodes:      statusCodes,
		AvgResponseTimes: avgResponseTimes,
		RecentErrors:     recentErrors,
	}
}

// PeriodHours は period クエリ（1h/24h/7d）を時間数に変換します。未知の値は24時間です。
func PeriodHours(period string) int {
	switch period {
	case "1h":
		return 1
	case "7d":
		return 24 * 7
	default:
		return 24
	}
}
