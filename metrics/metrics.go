// Package metrics 定義服務的 Prometheus 指標
package metrics

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "uoauth"

type Metrics struct {
	// 驗證步驟結果，label: provider, status
	StepOutcomes *prometheus.CounterVec
	// 完成驗證後寫入紀錄的結果，label: result (created, replaced, duplicate, error)
	Finalizations *prometheus.CounterVec
	// 角色設定結果，label: platform, result (ok, error)
	Provisions *prometheus.CounterVec
	// 目前開啟的事件連線數
	OpenChannels prometheus.Gauge
	// 因為訂閱者太慢而丟棄的事件數
	DroppedEvents prometheus.Counter
	// 寄出的驗證碼信件數
	TokensIssued prometheus.Counter
}

// New 建立並註冊指標，reg 為 nil 時只建立不註冊
func New(reg prometheus.Registerer, logger *slog.Logger) *Metrics {
	m := &Metrics{
		StepOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "step_outcomes_total",
			Help:      "Total number of verification step outcomes.",
		}, []string{"provider", "status"}),
		Finalizations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "finalizations_total",
			Help:      "Total number of authentication record writes.",
		}, []string{"result"}),
		Provisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provisions_total",
			Help:      "Total number of per-platform provisioning runs.",
		}, []string{"platform", "result"}),
		OpenChannels: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "open_channels",
			Help:      "Current number of open event channels.",
		}),
		DroppedEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_events_total",
			Help:      "Total number of events dropped for slow subscribers.",
		}),
		TokensIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_issued_total",
			Help:      "Total number of one-time tokens emailed.",
		}),
	}
	if reg == nil {
		return m
	}
	if logger == nil {
		logger = slog.Default()
	}
	for _, c := range []prometheus.Collector{
		m.StepOutcomes,
		m.Finalizations,
		m.Provisions,
		m.OpenChannels,
		m.DroppedEvents,
		m.TokensIssued,
	} {
		if err := reg.Register(c); err != nil {
			logger.Warn("fail to register metric", slog.Any("error", err))
		}
	}
	return m
}

// Nop 回傳未註冊的指標，用於測試或不需要輸出指標的情境
func Nop() *Metrics {
	return New(nil, nil)
}
