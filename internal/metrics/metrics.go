package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	checkIns = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "parking_dashboard",
		Name:      "check_ins_total",
		Help:      "Số lượt check-in đã ghi nhận.",
	})
	checkOuts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "parking_dashboard",
		Name:      "check_outs_total",
		Help:      "Số lượt check-out đã ghi nhận.",
	})
	revenue = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "parking_dashboard",
		Name:      "revenue_collected_total",
		Help:      "Tổng phí đã thu qua check-out.",
	})
	reportsGenerated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "parking_dashboard",
		Name:      "revenue_reports_generated_total",
		Help:      "Số báo cáo doanh thu đã tổng hợp, theo nguồn kích hoạt.",
	}, []string{"trigger"})
)

// Register đăng ký các metric Prometheus. Gọi nhiều lần vẫn an toàn.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(checkIns, checkOuts, revenue, reportsGenerated)
	})
}

func IncCheckIn() {
	checkIns.Inc()
}

func IncCheckOut(cost float64) {
	checkOuts.Inc()
	if cost > 0 {
		revenue.Add(cost)
	}
}

// IncReportGenerated tăng bộ đếm báo cáo theo nguồn kích hoạt
// ("manual", "check_out", "scheduled").
func IncReportGenerated(trigger string) {
	reportsGenerated.WithLabelValues(trigger).Inc()
}
