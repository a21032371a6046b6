package notifier

import (
	"context"

	"github.com/Hakob23/thermal-monitoring/internal/models"
	"github.com/Hakob23/thermal-monitoring/internal/ws"
)

// WSNotifier 把引擎输出广播给 WebSocket 客户端（尽力而为，不返回错误）
type WSNotifier struct {
	hub *ws.Hub
}

// NewWSNotifier 创建 WebSocket 通知器
func NewWSNotifier(hub *ws.Hub) *WSNotifier {
	return &WSNotifier{hub: hub}
}

// PublishAlert 广播报警事件
func (n *WSNotifier) PublishAlert(ctx context.Context, alert models.Alert) error {
	n.hub.Broadcast("alert", alert)
	return nil
}

// PublishTrend 广播趋势分析结果
func (n *WSNotifier) PublishTrend(ctx context.Context, trend models.TrendResult) error {
	n.hub.Broadcast("trend_analysis", trend)
	return nil
}

// PublishAggregate 广播聚合窗口
func (n *WSNotifier) PublishAggregate(ctx context.Context, window models.AggregatedWindow) error {
	n.hub.Broadcast("aggregated_data", window)
	return nil
}
