package notifier

import (
	"context"
	"errors"

	"github.com/Hakob23/thermal-monitoring/internal/models"
)

// Sink 完整的输出下游：报警 + 趋势 + 聚合
type Sink interface {
	PublishAlert(ctx context.Context, alert models.Alert) error
	PublishTrend(ctx context.Context, trend models.TrendResult) error
	PublishAggregate(ctx context.Context, window models.AggregatedWindow) error
}

// Fanout 把同一事件分发给多个下游
// 单个下游失败不阻止其余下游，所有错误合并后返回
type Fanout struct {
	sinks []Sink
}

// NewFanout 创建分发器
func NewFanout(sinks ...Sink) *Fanout {
	return &Fanout{sinks: sinks}
}

// PublishAlert 分发报警事件
func (f *Fanout) PublishAlert(ctx context.Context, alert models.Alert) error {
	var errs []error
	for _, sink := range f.sinks {
		if err := sink.PublishAlert(ctx, alert); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PublishTrend 分发趋势分析结果
func (f *Fanout) PublishTrend(ctx context.Context, trend models.TrendResult) error {
	var errs []error
	for _, sink := range f.sinks {
		if err := sink.PublishTrend(ctx, trend); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PublishAggregate 分发聚合窗口
func (f *Fanout) PublishAggregate(ctx context.Context, window models.AggregatedWindow) error {
	var errs []error
	for _, sink := range f.sinks {
		if err := sink.PublishAggregate(ctx, window); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
