package xwire

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// 注入的属性名
const (
	// AttrApp 应用名属性
	AttrApp = "app"

	// AttrLinkID 链路 ID 属性
	AttrLinkID = "link_id"
)

// linkIDKey context 中链路 ID 的键类型
type linkIDKey struct{}

// WithLinkID 把链路 ID 放入 context，同一链路的日志由此串联。
func WithLinkID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, linkIDKey{}, id)
}

// LinkIDFrom 从 context 取出链路 ID，不存在时返回空串。
func LinkIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(linkIDKey{}).(string)
	return id
}

// NewLinkID 生成一个新的链路 ID（UUID v4）。
func NewLinkID() string {
	return uuid.NewString()
}

// LinkHandler 装饰底层 slog.Handler，为每条日志注入 app 与 link_id。
//
// link_id 优先取 context 中由 [WithLinkID] 放入的值，
// 缺失时为该条日志生成一次性 UUID，保证字段恒存在。
type LinkHandler struct {
	base slog.Handler
	app  string
}

// NewLinkHandler 创建 LinkHandler。
func NewLinkHandler(base slog.Handler, app string) (*LinkHandler, error) {
	if base == nil {
		return nil, ErrNilHandler
	}
	return &LinkHandler{base: base, app: app}, nil
}

// Enabled 委托给底层 handler。
func (h *LinkHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

// Handle 注入属性后交给底层 handler。
// 按 slog 契约 Clone record 后再修改，避免影响同层其他 handler。
func (h *LinkHandler) Handle(ctx context.Context, r slog.Record) error {
	linkID := LinkIDFrom(ctx)
	if linkID == "" {
		linkID = NewLinkID()
	}

	r = r.Clone()
	r.AddAttrs(
		slog.String(AttrApp, h.app),
		slog.String(AttrLinkID, linkID),
	)
	return h.base.Handle(ctx, r)
}

// WithAttrs 返回带额外属性的新 handler。
func (h *LinkHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LinkHandler{base: h.base.WithAttrs(attrs), app: h.app}
}

// WithGroup 返回带分组的新 handler。
func (h *LinkHandler) WithGroup(name string) slog.Handler {
	return &LinkHandler{base: h.base.WithGroup(name), app: h.app}
}
