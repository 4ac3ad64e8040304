package xwire

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLinkHandler_底层为nil(t *testing.T) {
	h, err := NewLinkHandler(nil, "app")
	require.ErrorIs(t, err, ErrNilHandler)
	assert.Nil(t, h)
}

func TestLinkHandler_注入app与链路ID(t *testing.T) {
	var buf bytes.Buffer
	base := slog.NewTextHandler(&buf, nil)
	h, err := NewLinkHandler(base, "payments")
	require.NoError(t, err)

	logger := slog.New(h)
	logger.Info("hello")

	line := buf.String()
	assert.Contains(t, line, "app=payments")
	assert.Contains(t, line, "link_id=")

	// 缺省 link_id 是合法 UUID
	idx := strings.Index(line, "link_id=")
	id := strings.Fields(line[idx+len("link_id="):])[0]
	_, err = uuid.Parse(id)
	assert.NoError(t, err, "生成的 link_id 应为合法 UUID")
}

func TestLinkHandler_沿用context中的链路ID(t *testing.T) {
	var buf bytes.Buffer
	h, err := NewLinkHandler(slog.NewTextHandler(&buf, nil), "svc")
	require.NoError(t, err)

	ctx := WithLinkID(context.Background(), "trace-abc-123")
	slog.New(h).InfoContext(ctx, "first")
	slog.New(h).InfoContext(ctx, "second")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.Contains(t, line, "link_id=trace-abc-123", "同一链路的日志共享 link_id")
	}
}

func TestLinkHandler_每条日志独立生成ID(t *testing.T) {
	var buf bytes.Buffer
	h, err := NewLinkHandler(slog.NewTextHandler(&buf, nil), "svc")
	require.NoError(t, err)

	logger := slog.New(h)
	logger.Info("one")
	logger.Info("two")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	extract := func(line string) string {
		idx := strings.Index(line, "link_id=")
		return strings.Fields(line[idx+len("link_id="):])[0]
	}
	assert.NotEqual(t, extract(lines[0]), extract(lines[1]),
		"无链路上下文时每条日志生成独立 ID")
}

func TestLinkHandler_WithAttrs与WithGroup(t *testing.T) {
	var buf bytes.Buffer
	h, err := NewLinkHandler(slog.NewTextHandler(&buf, nil), "svc")
	require.NoError(t, err)

	logger := slog.New(h).With("region", "eu-1").WithGroup("req")
	logger.Info("routed", "method", "GET")

	line := buf.String()
	assert.Contains(t, line, "region=eu-1")
	assert.Contains(t, line, "req.method=GET")
	// slog 的 group 作用于 handler 处理的所有属性，注入字段随之入组
	assert.Contains(t, line, "req.app=svc")
	assert.Contains(t, line, "req.link_id=")
}

func TestLinkIDFrom(t *testing.T) {
	assert.Empty(t, LinkIDFrom(nil))                  //nolint:staticcheck // 验证 nil ctx 安全
	assert.Empty(t, LinkIDFrom(context.Background()))

	ctx := WithLinkID(context.Background(), "id-1")
	assert.Equal(t, "id-1", LinkIDFrom(ctx))
}
