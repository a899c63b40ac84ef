package services

import (
	"context"
	"encoding/json"

	"bank-backend/config"

	"gorm.io/datatypes"
)

type settings struct {
	hashSecret   string
	currencyCode string
	queued       bool
}

var current = settings{
	hashSecret:   "default-secret",
	currencyCode: "BRL",
}

// Configure applies the process configuration to the services package.
func Configure(cfg *config.Config) {
	current = settings{
		hashSecret:   cfg.JWTSecret,
		currencyCode: cfg.CurrencyCode,
		queued:       cfg.QueuedSettlement(),
	}
	if current.hashSecret == "" {
		current.hashSecret = "default-secret"
	}
	if current.currencyCode == "" {
		current.currencyCode = "BRL"
	}
}

// QueuedSettlement reports whether money movements are settled by the worker.
func QueuedSettlement() bool {
	return current.queued
}

// RequestMeta describes who asked for a transaction.
type RequestMeta struct {
	UserID    uint   `json:"user_id,omitempty"`
	IP        string `json:"ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type requestMetaKey struct{}

func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

func RequestMetaFrom(ctx context.Context) (RequestMeta, bool) {
	meta, ok := ctx.Value(requestMetaKey{}).(RequestMeta)
	return meta, ok
}

func metadataJSON(ctx context.Context) datatypes.JSON {
	meta, ok := RequestMetaFrom(ctx)
	if !ok {
		return nil
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
