package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// 重导出常用类型，业务代码不直接依赖 go.opentelemetry.io/otel
type (
	Span            = trace.Span
	Tracer          = trace.Tracer
	SpanStartOption = trace.SpanStartOption
	Attribute       = attribute.KeyValue
)

const (
	SpanKindServer   = trace.SpanKindServer
	SpanKindInternal = trace.SpanKindInternal
	SpanKindProducer = trace.SpanKindProducer

	CodeError = codes.Error
	CodeOk    = codes.Ok
)

var (
	String = attribute.String
	Int    = attribute.Int
	Int64  = attribute.Int64
	Bool   = attribute.Bool
)

// WithSpanKind 设置 span 类型
func WithSpanKind(kind trace.SpanKind) SpanStartOption {
	return trace.WithSpanKind(kind)
}

// WithAttributes 设置 span 属性
func WithAttributes(attrs ...Attribute) SpanStartOption {
	return trace.WithAttributes(attrs...)
}

// GetTextMapPropagator 获取全局传播器
func GetTextMapPropagator() propagation.TextMapPropagator {
	return otel.GetTextMapPropagator()
}

// HeaderCarrier HTTP Header 载体
type HeaderCarrier = propagation.HeaderCarrier

// MapCarrier 消息头载体
type MapCarrier = propagation.MapCarrier
