package logger

import (
	"time"

	"go.uber.org/zap"
)

func RequestID(v string) zap.Field { return zap.String("request_id", v) }

func Method(v string) zap.Field { return zap.String("method", v) }

func Path(v string) zap.Field { return zap.String("path", v) }

func Status(v int) zap.Field { return zap.Int("status", v) }

// Latency records a duration in fractional milliseconds.
func Latency(d time.Duration) zap.Field {
	return zap.Float64("latency_ms", float64(d.Microseconds())/1000)
}

func UserID(v string) zap.Field { return zap.String("user_id", v) }

func ReportID(v string) zap.Field { return zap.String("report_id", v) }

func DocumentID(v string) zap.Field { return zap.String("document_id", v) }

func Component(v string) zap.Field { return zap.String("component", v) }
