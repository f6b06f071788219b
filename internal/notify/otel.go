package notify

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/planforge/planforge/internal/notify"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
