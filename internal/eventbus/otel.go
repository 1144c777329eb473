package eventbus

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/nova-webgames/arena/internal/eventbus"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
