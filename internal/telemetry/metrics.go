package telemetry

import (
	"auction-engine/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentation = "auction-engine"

// Counters exported by the engine. They start on the global meter provider,
// a no-op until Setup installs one, and are rebound when it does.
var (
	BidsAccepted          metric.Int64Counter
	BidsRejected          metric.Int64Counter
	AuctionsFinalized     metric.Int64Counter
	SettlementTransitions metric.Int64Counter
	SubscribersDropped    metric.Int64Counter
)

func init() {
	bind(otel.GetMeterProvider())
}

// bind creates the counters on provider. It runs at startup, before any
// component records.
func bind(provider metric.MeterProvider) {
	meter := provider.Meter(instrumentation)
	BidsAccepted = counter(meter, "auction.bids.accepted", "Bids committed to an auction")
	BidsRejected = counter(meter, "auction.bids.rejected", "Bids rejected before being committed")
	AuctionsFinalized = counter(meter, "auction.finalized", "Auctions moved to a terminal status")
	SettlementTransitions = counter(meter, "settlement.transitions", "Accepted settlement action events")
	SubscribersDropped = counter(meter, "broker.subscribers.dropped", "Subscribers dropped because their queue was full")
}

func counter(meter metric.Meter, name, description string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		utils.Warn("telemetry: failed to create counter", map[string]any{"name": name, "error": err.Error()})
		return noop.Int64Counter{}
	}
	return c
}
