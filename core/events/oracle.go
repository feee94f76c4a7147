package events

import "strconv"

const (
	// TypeOracleUpdated is emitted after a successful TWAP recomputation.
	TypeOracleUpdated = "oracle.updated"
	// TypeOracleConfigured is emitted when an oracle is pointed at a pair.
	TypeOracleConfigured = "oracle.configured"
	// TypeEpochAdvanced is emitted when the expansion window rolls over.
	TypeEpochAdvanced = "epoch.advanced"
)

func uintString(v uint64) string {
	return strconv.FormatUint(v, 10)
}

// OracleUpdated reports the oracle instance and the freshly computed TWAP.
type OracleUpdated struct {
	Oracle     string
	Twap       string
	LastUpdate uint64
}

func (OracleUpdated) EventType() string { return TypeOracleUpdated }

func (e OracleUpdated) Attributes() map[string]string {
	return map[string]string{
		"oracle":     e.Oracle,
		"twap":       e.Twap,
		"lastUpdate": uintString(e.LastUpdate),
	}
}

// OracleConfigured reports a pair rebind; the TWAP resets alongside it.
type OracleConfigured struct {
	Oracle     string
	PairAddr   string
	BaseIndex  uint8
	TwapPeriod uint64
}

func (OracleConfigured) EventType() string { return TypeOracleConfigured }

func (e OracleConfigured) Attributes() map[string]string {
	return map[string]string{
		"oracle":      e.Oracle,
		"pairAddress": e.PairAddr,
		"baseIndex":   uintString(uint64(e.BaseIndex)),
		"twapPeriod":  uintString(e.TwapPeriod),
	}
}

// EpochAdvanced reports the TWAP that seeded the new expansion window.
type EpochAdvanced struct {
	Twap           string
	StartTimestamp uint64
}

func (EpochAdvanced) EventType() string { return TypeEpochAdvanced }

func (e EpochAdvanced) Attributes() map[string]string {
	return map[string]string{
		"twap":           e.Twap,
		"startTimestamp": uintString(e.StartTimestamp),
	}
}
