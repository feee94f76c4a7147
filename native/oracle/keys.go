package oracle

const oracleKeyPrefix = "pool/oracle/"

// Canonical instance names for the two oracles the pool tracks.
const (
	SynthOracleName = "synth"
	ShareOracleName = "share"
)

func oracleStateKey(name string) []byte {
	return []byte(oracleKeyPrefix + name)
}
