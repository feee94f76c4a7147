package pool

var (
	poolConfigKeyPrefix = []byte("pool/config")
	userKeyPrefix       = []byte("pool/user/")
	deployKeyPrefix     = []byte("pool/deploy/")
)

func userKey(addr string) []byte {
	return append(append([]byte(nil), userKeyPrefix...), addr...)
}

func deployKey(requestID string) []byte {
	return append(append([]byte(nil), deployKeyPrefix...), requestID...)
}
