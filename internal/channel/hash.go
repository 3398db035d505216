package channel

// Hash computes the one-byte channel hash the radio transmits in cleartext:
// the XOR of every byte of the channel name XORed with the XOR of every byte
// of the expanded key.
func Hash(name string, psk []byte) (byte, error) {
	key, err := ExpandPSK(psk)
	if err != nil {
		return 0, err
	}

	return xorFold([]byte(name)) ^ xorFold(key), nil
}

// HashBase64 is Hash for a base64 encoded PSK.
func HashBase64(name, pskB64 string) (byte, error) {
	raw, err := DecodePSK(pskB64)
	if err != nil {
		return 0, err
	}

	return Hash(name, raw)
}

// hashWithKey skips expansion for callers that already hold the expanded key.
func hashWithKey(name string, keyFold byte) byte {
	return xorFold([]byte(name)) ^ keyFold
}

func xorFold(b []byte) byte {
	var out byte
	for _, v := range b {
		out ^= v
	}

	return out
}
