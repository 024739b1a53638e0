package storage

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/BalanceBalls/timedoctor-reports/internal/report"
)

var (
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	decoder, _ = zstd.NewReader(nil)
)

// Encode returns the compressed JSON form of rep.
func Encode(rep report.Report) ([]byte, error) {
	data, err := json.Marshal(rep)
	if err != nil {
		return nil, fmt.Errorf("could not encode report: %w", err)
	}
	return encoder.EncodeAll(data, nil), nil
}

// Decode returns the JSON report held in payload.
func Decode(payload []byte) ([]byte, error) {
	data, err := decoder.DecodeAll(payload, nil)
	if err != nil {
		return nil, fmt.Errorf("could not decompress report: %w", err)
	}
	return data, nil
}
