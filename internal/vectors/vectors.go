// Package vectors serves the fixed set of block payloads the nodeproc
// ActionSeedWithTestnetBlocks initial action needs to hand to a
// node-under-test driver. The blocks are embedded at build time so no
// network fetch or external file is needed to exercise that path.
//
// No real Zcash testnet chain data was available in this module's source
// material; the embedded blocks are minimal, internally-consistent
// BlockHeader-plus-zero-transactions payloads (see DESIGN.md) good enough
// to round-trip through wire.MsgBlock, not an actual historical chain.
package vectors

import (
	"embed"
	"encoding/hex"
	"fmt"
	"strings"
)

//go:embed testdata/*.hex
var fs embed.FS

// MinHeight and MaxHeight bound the block heights Loader can serve.
const (
	MinHeight = 0
	MaxHeight = 10
)

// Loader serves pre-built block payloads by height.
type Loader interface {
	// Block returns the raw BtcEncode-ready payload for the block at
	// height, suitable for decoding with a wire.MsgBlock.
	Block(height int) ([]byte, error)
}

type embeddedLoader struct{}

// Default is the package's embedded Loader.
var Default Loader = embeddedLoader{}

func (embeddedLoader) Block(height int) ([]byte, error) {
	if height < MinHeight || height > MaxHeight {
		return nil, fmt.Errorf("vectors: height %d out of range [%d, %d]", height, MinHeight, MaxHeight)
	}

	raw, err := fs.ReadFile(fmt.Sprintf("testdata/height_%02d.hex", height))
	if err != nil {
		return nil, fmt.Errorf("vectors: reading height %d: %w", height, err)
	}

	decoded, err := hex.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("vectors: decoding height %d: %w", height, err)
	}
	return decoded, nil
}
