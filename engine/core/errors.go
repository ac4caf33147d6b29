package core

import (
	"errors"
)

var (
	ErrFrameOutOfOrder        = errors.New("frame id must be strictly greater than the previous one")
	ErrFenceValueNotMonotonic = errors.New("fence signal value must be strictly increasing")
	ErrShaderNotFound         = errors.New("shader binary not found")
	ErrInvalidShaderBinary    = errors.New("invalid SPIR-V binary")
	ErrNoSuitableDevice       = errors.New("no physical device meets the requirements")
	ErrUnknownAssetType       = errors.New("unknown asset type")
	ErrAssetManagerClosed     = errors.New("asset manager already closed")
)
