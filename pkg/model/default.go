package model

import _ "embed"

// The bundled artifact mirrors the deployment layout of the original
// system: the trained classifier ships next to the code and is used
// whenever no explicit artifact path is configured.
//
//go:embed model.json
var defaultArtifact []byte

// Default returns the bundled classifier validated against the expected
// feature list.
func Default(features []string) (*Forest, error) {
	return parse(defaultArtifact, features)
}
