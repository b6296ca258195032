package schema

import (
	"embed"
	"io/fs"
)

// DefaultFile names the bundled vehicle schema inside EmbeddedFS.
const DefaultFile = "vehicle.yaml"

//go:embed ui/schema/*
var embeddedSchema embed.FS

// EmbeddedFS returns the bundled schema documents.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embeddedSchema, "ui/schema")
	if err != nil {
		// The embed directive guarantees the subpath exists.
		panic(err)
	}
	return sub
}

// Default loads the bundled vehicle schema.
func Default() (Schema, error) {
	return LoadFS(EmbeddedFS(), DefaultFile)
}
