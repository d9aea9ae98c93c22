package followdash

import (
	"embed"
	"io/fs"
)

// EmbeddedAssets contains the static assets served under /public/.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS

func assets() fs.FS {
	sub, err := fs.Sub(EmbeddedAssets, "embedded")
	if err != nil {
		panic(err)
	}
	return sub
}
