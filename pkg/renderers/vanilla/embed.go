package vanilla

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

//go:embed assets/*
var embeddedAssets embed.FS

const (
	FormTemplate   = "templates/form.tmpl"
	ResultTemplate = "templates/result.tmpl"
	StylesheetName = "carvalue.css"
	// RuntimeScriptName is the browser runtime served from the root package's
	// RuntimeAssetsFS.
	RuntimeScriptName = "carvalue.js"
)

// TemplatesFS exposes the embedded template bundle so callers can copy and
// customise it, then load the copy with WithTemplatesDir.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}

// AssetsFS exposes the embedded stylesheet so it can be served over HTTP. The
// renderer also inlines it into every page.
func AssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		return embeddedAssets
	}
	return sub
}

func defaultStylesheet() string {
	data, err := fs.ReadFile(embeddedAssets, "assets/"+StylesheetName)
	if err != nil {
		return ""
	}
	return string(data)
}
