package web

import "embed"

// TemplatesFS embeds the dashboard page and the chart partial.
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds the stylesheet and the chart client script.
//go:embed static/*
var StaticFS embed.FS
