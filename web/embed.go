// Package web embeds the HTML templates and static assets served by the
// HTTP server.
package web

import "embed"

// TemplatesFS holds templates/*.html.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds static/*.
//
//go:embed static/*
var StaticFS embed.FS
