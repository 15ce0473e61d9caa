package handlers

import (
	_ "embed"
	"net/http"
	"strings"
)

//go:embed openapi.json
var openAPISpec []byte

const redocPage = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>JewelShot API</title>
<style>body{margin:0}redoc{display:block;height:100vh}</style></head>
<body><redoc spec-url="/api/openapi.json"></redoc>
<script src="https://cdn.jsdelivr.net/npm/redoc@2.2.0/bundles/redoc.standalone.js"></script></body>
</html>`

// APIDocs serves the OpenAPI document for /openapi.json and for clients that
// ask for JSON, and a Redoc page rendering it otherwise.
func (a *App) APIDocs(w http.ResponseWriter, r *http.Request) {
	if strings.HasSuffix(r.URL.Path, ".json") || strings.Contains(r.Header.Get("Accept"), "application/json") {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write(openAPISpec)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(redocPage))
}
