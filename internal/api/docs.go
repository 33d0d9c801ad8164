package api

import (
	_ "embed"
	"fmt"
	"net/http"
	"strings"

	"gostat/app"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

//go:embed docs/api.md
var apiMarkdown string

// DatasetInfo describes one resource in the /datasets listing
type DatasetInfo struct {
	Name    string       `json:"name"`
	Path    string       `json:"path"`
	Target  string       `json:"target"`
	Rows    int          `json:"rows"`
	Columns []ColumnInfo `json:"columns"`
}

// ColumnInfo describes one column of a dataset
type ColumnInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func describe(services []*app.StatsService) []DatasetInfo {
	infos := make([]DatasetInfo, 0, len(services))
	for _, svc := range services {
		info := DatasetInfo{
			Name:   svc.Name(),
			Path:   "/" + svc.Name(),
			Target: svc.Target(),
			Rows:   svc.Rows(),
		}
		for _, f := range svc.Schema().Fields() {
			info.Columns = append(info.Columns, ColumnInfo{Name: f.Name, Type: string(f.Type)})
		}
		infos = append(infos, info)
	}
	return infos
}

// renderDocs appends one section per dataset to the embedded API description
// and renders the result as a standalone HTML page
func renderDocs(services []*app.StatsService) []byte {
	var b strings.Builder
	b.WriteString(apiMarkdown)

	for _, info := range describe(services) {
		fmt.Fprintf(&b, "\n## GET %s\n\nStatistics of `%s` over %d rows. Filterable columns:\n\n", info.Path, info.Target, info.Rows)
		b.WriteString("| Column | Type |\n|---|---|\n")
		for _, col := range info.Columns {
			fmt.Fprintf(&b, "| %s | %s |\n", col.Name, col.Type)
		}
	}

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Title: "gostat API",
		Flags: html.CommonFlags | html.CompletePage | html.HrefTargetBlank,
	})
	return markdown.ToHTML([]byte(b.String()), p, renderer)
}

// handleDocs serves the pre-rendered documentation page
func handleDocs(page []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", page)
	}
}

// handleDatasets lists the served datasets and their schemas
func handleDatasets(infos []DatasetInfo) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"datasets": infos})
	}
}
