// Command generate_docs renders the project docs page: the README converted
// to HTML plus a command reference generated from the default configuration.
// It is run by the release workflow with the output directory as its only
// argument.
package main

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/jamesmacfie/monocle-sub001/internal/config"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <out-dir>\n", os.Args[0])
		os.Exit(1)
	}
	outDir := os.Args[1]

	readme, err := os.ReadFile("README.md")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading README.md: %v\n", err)
		os.Exit(1)
	}

	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse(readme)

	opts := mdhtml.RendererOptions{Flags: mdhtml.CommonFlags | mdhtml.HrefTargetBlank}
	renderer := mdhtml.NewRenderer(opts)
	readmeHTML := markdown.Render(doc, renderer)

	reference, err := commandReference()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building command reference: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", outDir, err)
		os.Exit(1)
	}
	indexPath := filepath.Join(outDir, "index.html")
	f, err := os.Create(indexPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating index.html: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	fmt.Fprintln(f, "<!DOCTYPE html>")
	fmt.Fprintln(f, `<html lang="en"><head><meta charset="utf-8"><title>monocle</title>`)
	fmt.Fprintln(f, `<meta name="viewport" content="width=device-width, initial-scale=1">`)
	fmt.Fprintln(f, `<style>body{max-width:60rem;margin:2rem auto;padding:0 1rem;font-family:sans-serif;line-height:1.5}code,pre{background:#f4f4f4}table{border-collapse:collapse}td,th{border:1px solid #ccc;padding:.3rem .6rem}</style>`)
	fmt.Fprintln(f, "</head><body>")
	f.Write(readmeHTML)
	fmt.Fprintln(f, reference)
	fmt.Fprintln(f, "</body></html>")

	fmt.Printf("Generated %s\n", indexPath)
}

// commandReference renders the default provider trees as an HTML section.
func commandReference() (string, error) {
	cfg, err := config.Default()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(`<h2 id="default-commands">Default commands</h2>`)
	for _, p := range cfg.Providers {
		fmt.Fprintf(&b, "<h3>%s</h3>\n<ul>\n", html.EscapeString(p.Name))
		writeCommands(&b, p.Commands)
		b.WriteString("</ul>\n")
	}
	return b.String(), nil
}

func writeCommands(b *strings.Builder, cmds []config.Command) {
	for _, c := range cmds {
		name := c.Name
		if name == "" {
			name = c.ID
		}
		fmt.Fprintf(b, "<li><strong>%s</strong>", html.EscapeString(name))
		if c.Description != "" {
			fmt.Fprintf(b, " – %s", html.EscapeString(c.Description))
		}
		if c.Keybinding != "" {
			fmt.Fprintf(b, " <code>%s</code>", html.EscapeString(c.Keybinding))
		}
		if len(c.Children) > 0 {
			b.WriteString("<ul>\n")
			writeCommands(b, c.Children)
			b.WriteString("</ul>\n")
		}
		b.WriteString("</li>\n")
	}
}
