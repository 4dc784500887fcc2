// Package ui renders the HTML pages of the service.
package ui

import (
	"bytes"
	"html/template"
	"sync"
)

type Link struct {
	Href  string
	Title string
}

// Links are the fixed navigation items in display order.
var Links = []Link{
	{Href: "/home", Title: "Home"},
	{Href: "/list", Title: "List"},
	{Href: "/mypage", Title: "MyPage"},
}

const NavigationClass = "nav justify-content-end Navigation"

var navigationTemplate = template.Must(template.New("navigation").Parse(
	`<ul class="{{.Class}}">
{{- range .Links}}
  <li class="nav-item"><a class="nav-link" href="{{.Href}}">{{.Title}}</a></li>
{{- end}}
</ul>`))

var navigation = sync.OnceValue(func() template.HTML {
	var buf bytes.Buffer
	err := navigationTemplate.Execute(&buf, struct {
		Class string
		Links []Link
	}{
		Class: NavigationClass,
		Links: Links,
	})
	if err != nil {
		panic(err)
	}
	//nolint:gosec // rendered by html/template from constant data
	return template.HTML(buf.String())
})

// Navigation returns the rendered navigation list.
func Navigation() template.HTML {
	return navigation()
}
