package server

import (
	"bytes"
	"html/template"
	"net/http"
	"os"
	"path"

	"github.com/dustin/go-humanize"
)

var listingTemplate = template.Must(template.New("listing").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Index of {{.Path}}</title>
    <style>
        body { font-family: monospace; margin: 2em; }
        li { line-height: 1.6; }
        small { color: #777; }
    </style>
</head>
<body>
    <h1>Index of {{.Path}}</h1>
    <ul>
{{- range .Entries}}
        <li><a href="{{.Href}}">{{.Name}}</a>{{if .Size}} <small>{{.Size}}</small>{{end}}</li>
{{- end}}
    </ul>
</body>
</html>
`))

type listingEntry struct {
	Name string
	Href string
	Size string
}

type listingPage struct {
	Path    string
	Entries []listingEntry
}

func (s *Server) serveListing(w http.ResponseWriter, r *http.Request, dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	page := listingPage{Path: r.URL.Path}
	for _, entry := range entries {
		item := listingEntry{
			Name: entry.Name(),
			Href: path.Join(r.URL.Path, entry.Name()),
		}
		if entry.IsDir() {
			item.Name += "/"
			item.Href += "/"
		} else if info, err := entry.Info(); err == nil {
			item.Size = humanize.Bytes(uint64(info.Size()))
		}
		page.Entries = append(page.Entries, item)
	}

	var buf bytes.Buffer
	if err := listingTemplate.Execute(&buf, page); err != nil {
		s.internalError(w, r, err)
		return
	}

	body := buf.Bytes()
	if s.config.Live {
		body = s.injector.Inject(body)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
