package transfer

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/MrSnakeDoc/linkshelf/internal/domain"
)

var netscapeTmpl = template.Must(template.New("netscape").Parse(`<!DOCTYPE NETSCAPE-Bookmark-file-1>
<META HTTP-EQUIV="Content-Type" CONTENT="text/html; charset=UTF-8">
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
{{- range .Folders}}
    <DT><H3 ADD_DATE="{{$.AddDate}}">{{.Name}}</H3>
    <DL><p>
    {{- range .Bookmarks}}
        <DT><A HREF="{{.URL}}" ADD_DATE="{{$.AddDate}}">{{.Title}}</A>
        {{- if .Description}}
        <DD>{{.Description}}
        {{- end}}
    {{- end}}
    </DL><p>
{{- end}}
</DL><p>
`))

type folder struct {
	Name      string
	Bookmarks []domain.Bookmark
}

// WriteHTML writes a Netscape bookmark file with one folder per non-empty
// collection. The trash is not exported.
func WriteHTML(w io.Writer, snap domain.Snapshot, at time.Time) error {
	var folders []folder
	if len(snap.Active) > 0 {
		folders = append(folders, folder{Name: "Linkshelf", Bookmarks: snap.Active})
	}
	if len(snap.Archived) > 0 {
		folders = append(folders, folder{Name: "Linkshelf Archive", Bookmarks: snap.Archived})
	}

	data := struct {
		AddDate int64
		Folders []folder
	}{
		AddDate: at.Unix(),
		Folders: folders,
	}
	if err := netscapeTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render netscape export: %w", err)
	}
	return nil
}

// ReadHTML extracts every link of a Netscape bookmark file, in document order.
// Folders are flattened; links without an http(s) href are skipped.
func ReadHTML(r io.Reader) ([]domain.ImportEntry, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse netscape import: %w", err)
	}

	var entries []domain.ImportEntry
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		lower := strings.ToLower(href)
		if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
			return
		}
		entries = append(entries, domain.ImportEntry{
			URL:   href,
			Title: strings.Join(strings.Fields(a.Text()), " "),
		})
	})
	return entries, nil
}
