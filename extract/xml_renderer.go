package extract

import (
	"context"
	"encoding/xml"
	"fmt"

	"github.com/mdgen/dumper/record"
)

// XMLRenderer is the default Renderer. The element sets below are
// deliberately minimal placeholders: the real repository metadata schema
// is explicitly out of the core's scope (see spec Non-goals). This exists
// so the dumper is exercisable end to end without a schema dependency.
type XMLRenderer struct{}

type locationXML struct {
	Href string `xml:"href,attr"`
	Base string `xml:"base,attr,omitempty"`
}

type primaryXML struct {
	XMLName  xml.Name    `xml:"package"`
	Name     string      `xml:"name"`
	PkgID    string      `xml:"checksum"`
	Size     int64       `xml:"size"`
	Location locationXML `xml:"location"`
}

type filelistsXML struct {
	XMLName xml.Name `xml:"package"`
	PkgID   string   `xml:"pkgid"`
	Name    string   `xml:"name"`
}

type changelogXML struct {
	Author string `xml:"author,attr"`
	Date   int64  `xml:"date,attr"`
	Text   string `xml:",chardata"`
}

type otherXML struct {
	XMLName   xml.Name       `xml:"package"`
	PkgID     string         `xml:"pkgid"`
	Name      string         `xml:"name"`
	Changelog []changelogXML `xml:"changelog"`
}

func (XMLRenderer) Render(_ context.Context, rec *record.PackageRecord) ([]byte, []byte, []byte, error) {
	if rec == nil {
		return nil, nil, nil, fmt.Errorf("render: nil package record")
	}

	primary, err := xml.Marshal(primaryXML{
		Name:     rec.Name,
		PkgID:    rec.PkgID,
		Size:     rec.SizePackage,
		Location: locationXML{Href: rec.LocationHref, Base: rec.LocationBase},
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("render: primary: %w", err)
	}

	filelists, err := xml.Marshal(filelistsXML{PkgID: rec.PkgID, Name: rec.Name})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("render: filelists: %w", err)
	}

	entries := make([]changelogXML, 0, len(rec.Changelog))
	for _, c := range rec.Changelog {
		entries = append(entries, changelogXML{Author: c.Author, Date: c.Date.Unix(), Text: c.Text})
	}
	other, err := xml.Marshal(otherXML{PkgID: rec.PkgID, Name: rec.Name, Changelog: entries})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("render: other: %w", err)
	}

	return primary, filelists, other, nil
}
