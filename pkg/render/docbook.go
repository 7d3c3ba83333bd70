package render

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"

	"github.com/suse-edge/support-matrix/pkg/matrix"
)

const (
	docbookNS = "http://docbook.org/ns/docbook"
	itsNS     = "http://www.w3.org/2005/11/its"
	xiNS      = "http://www.w3.org/2001/XInclude"
	xlinkNS   = "http://www.w3.org/1999/xlink"
)

// WriteDocBook renders the release list as a DocBook 5 article into dir:
// an info block with a revision per release, then one sect1 per release
// carrying its component table.
func WriteDocBook(dir string, releases []matrix.Release, opts Options) error {
	opts = opts.withDefaults()

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)
	doc.CreateProcInst("xml-stylesheet",
		`href="urn:x-suse:xslt:profiling:docbook50-profile.xsl" type="text/xml" title="Profiling step"`)
	doc.CreateDirective("DOCTYPE article")

	article := doc.CreateElement("article")
	article.CreateAttr("xmlns", docbookNS)
	article.CreateAttr("xmlns:its", itsNS)
	article.CreateAttr("xmlns:xi", xiNS)
	article.CreateAttr("xmlns:xlink", xlinkNS)
	article.CreateAttr("version", "5.2")
	article.CreateAttr("xml:id", "article-support-matrix")
	article.CreateAttr("xml:lang", "en")

	title := opts.Product + " support matrix"
	article.CreateElement("title").SetText(title)
	buildInfo(article, releases, title, opts)

	for _, rel := range releases {
		buildSect1(article, rel, opts)
	}

	doc.Indent(2)
	path := filepath.Join(dir, DocBookFile)
	if err := doc.WriteToFile(path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func buildInfo(article *etree.Element, releases []matrix.Release, title string, opts Options) {
	info := article.CreateElement("info")
	info.CreateElement("date").SetText(opts.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	abstract := info.CreateElement("abstract")
	abstract.CreateElement("para").SetText(fmt.Sprintf(
		"The following tables describe the individual components that make up the %s releases, "+
			"including the version, the Helm chart version (if applicable), and from where the "+
			"released artifact can be pulled. This information is also provided for processing "+
			"in JSON format.", opts.Product))

	for _, m := range []struct {
		name, value, translate string
	}{
		{"title", title, "yes"},
		{"series", "Products & Solutions", "no"},
		{"description", "A complete list of components for all " + opts.Product + " releases", "yes"},
		{"social-descr", "List of components for all " + opts.Product + " releases", "yes"},
	} {
		meta := info.CreateElement("meta")
		meta.CreateAttr("name", m.name)
		meta.CreateAttr("its:translate", m.translate)
		meta.SetText(m.value)
	}

	revhistory := info.CreateElement("revhistory")
	revhistory.CreateAttr("xml:id", "rh-support-matrix")
	for _, rel := range releases {
		revision := revhistory.CreateElement("revision")
		revision.CreateElement("date").SetText(rel.AvailabilityDate)
		revision.CreateElement("revdescription").
			CreateElement("para").
			SetText(fmt.Sprintf("Added %s %s", opts.Product, rel.Version))
	}
}

func buildSect1(article *etree.Element, rel matrix.Release, opts Options) {
	sect := article.CreateElement("sect1")
	sect.CreateAttr("xml:id", "release-"+strings.ReplaceAll(rel.Version, ".", ""))
	sect.CreateElement("title").SetText("Release " + rel.Version)

	notes := sect.CreateElement("para").CreateElement("link")
	notes.CreateAttr("xlink:href", rel.URL)
	notes.SetText("Release notes")

	if rel.Data.Len() == 0 {
		sect.CreateElement("para").SetText("No data available for this release.")
		return
	}

	table := sect.CreateElement("informaltable")
	tgroup := table.CreateElement("tgroup")
	tgroup.CreateAttr("cols", "4")
	for i, width := range []string{"20*", "15*", "15*", "50*"} {
		colspec := tgroup.CreateElement("colspec")
		colspec.CreateAttr("colnum", fmt.Sprint(i+1))
		colspec.CreateAttr("colname", fmt.Sprint(i+1))
		colspec.CreateAttr("colwidth", width)
	}

	thead := tgroup.CreateElement("thead").CreateElement("row")
	for _, h := range []string{"Name", matrix.FieldVersion, matrix.FieldChart, matrix.FieldArtifact} {
		thead.CreateElement("entry").CreateElement("para").SetText(h)
	}

	tbody := tgroup.CreateElement("tbody")
	for _, name := range rel.Data.Names() {
		c, _ := rel.Data.Get(name)
		buildComponentRow(tbody, name, c, opts)
	}
}

func buildComponentRow(tbody *etree.Element, name string, c matrix.Component, opts Options) {
	row := tbody.CreateElement("row")

	row.CreateElement("entry").CreateElement("para").SetText(name)

	version := c.Version
	if version == "" {
		version = "N/A"
	}
	row.CreateElement("entry").CreateElement("para").SetText(version)

	chart := "N/A"
	if c.ChartVersion != nil {
		chart = *c.ChartVersion
	}
	row.CreateElement("entry").CreateElement("para").SetText(chart)

	artifacts := row.CreateElement("entry")
	for _, entry := range artifactEntries(c.ArtifactLocation, opts.ArtifactSeparator) {
		para := artifacts.CreateElement("para")
		if isURL(entry) {
			link := para.CreateElement("link")
			link.CreateAttr("xlink:href", entry)
			link.SetText(entry)
		} else {
			para.SetText(entry)
		}
	}
}
