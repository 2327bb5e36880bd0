// Package view renders funding snapshots as HTML fragments. Fields are
// escaped upstream by the funding service; the renderer only assembles
// structure and must never receive raw storage values.
package view

import (
	"strconv"
	"strings"

	"github.com/classfund/classfund/internal/model"
)

const pageHeader = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>ClassFund</title>
</head>
<body>
`

const pageFooter = `</body>
</html>
`

// FundingPage renders the full project funding page.
func FundingPage(p *model.ProjectFunding) string {
	var b strings.Builder
	b.WriteString(pageHeader)
	writeFundingFragment(&b, p)
	b.WriteString(pageFooter)
	return b.String()
}

// FundingFragment renders only the project block, for embedding.
func FundingFragment(p *model.ProjectFunding) string {
	var b strings.Builder
	writeFundingFragment(&b, p)
	return b.String()
}

func writeFundingFragment(b *strings.Builder, p *model.ProjectFunding) {
	b.WriteString(`<div class="project">`)
	b.WriteString("\n<h1>")
	b.WriteString(p.Title)
	b.WriteString("</h1>\n")

	b.WriteString("<p>")
	b.WriteString(p.ShortDescription)
	b.WriteString("</p>\n")

	b.WriteString(`<p class="teacher">`)
	b.WriteString(p.TeacherName)
	b.WriteString("</p>\n")

	b.WriteString(`<p class="school"><a href="/schools/`)
	b.WriteString(p.SchoolID)
	b.WriteString(`">`)
	b.WriteString(p.SchoolName)
	b.WriteString("</a></p>\n")

	if p.Subject != "" {
		b.WriteString(`<p class="subject">`)
		b.WriteString(p.Subject)
		b.WriteString("</p>\n")
	}

	b.WriteString(`<p class="students">`)
	b.WriteString(strconv.Itoa(p.NumStudents))
	b.WriteString(" students</p>\n")

	b.WriteString(`<p class="funded">`)
	b.WriteString(p.PercentDisplay())
	b.WriteString(" funded")
	if p.IsLowFunded() {
		b.WriteString(` <strong class="alert">Almost out of time!</strong>`)
	}
	b.WriteString("</p>\n")

	b.WriteString(`<p class="price">$`)
	b.WriteString(p.TotalPrice)
	b.WriteString(" goal</p>\n")

	b.WriteString(`<p class="expires">Expires `)
	b.WriteString(p.ExpirationDate.Format("January 2, 2006"))
	b.WriteString("</p>\n")

	b.WriteString("</div>\n")
}
