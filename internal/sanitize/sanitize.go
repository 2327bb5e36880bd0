// Package sanitize escapes untrusted text pulled from storage before it
// is embedded in rendered output.
package sanitize

import (
	"strings"

	"github.com/classfund/classfund/internal/model"
)

var replacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&#34;",
	"'", "&#39;",
)

// EscapeForDisplay neutralizes markup-significant characters in value.
func EscapeForDisplay(value string) string {
	return replacer.Replace(value)
}

// EscapeFunding escapes every string field of a funding snapshot in
// place. Both the single-project and the list read paths go through
// here, so no field reaches a renderer unescaped regardless of which
// query shape produced it. Must be applied exactly once per snapshot.
func EscapeFunding(p *model.ProjectFunding) {
	if p == nil {
		return
	}
	p.ProjectID = EscapeForDisplay(p.ProjectID)
	p.Title = EscapeForDisplay(p.Title)
	p.Subject = EscapeForDisplay(p.Subject)
	p.ShortDescription = EscapeForDisplay(p.ShortDescription)
	p.TeacherName = EscapeForDisplay(p.TeacherName)
	p.SchoolID = EscapeForDisplay(p.SchoolID)
	p.SchoolName = EscapeForDisplay(p.SchoolName)
	p.TotalPrice = EscapeForDisplay(p.TotalPrice)
}
