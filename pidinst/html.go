package pidinst

import (
	"bytes"
	"html/template"
	"time"

	"github.com/instrumentdb/pidinst-backend/model"
)

// LandingPageData carries everything the landing page shows. All values
// derive from the same document and model accessors as the JSON and XML
// paths, so the renditions cannot drift apart.
type LandingPageData struct {
	Document Document
	Citation string
	Image    string
	PIs      []string
}

// BuildLandingPageData assembles the landing-page fields for an instrument
// at an explicit reference time.
func (p Projector) BuildLandingPageData(inst *model.Instrument, at time.Time) LandingPageData {
	doc := p.Project(inst)
	image, _ := inst.EffectiveImage()
	var pis []string
	for _, person := range inst.CurrentPIs(at) {
		pis = append(pis, person.FullName())
	}
	return LandingPageData{
		Document: doc,
		Citation: inst.Citation(at, doc.LandingPage),
		Image:    image,
		PIs:      pis,
	}
}

var landingPageTemplate = template.Must(template.New("instrument").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Document.Name}}</title>
</head>
<body>
<h1>{{.Document.Name}}</h1>
{{if .Document.Identifier}}<p><b>PID:</b> <a href="{{.Document.Identifier.IdentifierValue}}">{{.Document.Identifier.IdentifierValue}}</a></p>{{end}}
{{if .Image}}<img src="{{.Image}}" alt="{{.Document.Name}}">{{end}}
{{if .Document.Description}}<p>{{.Document.Description}}</p>{{end}}
{{if .Document.Owners}}<h2>Owners</h2><ul>{{range .Document.Owners}}<li>{{.Owner.OwnerName}}</li>{{end}}</ul>{{end}}
{{if .Document.Manufacturers}}<h2>Manufacturers</h2><ul>{{range .Document.Manufacturers}}<li>{{.Manufacturer.ManufacturerName}}</li>{{end}}</ul>{{end}}
{{if .Document.Model}}<p><b>Model:</b> {{.Document.Model.ModelName}}</p>{{end}}
{{if .Document.InstrumentTypes}}<h2>Types</h2><ul>{{range .Document.InstrumentTypes}}<li>{{.InstrumentType.InstrumentTypeName}}</li>{{end}}</ul>{{end}}
{{if .Document.MeasuredVariables}}<h2>Measured variables</h2><ul>{{range .Document.MeasuredVariables}}<li>{{.MeasuredVariable.VariableMeasured}}</li>{{end}}</ul>{{end}}
{{if .Document.Dates}}<h2>Dates</h2><ul>{{range .Document.Dates}}<li>{{.Date.DateType}}: {{.Date.Date}}</li>{{end}}</ul>{{end}}
{{if .PIs}}<h2>Principal investigators</h2><ul>{{range .PIs}}<li>{{.}}</li>{{end}}</ul>{{end}}
<h2>Citation</h2>
<p>{{.Citation}}</p>
</body>
</html>
`))

// EncodeHTML renders the minimal landing page.
func (d LandingPageData) EncodeHTML() ([]byte, error) {
	var buf bytes.Buffer
	if err := landingPageTemplate.Execute(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
