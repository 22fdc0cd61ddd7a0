package views

import (
	"context"
	"html/template"
	"io"

	"github.com/a-h/templ"
)

var funcs = template.FuncMap{
	"pathEscape": PathEscape,
	"jsonLD": func(cfg SiteConfig, row CertificateRow) template.JS {
		return template.JS(CredentialJsonLD(cfg, row))
	},
}

const layout = `{{define "head"}}<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} | {{.Site.Name}}</title>
<style>
body{font-family:system-ui,sans-serif;max-width:960px;margin:2rem auto;padding:0 1rem;color:#222}
table{border-collapse:collapse;width:100%}td,th{border-bottom:1px solid #ddd;padding:.4rem;text-align:left}
form.inline{display:inline}.msg{padding:.5rem;background:#eef}.err{color:#b00}
label{display:block;margin:.4rem 0}input,textarea{font:inherit}
</style>
</head>
<body>{{end}}
{{define "foot"}}</body>
</html>{{end}}`

var pages = template.Must(template.New("pages").Funcs(funcs).Parse(layout + `
{{define "login"}}{{template "head" .}}
<h1>Admin</h1>
{{if .ShowError}}<p class="err">Invalid password.</p>{{end}}
<form method="post" action="/admin/login/">
<input type="hidden" name="_csrf" value="{{.Csrf}}">
<label>Password <input type="password" name="password" autofocus></label>
<button type="submit">Sign in</button>
</form>
{{template "foot"}}{{end}}

{{define "dashboard"}}{{template "head" .}}
<h1>Certificates</h1>
<form method="post" action="/admin/logout/" class="inline">
<input type="hidden" name="_csrf" value="{{.Csrf}}"><button type="submit">Sign out</button>
</form>
{{with .Data.Message}}<p class="msg">{{.}}</p>{{end}}
<h2>New template</h2>
<form method="post" action="/admin/certificates/" enctype="multipart/form-data">
<input type="hidden" name="_csrf" value="{{.Csrf}}">
<label>Course name <input name="course_name" required></label>
<label>Workload (hours) <input name="workload_hours" type="number" min="1" required></label>
<label>Start date <input name="start_date" type="date"></label>
<label>End date <input name="end_date" type="date"></label>
<label>Institution <input name="institution"></label>
<label>Institution address <input name="institution_address"></label>
<label>City <input name="city"></label>
<label>Issue date <input name="issue_date" type="date"></label>
<label>Responsible <input name="responsible_name"></label>
<label>Responsible role <input name="responsible_role"></label>
<label>Template image <input name="template" type="file" accept="image/*"></label>
<label>Composite (data URL) <textarea name="composite" rows="2"></textarea></label>
<label>Name placement (JSON) <textarea name="placement" rows="4"></textarea></label>
<button type="submit">Save</button>
</form>
<h2>Registered</h2>
<table>
<tr><th></th><th>Course</th><th>Hours</th><th>Institution</th><th>Issued</th><th>Code</th><th></th></tr>
{{range .Data.Rows}}
<tr>
<td><img src="/admin/certificates/{{.ID}}/thumb/" alt="" width="150"></td>
<td><a href="/certificado/{{pathEscape .CourseKey}}/">{{.CourseName}}</a></td>
<td>{{.WorkloadHours}}</td>
<td>{{.Institution}}</td>
<td>{{.Issued}}</td>
<td><code>{{.Code}}</code> <a href="/admin/certificates/{{.ID}}/qr/">QR</a></td>
<td><form method="post" action="/admin/certificates/{{.ID}}/" class="inline">
<input type="hidden" name="_csrf" value="{{$.Csrf}}"><input type="hidden" name="_method" value="DELETE">
<button type="submit">Delete</button>
</form></td>
</tr>
{{else}}
<tr><td colspan="7">No certificates yet.</td></tr>
{{end}}
</table>
{{template "foot"}}{{end}}

{{define "stamp"}}{{template "head" .}}
<script type="application/ld+json">{{jsonLD .Site .Data.Course}}</script>
<h1>{{.Data.Course.CourseName}}</h1>
{{with .Data.Course.Institution}}<p>{{.}}</p>{{end}}
{{if .Data.Course.WorkloadHours}}<p>{{.Data.Course.WorkloadHours}} hours</p>{{end}}
{{with .Data.Error}}<p class="err">{{.}}</p>{{end}}
<form method="post" action="/certificado/{{pathEscape .Data.Course.CourseKey}}/">
<input type="hidden" name="_csrf" value="{{.Csrf}}">
<label>Your name <input name="nome" required autofocus></label>
<button type="submit">Download certificate</button>
</form>
{{template "foot"}}{{end}}

{{define "notfound"}}{{template "head" .}}
<h1>Not found</h1>
<p>The page you asked for does not exist.</p>
{{template "foot"}}{{end}}

{{define "servererror"}}{{template "head" .}}
<h1>Something went wrong</h1>
<p>Please try again later.</p>
{{template "foot"}}{{end}}
`))

type page struct {
	Title     string
	Site      SiteConfig
	Csrf      string
	ShowError bool
	Data      any
}

func render(name string, p page) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return pages.ExecuteTemplate(w, name, p)
	})
}

// Login is the admin sign-in page.
func Login(site SiteConfig, showError bool, csrfToken string) templ.Component {
	return render("login", page{Title: "Admin", Site: site, Csrf: csrfToken, ShowError: showError})
}

// Dashboard lists registered certificates and the upload form.
func Dashboard(d DashboardData) templ.Component {
	return render("dashboard", page{Title: "Dashboard", Site: d.Site, Csrf: d.CsrfToken, Data: d})
}

// StampForm asks a student for the name to print.
func StampForm(d StampFormData) templ.Component {
	return render("stamp", page{Title: d.Course.CourseName, Site: d.Site, Csrf: d.CsrfToken, Data: d})
}

// NotFound is shown for unknown pages and courses without a template.
func NotFound(site SiteConfig) templ.Component {
	return render("notfound", page{Title: "Not found", Site: site})
}

// ServerError is shown when a request fails on the server side.
func ServerError(site SiteConfig) templ.Component {
	return render("servererror", page{Title: "Error", Site: site})
}
