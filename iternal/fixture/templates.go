package fixture

import "html/template"

var homeTmpl = template.Must(template.New("home").Parse(`<!doctype html>
<html lang="id">
<head>
<meta charset="utf-8">
<title>{{.Site.TitlePattern}} 2025 | Dealls Fixture</title>
</head>
<body>
<header><nav><a href="/">Dealls</a></nav></header>
<main>
<h1>{{.Site.Heading}}</h1>
<form action="/loker" method="get" role="search">
<input type="search" name="{{.Site.SearchParam}}" aria-label="{{.Site.SearchBoxName}} or company" placeholder="{{.Site.SearchBoxName}}...">
</form>
</main>
</body>
</html>`))

var resultsTmpl = template.Must(template.New("results").Parse(`<!doctype html>
<html lang="id">
<head>
<meta charset="utf-8">
<title>Lowongan {{.Keyword}} | Dealls Fixture</title>
</head>
<body>
<main>
<h1>Lowongan kerja {{.Keyword}}</h1>
{{define "cards"}}{{range .Jobs}}<a class="job-card" href="/loker/{{.Slug}}"{{if not $.SameTab}} target="_blank" rel="noopener"{{end}}>
<div class="card"><div class="card-body"><div class="card-title"><h2>{{.Title}}</h2></div>
<p class="company">{{.Company}}</p><p class="location">{{.Location}}</p></div></div>
</a>
{{end}}{{end}}
<section id="results">
{{if eq .DelayMS 0}}{{template "cards" .}}{{end}}
</section>
{{if not .Jobs}}<p class="empty">Tidak ada lowongan untuk "{{.Keyword}}".</p>{{end}}
{{if gt .DelayMS 0}}
<div id="pending" hidden>{{template "cards" .}}</div>
<script>
setTimeout(function () {
  var pending = document.getElementById("pending");
  var results = document.getElementById("results");
  while (pending.firstChild) {
    results.appendChild(pending.firstChild);
  }
}, {{.DelayMS}});
</script>
{{end}}
</main>
</body>
</html>`))

var jobTmpl = template.Must(template.New("job").Parse(`<!doctype html>
<html lang="id">
<head>
<meta charset="utf-8">
<title>{{.Job.Title}} - {{.Job.Company}} | Dealls Fixture</title>
</head>
<body>
<main>
<h1>{{.Job.Title}}</h1>
<p class="company">{{.Job.Company}} · {{.Job.Location}}</p>
{{if not (index .Omit "apply")}}<button type="button" class="apply">{{.Site.ApplyText}} Sekarang</button>{{end}}
{{if not (index .Omit "description")}}<section>
<h2>{{.Site.DescriptionHeading}}</h2>
<ul>{{range .Job.Description}}<li>{{.}}</li>{{end}}</ul>
</section>{{end}}
{{if not (index .Omit "qualifications")}}<section>
<h2>{{.Site.QualificationsHeading}}</h2>
<ul>{{range .Job.Qualifications}}<li>{{.}}</li>{{end}}</ul>
</section>{{end}}
{{if not (index .Omit "benefits")}}<section>
<h3>{{.Site.BenefitsHeading}}</h3>
<ul>{{range .Job.Benefits}}<li>{{.}}</li>{{end}}</ul>
</section>{{end}}
</main>
</body>
</html>`))
