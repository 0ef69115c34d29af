package webui

import "html/template"

// examplePrompts seed the form so first-time users have something to click.
var examplePrompts = []string{
	"a sunny beach with palm trees",
	"a cozy log cabin in snowy mountains",
	"a futuristic city street at night",
	"an ancient forest with shafts of light",
}

// formPage is the single-page UI: prompt form on top, result below.
const formPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>360&deg; Panorama Generator</title>
<style>
body { font-family: sans-serif; max-width: 860px; margin: 2rem auto; padding: 0 1rem; }
label { display: block; margin-top: 1rem; font-weight: bold; }
input[type=text], textarea, select { width: 100%; padding: 0.4rem; }
button { margin-top: 1rem; padding: 0.5rem 1.5rem; }
img.result { max-width: 100%; margin-top: 1rem; border: 1px solid #ccc; }
pre.status { background: #f4f4f4; padding: 0.75rem; white-space: pre-wrap; }
ul.examples li { cursor: default; }
.error { color: #a00; }
</style>
</head>
<body>
<h1>360&deg; Panorama Generator</h1>
<p>Describe an environment and get a 360&deg; equirectangular image back.</p>

<form method="post" action="/generate">
  <label for="prompt">Environment description</label>
  <textarea id="prompt" name="prompt" rows="3" required>{{.Prompt}}</textarea>

  <label for="mode">Enrichment mode</label>
  <select id="mode" name="mode">
    {{range .Modes}}<option value="{{.}}"{{if eq . $.Mode}} selected{{end}}>{{.}}</option>{{end}}
  </select>

  <label for="custom_data">Additional context (optional)</label>
  <input type="text" id="custom_data" name="custom_data" value="{{.CustomData}}">

  <label for="steps">Inference steps (20&ndash;100, blank for default)</label>
  <input type="text" id="steps" name="steps" value="{{.Steps}}">

  <label for="guidance">Guidance scale (1.0&ndash;15.0, blank for default)</label>
  <input type="text" id="guidance" name="guidance" value="{{.Guidance}}">

  <button type="submit">Generate</button>
</form>

{{if .Status}}
<h2>Result</h2>
<pre class="status{{if not .ImageSrc}} error{{end}}">{{.Status}}</pre>
{{if .ImageSrc}}<img class="result" src="{{.ImageSrc}}" alt="generated panorama">{{end}}
{{end}}

<h2>Example prompts</h2>
<ul class="examples">
{{range .Examples}}<li>{{.}}</li>
{{end}}</ul>
</body>
</html>
`

// historyPage lists recent generations.
const historyPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Generation History</title>
<style>
body { font-family: sans-serif; max-width: 860px; margin: 2rem auto; padding: 0 1rem; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ccc; padding: 0.4rem; text-align: left; }
.status-error { color: #a00; }
</style>
</head>
<body>
<h1>Generation History</h1>
<p><a href="/">&larr; back to generator</a></p>
{{if .Records}}
<table>
<tr><th>When</th><th>Prompt</th><th>Steps</th><th>Guidance</th><th>Enriched</th><th>Status</th></tr>
{{range .Records}}
<tr>
  <td>{{.CreatedAt.Format "2006-01-02 15:04:05"}}</td>
  <td>{{.Prompt}}</td>
  <td>{{.Steps}}</td>
  <td>{{.Guidance}}</td>
  <td>{{if .Enriched}}yes{{else}}no{{end}}</td>
  <td{{if ne .Status "ok"}} class="status-error"{{end}}>{{.Status}}</td>
</tr>
{{end}}
</table>
{{else}}
<p>No generations recorded yet.</p>
{{end}}
</body>
</html>
`

func parseTemplates() (*template.Template, error) {
	t, err := template.New("form").Parse(formPage)
	if err != nil {
		return nil, err
	}
	if _, err := t.New("history").Parse(historyPage); err != nil {
		return nil, err
	}
	return t, nil
}
