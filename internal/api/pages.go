package api

import (
	"fmt"
	"log"
	"sync"

	"github.com/osteele/liquid"
)

// PageRenderer renders the public-facing and admin HTML pages from Liquid
// templates, caching parsed templates across requests.
type PageRenderer struct {
	engine *liquid.Engine
	cache  sync.Map // map[string]*liquid.Template
}

// NewPageRenderer creates a renderer with a fresh Liquid engine.
func NewPageRenderer() *PageRenderer {
	return &PageRenderer{engine: liquid.NewEngine()}
}

// Render renders the named built-in page with the given bindings.
func (pr *PageRenderer) Render(name string, bindings map[string]interface{}) (string, error) {
	if cached, ok := pr.cache.Load(name); ok {
		return cached.(*liquid.Template).RenderString(bindings)
	}

	src, ok := pageTemplates[name]
	if !ok {
		return "", fmt.Errorf("unknown page template %q", name)
	}

	tpl, err := pr.engine.ParseString(src)
	if err != nil {
		log.Printf("[Pages] parse error for %s: %v", name, err)
		return "", err
	}
	pr.cache.Store(name, tpl)

	return tpl.RenderString(bindings)
}

const (
	pageFakeLogin = "fake_login"
	pageFeedback  = "submission_feedback"
	pageError     = "submission_error"
	pageNotFound  = "not_found"
	pageDashboard = "admin_dashboard"
)

var pageTemplates = map[string]string{
	// The simulated credential-entry page. The form posts back against the
	// same token; nothing on the page reveals the simulation.
	pageFakeLogin: `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Sign in to your account</title>
  <style>
    body { font-family: Arial, sans-serif; background: #f3f4f6; display: flex; justify-content: center; padding-top: 80px; }
    .card { background: #fff; border-radius: 8px; box-shadow: 0 1px 4px rgba(0,0,0,.15); padding: 32px; width: 320px; }
    h1 { font-size: 20px; margin: 0 0 20px; }
    label { display: block; font-size: 13px; margin-bottom: 4px; color: #374151; }
    input { width: 100%; padding: 8px; margin-bottom: 14px; border: 1px solid #d1d5db; border-radius: 4px; box-sizing: border-box; }
    button { width: 100%; padding: 10px; background: #2563eb; color: #fff; border: 0; border-radius: 4px; font-size: 14px; cursor: pointer; }
  </style>
</head>
<body>
  <div class="card">
    <h1>Sign in to your account</h1>
    <form method="POST" action="/submit/{{ tracking_token }}">
      <label for="username">Email or username</label>
      <input type="text" id="username" name="username" autocomplete="off">
      <label for="password">Password</label>
      <input type="password" id="password" name="password" autocomplete="off">
      <button type="submit">Sign in</button>
    </form>
  </div>
</body>
</html>`,

	// Shown after a credential submission: reveals the simulation and
	// displays the awareness tips.
	pageFeedback: `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Security Awareness Training</title>
  <style>
    body { font-family: Arial, sans-serif; background: #f9fafb; display: flex; justify-content: center; padding-top: 60px; }
    .card { background: #fff; border-radius: 8px; box-shadow: 0 1px 4px rgba(0,0,0,.15); padding: 32px; max-width: 560px; }
    .banner { background: #fef3c7; border: 1px solid #f59e0b; border-radius: 6px; padding: 12px 16px; margin-bottom: 20px; }
    h1 { font-size: 22px; margin: 0 0 12px; }
    ul { padding-left: 20px; }
  </style>
</head>
<body>
  <div class="card">
    <div class="banner"><strong>This was a phishing simulation.</strong> No credentials were stored.</div>
    <h1>What just happened?</h1>
    <p>You clicked a simulated phishing link and entered credentials on a fake login page.
       In a real attack, your account would now be compromised.</p>
    {{ tips_html }}
  </div>
</body>
</html>`,

	pageError: `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Something went wrong</title></head>
<body style="font-family: Arial, sans-serif; text-align: center; padding-top: 80px;">
  <h1>Something went wrong</h1>
  <p>{{ error_message }}</p>
</body>
</html>`,

	pageNotFound: `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Not Found</title></head>
<body style="font-family: Arial, sans-serif; text-align: center; padding-top: 80px;">
  <h1>404</h1>
  <p>Invalid or expired link.</p>
</body>
</html>`,

	pageDashboard: `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Campaign Report</title>
  <style>
    body { font-family: Arial, sans-serif; background: #f9fafb; padding: 40px; }
    h1 { font-size: 22px; }
    table { border-collapse: collapse; background: #fff; box-shadow: 0 1px 3px rgba(0,0,0,.1); }
    th, td { border: 1px solid #e5e7eb; padding: 10px 18px; text-align: left; }
    th { background: #f3f4f6; }
  </style>
</head>
<body>
  <h1>Campaign Report: {{ campaign_id }}</h1>
  <table>
    <tr><th>Total recipients</th><td>{{ total_recipients }}</td></tr>
    <tr><th>Distinct clickers</th><td>{{ total_clicks }}</td></tr>
    <tr><th>Distinct submitters</th><td>{{ total_submissions }}</td></tr>
    <tr><th>Click rate</th><td>{{ click_rate }}%</td></tr>
    <tr><th>Submission rate</th><td>{{ submission_rate }}%</td></tr>
  </table>
</body>
</html>`,
}
