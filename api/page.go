package api

import (
	"html/template"
	"io"

	"uoauth/verification"
)

var completeTemplate = template.Must(template.New("complete").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>United Operations Authentication</title>
</head>
<body>
  <main>
    <h1>{{ .Title }}</h1>
    <p>{{ .Message }}</p>
    <p>You can close this tab and return to the authentication page.</p>
  </main>
  <script>window.close()</script>
</body>
</html>
`))

type completePage struct {
	Title   string
	Message string
}

func renderComplete(w io.Writer, provider verification.Provider, status verification.Status) error {
	name := string(provider)
	if name == "" {
		name = "account"
	}
	page := completePage{Title: "Verification failed"}
	switch status {
	case verification.StatusSuccess:
		page.Title = "Verification complete"
		page.Message = "Your " + name + " account has been verified."
	case verification.StatusFailed:
		page.Message = "We could not find a matching " + name + " account."
	default:
		page.Message = "Something went wrong while verifying your " + name + " account. Please try again."
	}
	return completeTemplate.Execute(w, page)
}
