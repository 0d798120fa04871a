package app

import "fmt"

// renderEntryPage produces the starter page scaffolded into every new site
// and every newly created page.
func renderEntryPage(username string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <title>%s</title>
  </head>
  <body>
    <h1>Welcome to %s's site!</h1>
    <p>This page was generated for you. Replace it with your own content.</p>
  </body>
</html>
`, username, username)
}

const notFoundPage = `<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <title>Page not found</title>
  </head>
  <body>
    <h1>404</h1>
    <p>The page you were looking for does not exist on this site.</p>
  </body>
</html>
`
