// internal/handlers/page/page_handler.go
package page

import (
	"html/template"
	"net/http"
	"net/url"

	"referee-dashboard/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Page describes a protected page shell and the API endpoint it renders.
type Page struct {
	Title    string
	Endpoint string
}

var loginErrors = map[string]string{
	"CredentialsSignin": "Credenciales incorrectas.",
	"TooManyAttempts":   "Demasiados intentos. Inténtalo más tarde.",
}

// Templates is installed on the engine with SetHTMLTemplate.
func Templates() *template.Template {
	return template.Must(template.New("pages").Parse(pageTemplates))
}

type PageHandler struct{}

func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

// Login renders the sign in form. The guard already sent signed-in users home.
func (h *PageHandler) Login(c *gin.Context) {
	c.HTML(http.StatusOK, "login", gin.H{
		"Error":       loginErrors[c.Query("error")],
		"CallbackURL": c.Query("callbackUrl"),
	})
}

// Shell renders the page frame; the browser fetches p.Endpoint for the data.
// Params of the route are substituted into the endpoint.
func (h *PageHandler) Shell(p Page) gin.HandlerFunc {
	return func(c *gin.Context) {
		endpoint := p.Endpoint
		if id := c.Param("id"); id != "" {
			endpoint += url.PathEscape(id)
		}
		sess := middleware.MustGetSession(c)
		c.HTML(http.StatusOK, "shell", gin.H{
			"Title":    p.Title,
			"Endpoint": endpoint,
			"Name":     sess.Name,
		})
	}
}

const pageTemplates = `
{{define "head"}}<!doctype html>
<html lang="es">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.}} · Árbitros</title>
</head>{{end}}

{{define "login"}}{{template "head" "Acceso"}}
<body>
<main>
<h1>Acceso árbitros</h1>
{{if .Error}}<p role="alert">{{.Error}}</p>{{end}}
<form method="post" action="/api/auth/callback/credentials">
<input type="hidden" name="callbackUrl" value="{{.CallbackURL}}">
<label>Usuario <input name="username" autocomplete="username" required></label>
<label>Contraseña <input name="password" type="password" autocomplete="current-password" required></label>
<button type="submit">Entrar</button>
</form>
</main>
</body>
</html>{{end}}

{{define "shell"}}{{template "head" .Title}}
<body>
<nav>
<a href="/">Inicio</a>
<a href="/partidos">Partidos</a>
<a href="/designaciones-descargadas">Designaciones</a>
<a href="/liquidaciones">Liquidaciones</a>
<a href="/perfil">Perfil</a>
<form method="post" action="/api/auth/signout"><button type="submit">Salir</button></form>
</nav>
<main data-endpoint="{{.Endpoint}}" data-user="{{.Name}}">
<h1>{{.Title}}</h1>
<pre id="view"></pre>
</main>
<script>
fetch(document.querySelector("main").dataset.endpoint, {credentials: "same-origin"})
  .then(function (r) { return r.json(); })
  .then(function (v) { document.getElementById("view").textContent = JSON.stringify(v, null, 2); });
</script>
</body>
</html>{{end}}
`
