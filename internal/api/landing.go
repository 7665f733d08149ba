package api

import "net/http"

// landingPage is a minimal form for exercising the render endpoint from
// a browser.
const landingPage = `<!DOCTYPE html>
<html>
<head><title>rendergate</title></head>
<body>
<h1>rendergate</h1>
<form action="/render" method="post" enctype="multipart/form-data">
  <p><label>Template: <input type="file" name="template"></label></p>
  <p><label>Data (JSON): <textarea name="data" rows="6" cols="60">{}</textarea></label></p>
  <p><label>Options (JSON): <textarea name="options" rows="3" cols="60">{}</textarea></label></p>
  <p><input type="submit" value="Render"></p>
</form>
</body>
</html>
`

func (s *Server) handleLanding(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(landingPage))
}
