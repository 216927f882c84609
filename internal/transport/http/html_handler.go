package http

import (
	"html/template"
	"log/slog"
	"net/http"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>descstats</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; }
        table { border-collapse: collapse; }
        td, th { border: 1px solid #ccc; padding: 4px 10px; text-align: left; }
    </style>
</head>
<body>
    <h1>Descriptive statistics</h1>
    <h2>Reports</h2>
    {{if .Reports}}
    <table>
        <tr><th>Engine</th><th>Datasets</th><th>Updated</th></tr>
        {{range .Reports}}{{$engine := .Engine}}
        <tr>
            <td><a href="/api/reports/{{.Engine}}">{{.Engine}}</a></td>
            <td>{{range $i, $d := .Datasets}}{{if $i}}, {{end}}<a href="/api/reports/{{$engine}}/{{$d}}">{{$d}}</a>{{end}}</td>
            <td>{{.UpdatedAt.Format "2006-01-02 15:04:05"}}</td>
        </tr>
        {{end}}
    </table>
    {{else}}
    <p>No reports generated yet.</p>
    {{end}}
    <h2>Figures</h2>
    <ul>
        {{range .Figures}}<li><a href="/figures/{{.}}">{{.}}</a></li>
        {{else}}<li>No figures rendered yet.</li>{{end}}
    </ul>
    <script>
        (function () {
            var scheme = location.protocol === "https:" ? "wss://" : "ws://";
            var ws = new WebSocket(scheme + location.host + "/api/ws");
            ws.onmessage = function (e) {
                var msg = JSON.parse(e.data);
                if (msg.type.indexOf("report:") === 0) {
                    location.reload();
                }
            };
        })();
    </script>
</body>
</html>
`))

// ServeIndex renders an HTML overview of the generated reports and figures.
// The page reloads itself when /api/ws announces a report change.
func ServeIndex(service ReportServiceInterface, logger *slog.Logger) http.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		reports, err := service.ListReports(r.Context())
		if err != nil {
			logger.ErrorContext(r.Context(), "index: failed to list reports", slog.String("error", err.Error()))
			http.Error(w, "Error loading reports", http.StatusInternalServerError)
			return
		}
		figures, err := service.ListFigures(r.Context())
		if err != nil {
			logger.ErrorContext(r.Context(), "index: failed to list figures", slog.String("error", err.Error()))
			http.Error(w, "Error loading figures", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := indexTemplate.Execute(w, map[string]interface{}{
			"Reports": reports,
			"Figures": figures,
		}); err != nil {
			logger.ErrorContext(r.Context(), "index: render failed", slog.String("error", err.Error()))
		}
	}
}
