// Package http implements the HTTP handlers of the statistics browser.
// Handlers stay thin: they parse chi URL parameters, call a service and
// render JSON through go-chi/render.
//
// # Routes
//
//	GET /api/health                                        liveness
//	GET /api/health/ready                                  output directory check
//	GET /api/version                                       build information
//	GET /api/reports                                       engines with a JSON report
//	GET /api/reports/{engine}                              full report
//	GET /api/reports/{engine}/{dataset}                    one dataset section
//	GET /api/reports/{engine}/{dataset}/columns/{column}   one column's statistics
//	GET /api/figures                                       rendered PNG files
//
// # Error Handling
//
// Service errors are passed to errors.ErrorHandler, which answers with RFC
// 7807 problem details:
//
//	{
//	    "type": "/errors/not-found",
//	    "title": "Not Found",
//	    "status": 404,
//	    "detail": "dataset not found",
//	    "instance": "/api/reports/pure/fb_posts"
//	}
//
// # Testing
//
// Handlers are tested with httptest against a testify mock of
// ReportServiceInterface.
package http
